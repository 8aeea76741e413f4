package sheets

import (
	"context"
	"errors"
	"strings"

	"payplan/internal/core"
)

// LedgerRow is one paid expense as exported to the spreadsheet ledger.
type LedgerRow struct {
	UserID        string
	ExpenseID     int64
	TransactionID int64
	Name          string
	Amount        core.Money
	Posted        core.Date
}

// Validate checks that the row can be appended to the ledger.
func (r LedgerRow) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return core.ErrEmptyName
	}
	if r.Posted.IsZero() {
		return core.NewValidationError("posted", "", "date required")
	}
	if r.ExpenseID <= 0 {
		return errors.New("expense id required")
	}
	return r.Amount.Validate()
}

// Ports for outbound adapters.
type (
	LedgerWriter interface {
		AppendPaid(ctx context.Context, row LedgerRow) (rowRef string, err error)
	}

	LedgerReader interface {
		// ListPaid returns the rows exported for the given year.
		ListPaid(ctx context.Context, year int) ([]LedgerRow, error)
	}

	// HolidayReader serves custom holidays maintained in a sheet.
	HolidayReader interface {
		ListHolidays(ctx context.Context, year int) ([]core.Holiday, error)
	}
)
