package google

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payplan/internal/core"
	ports "payplan/internal/sheets"
)

func TestParseLedger(t *testing.T) {
	values := [][]interface{}{
		{"Posted", "Name", "Amount", "Expense ID", "Transaction ID", "User"},
		{"2025-03-20", "Car insurance", 120.0, 7.0, 42.0, "u1"},
		{"2025-03-21", "Phone", "$1,234.50", "8", "43", "u1"},
		{"not a date", "Junk", 1.0, 1.0, 1.0, "u1"},
		{"2025-03-22", "No amount", "", "9", "44", "u1"},
	}

	got := parseLedger(values)
	require.Len(t, got, 2)
	assert.Equal(t, ports.LedgerRow{
		Posted: core.NewDate(2025, 3, 20), Name: "Car insurance", Amount: core.Cents(12000),
		ExpenseID: 7, TransactionID: 42, UserID: "u1",
	}, got[0])
	assert.Equal(t, core.Cents(123450), got[1].Amount)
}

func TestParseHolidays(t *testing.T) {
	values := [][]interface{}{
		{"Date", "Name"},
		{"# company days"},
		{"2025-03-17", "Company day"},
		{"2025-03-17", "Company day"},
		{"2026-01-02", "Next year"},
		{""},
	}

	got := parseHolidays(values, 2025)
	assert.Equal(t, []core.Holiday{{Date: core.NewDate(2025, 3, 17), Name: "Company day"}}, got)
}

func TestYearPrefixedName(t *testing.T) {
	assert.Equal(t, "2025 Ledger", yearPrefixedName("Ledger", 2025))
	assert.Equal(t, "2024 Ledger", yearPrefixedName("2024 Ledger", 2025))
	assert.Equal(t, "", yearPrefixedName("  ", 2025))
}

func TestLedgerValues(t *testing.T) {
	row := ports.LedgerRow{Posted: core.NewDate(2025, 3, 20), Name: "Gym", Amount: core.Cents(4050), ExpenseID: 3, TransactionID: 9, UserID: "u1"}
	assert.Equal(t, []any{"2025-03-20", "Gym", 40.5, int64(3), int64(9), "u1"}, ledgerValues(row))
}

func TestClientGuards(t *testing.T) {
	c := &Client{spreadsheetID: "test"}

	_, err := c.AppendPaid(context.Background(), ports.LedgerRow{Name: "", Posted: core.NewDate(2025, 1, 1), ExpenseID: 1, Amount: core.Cents(1)})
	assert.ErrorIs(t, err, core.ErrEmptyName)

	_, err = c.AppendPaid(context.Background(), ports.LedgerRow{Name: "x", Posted: core.NewDate(2025, 1, 1), ExpenseID: 1, Amount: core.Cents(1)})
	assert.EqualError(t, err, "sheets service not initialized")

	_, err = c.ListHolidays(context.Background(), 2025)
	assert.Error(t, err)
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	assert.EqualError(t, err, "missing GOOGLE_SPREADSHEET_ID")
}
