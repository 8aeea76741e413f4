package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"payplan/internal/core"
	applog "payplan/internal/log"
	ports "payplan/internal/sheets"
)

// Config selects the spreadsheet and the service-account credentials.
// Sheet names are base names; the year is prefixed per call ("2025 Ledger").
type Config struct {
	SpreadsheetID      string
	LedgerSheet        string
	HolidaysSheet      string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// Client reads and writes the ledger spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerBase    string
	holidaysBase  string
	logger        *applog.Logger
}

var (
	_ ports.LedgerWriter  = (*Client)(nil)
	_ ports.LedgerReader  = (*Client)(nil)
	_ ports.HolidayReader = (*Client)(nil)
)

// New requires a spreadsheet id and authenticates with the service account in cfg.
func New(ctx context.Context, cfg Config, logger *applog.Logger) (*Client, error) {
	if logger == nil {
		logger = applog.Default()
	}
	logger = logger.WithComponent(applog.ComponentSheets)

	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if cfg.LedgerSheet == "" {
		cfg.LedgerSheet = "Ledger"
	}
	if cfg.HolidaysSheet == "" {
		cfg.HolidaysSheet = "Holidays"
	}

	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		ledgerBase:    cfg.LedgerSheet,
		holidaysBase:  cfg.HolidaysSheet,
		logger:        logger,
	}, nil
}

// newSheetsService authenticates with a service account: inline JSON first,
// then a credentials file, then GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config, logger *applog.Logger) (*gsheet.Service, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentials []byte
	switch {
	case inline != "":
		credentials = []byte(inline)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentials = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created", "inline_credentials", inline != "")
	return svc, nil
}

// AppendPaid writes the row after the last used row of "<year> Ledger",
// where year is the posting year.
func (c *Client) AppendPaid(ctx context.Context, row ports.LedgerRow) (string, error) {
	if err := row.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	sheet := yearPrefixedName(c.ledgerBase, row.Posted.Year())
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, fmt.Sprintf("%s!A:A", sheet)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", sheet, err)
	}
	next := len(resp.Values) + 1

	rng := fmt.Sprintf("%s!A%d:F%d", sheet, next, next)
	vr := &gsheet.ValueRange{Values: [][]any{ledgerValues(row)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", rng, err)
	}

	c.logger.InfoContext(ctx, "Ledger row appended",
		applog.FieldExpenseID, row.ExpenseID,
		applog.FieldSheetsRef, rng)
	return rng, nil
}

// ListPaid reads back every ledger row of a year.
func (c *Client) ListPaid(ctx context.Context, year int) ([]ports.LedgerRow, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:F", yearPrefixedName(c.ledgerBase, year))
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseLedger(resp.Values), nil
}

// ListHolidays reads "<year> Holidays": ISO date in column A, name in B.
func (c *Client) ListHolidays(ctx context.Context, year int) ([]core.Holiday, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:B", yearPrefixedName(c.holidaysBase, year))
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseHolidays(resp.Values, year), nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
