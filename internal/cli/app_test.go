package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payplan/internal/config"
	"payplan/internal/core"
	applog "payplan/internal/log"
	"payplan/internal/sheets/memory"
)

type listerFunc func(ctx context.Context, year int) ([]core.Holiday, error)

func (f listerFunc) ListHolidays(ctx context.Context, year int) ([]core.Holiday, error) {
	return f(ctx, year)
}

func TestHolidayProvider(t *testing.T) {
	custom := listerFunc(func(context.Context, int) ([]core.Holiday, error) {
		return []core.Holiday{{Date: core.MustParseDate("2025-03-14"), Name: "Company Day"}}, nil
	})
	ledger := memory.New([]core.Holiday{{Date: core.MustParseDate("2025-07-04"), Name: "Sheet Name"}})

	p, err := HolidayProvider([]string{"federal", "custom", "sheet"}, custom, ledger)
	require.NoError(t, err)
	set, err := p.HolidaysForYear(context.Background(), 2025)
	require.NoError(t, err)
	assert.Equal(t, "Company Day", set[core.MustParseDate("2025-03-14")])
	assert.NotEqual(t, "Sheet Name", set[core.MustParseDate("2025-07-04")], "earlier sources win")

	_, err = HolidayProvider([]string{"sheet"}, custom, nil)
	assert.Error(t, err)
	_, err = HolidayProvider([]string{"lunar"}, custom, nil)
	assert.Error(t, err)
}

func TestNewApp(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "holidays.txt"), []byte("2025-03-14 Sheet Holiday\n"), 0o600))

	cfg := &config.Config{
		SQLiteDBPath:         filepath.Join(dir, "db", "payplan.db"),
		LedgerBackend:        "memory",
		DataDir:              dir,
		HolidaySources:       []string{"federal", "custom", "sheet"},
		HolidayCacheSize:     4,
		HolidayCacheTTL:      time.Hour,
		ForecastPolicy:       "first",
		ForecastConcurrency:  2,
		ReconcileTimeout:     time.Second,
		ReconcileMaxAttempts: 2,
	}
	app, err := NewApp(context.Background(), cfg, applog.Discard())
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Publisher)

	// 2025-03-14 is a Friday holiday from the ledger, so the 15th paycheck
	// rolls back to Thursday.
	paychecks, err := app.Calendar.Generate(context.Background(), core.MustParseDate("2025-03-01"), core.MustParseDate("2025-03-31"))
	require.NoError(t, err)
	require.Len(t, paychecks, 2)
	assert.Equal(t, core.MustParseDate("2025-03-13"), paychecks[0].Adjusted)

	require.NoError(t, app.Repo.UpsertHoliday(context.Background(), core.Holiday{Date: core.MustParseDate("2025-03-28"), Name: "Custom"}))
	app.InvalidateHolidays(2025)
	paychecks, err = app.Calendar.Generate(context.Background(), core.MustParseDate("2025-03-01"), core.MustParseDate("2025-03-31"))
	require.NoError(t, err)
	assert.Equal(t, core.MustParseDate("2025-03-27"), paychecks[1].Adjusted)
}

func TestNewAppRejectsBadPolicy(t *testing.T) {
	cfg := &config.Config{SQLiteDBPath: filepath.Join(t.TempDir(), "payplan.db"), ForecastPolicy: "sometimes"}
	_, err := NewApp(context.Background(), cfg, applog.Discard())
	assert.ErrorIs(t, err, core.ErrValidation)
}
