package cli

import (
	"context"
	"fmt"
	"slices"
	"time"

	"payplan/internal/amqp"
	"payplan/internal/cache"
	"payplan/internal/calendar"
	"payplan/internal/config"
	"payplan/internal/forecast"
	"payplan/internal/holidays"
	applog "payplan/internal/log"
	"payplan/internal/reconcile"
	"payplan/internal/sheets"
	gsheet "payplan/internal/sheets/google"
	"payplan/internal/sheets/memory"
	"payplan/internal/storage"
)

// Ledger is a spreadsheet backend: the paid-expense ledger plus the
// holidays tab.
type Ledger interface {
	sheets.LedgerWriter
	sheets.LedgerReader
	sheets.HolidayReader
}

// OpenLedger returns the backend selected by LEDGER_BACKEND.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *applog.Logger) (Ledger, error) {
	switch cfg.LedgerBackend {
	case "sheets":
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			LedgerSheet:        cfg.GoogleLedgerSheetName,
			HolidaysSheet:      cfg.GoogleHolidaysSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("google sheets ledger: %w", err)
		}
		logger.Info("Initialized Google Sheets ledger", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		return client, nil
	default:
		logger.Info("Initialized memory ledger", "data_dir", cfg.DataDir)
		return memory.NewFromFile(cfg.DataDir), nil
	}
}

// HolidayProvider merges the configured holiday sources in HOLIDAY_SOURCES
// order. custom reads the store, sheet reads the ledger's holidays tab.
func HolidayProvider(sources []string, store holidays.Lister, ledger holidays.Lister) (holidays.Provider, error) {
	var merged holidays.Merged
	for _, src := range sources {
		switch src {
		case "federal":
			merged = append(merged, holidays.NewUSFederal())
		case "custom":
			merged = append(merged, holidays.Stored{Lister: store})
		case "sheet":
			if ledger == nil {
				return nil, fmt.Errorf("holiday source %q needs a ledger backend", src)
			}
			merged = append(merged, holidays.Stored{Lister: ledger})
		default:
			return nil, fmt.Errorf("unknown holiday source %q", src)
		}
	}
	return merged, nil
}

// App is the wired core shared by the server and the CLI.
type App struct {
	Config     *config.Config
	Logger     *applog.Logger
	Repo       *storage.SQLiteRepository
	Holidays   *holidays.Cached
	Calendar   *calendar.Generator
	Forecast   *forecast.Service
	Reconciler *reconcile.Reconciler
	Publisher  *amqp.Client
	Caches     *cache.Manager
}

// NewApp opens the store and builds the calendar, forecast and
// reconciliation services on top of it. An unreachable broker is logged and
// skipped: expense.paid events are best effort.
func NewApp(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*App, error) {
	policy, err := forecast.ParsePolicy(cfg.ForecastPolicy)
	if err != nil {
		return nil, err
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger, Repo: repo, Caches: cache.NewManager(logger)}

	var ledger holidays.Lister
	if slices.Contains(cfg.HolidaySources, "sheet") {
		l, err := OpenLedger(ctx, cfg, logger)
		if err != nil {
			app.Close()
			return nil, err
		}
		ledger = l
	}
	provider, err := HolidayProvider(cfg.HolidaySources, repo, ledger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Holidays = holidays.NewCached(provider, cfg.HolidayCacheSize, cfg.HolidayCacheTTL, logger)
	app.Caches.Register(app.Holidays.Cache())
	app.Caches.StartCleanup(10 * time.Minute)

	app.Calendar = calendar.NewGenerator(app.Holidays, logger)
	app.Forecast = forecast.NewService(repo, app.Calendar,
		forecast.WithPolicy(policy),
		forecast.WithConcurrency(cfg.ForecastConcurrency),
		forecast.WithLogger(logger))

	opts := []reconcile.Option{reconcile.WithLogger(logger)}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, expense.paid events disabled", applog.FieldError, err)
		} else {
			app.Publisher = client
			opts = append(opts, reconcile.WithPublisher(client))
		}
	}
	rcfg := reconcile.DefaultConfig()
	rcfg.Timeout = cfg.ReconcileTimeout
	rcfg.MaxAttempts = cfg.ReconcileMaxAttempts
	app.Reconciler = reconcile.New(repo, rcfg, opts...)

	return app, nil
}

// Close stops background work and releases the store and broker.
func (a *App) Close() {
	a.Caches.Stop()
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Logger.Warn("AMQP close failed", applog.FieldError, err)
		}
	}
	if err := a.Repo.Close(); err != nil {
		a.Logger.Warn("Store close failed", applog.FieldError, err)
	}
}

// InvalidateHolidays drops the cached year after a custom holiday changes.
func (a *App) InvalidateHolidays(year int) {
	a.Holidays.Invalidate(year)
}
