package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"payplan/internal/cli"
	apphttp "payplan/internal/http"
	applog "payplan/internal/log"
	"payplan/internal/middleware/ratelimit"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize payplan", applog.FieldError, err)
		os.Exit(1)
	}
	defer app.Close()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Calendar:   app.Calendar,
		Forecaster: app.Forecast,
		Reconciler: app.Reconciler,
		Store:      app.Repo,
		Records:    app.Repo,
	}, apphttp.Options{
		RateLimit:      ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute},
		TrustedProxies: cfg.TrustedProxies,
		Logger:         logger,
		HolidayCache:   app.Holidays.Cache(),
	})
	srv.MaxHeaderBytes = 1 << 16

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	}()

	logger.Info("Starting payplan server",
		"port", cfg.Port,
		"ledger_backend", cfg.LedgerBackend,
		"holiday_sources", cfg.HolidaySources,
		"forecast_policy", cfg.ForecastPolicy,
		"events", app.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	<-stopped
	logger.Info("Server stopped gracefully")
}
