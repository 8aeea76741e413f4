package main

import (
	"context"
	"errors"
	"os"
	"time"

	"payplan/internal/amqp"
	"payplan/internal/cache"
	"payplan/internal/cli"
	applog "payplan/internal/log"
	"payplan/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting payplan-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ledger, err := cli.OpenLedger(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open ledger", applog.FieldError, err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ledgerWorker := worker.NewLedgerWorker(repo, ledger, logger)

	caches := cache.NewManager(logger)
	caches.Register(ledgerWorker.Cache())
	caches.StartCleanup(10 * time.Minute)
	defer caches.Stop()

	// Catch up on anything paid while the worker was down.
	backfill := func() {
		for _, userID := range cfg.BackfillUsers {
			n, err := ledgerWorker.Backfill(ctx, userID)
			if err != nil {
				logger.Error("Backfill failed", applog.FieldUserID, userID, applog.FieldError, err)
				continue
			}
			logger.Info("Backfill complete", applog.FieldUserID, userID, applog.FieldCount, n)
		}
	}
	backfill()

	go func() {
		ticker := time.NewTicker(cfg.BackfillInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				backfill()
			}
		}
	}()

	if err := client.ConsumeExpensePaid(ctx, ledgerWorker.HandleExpensePaid); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
