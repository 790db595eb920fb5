package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"drivelogger/internal/amqp"
	"drivelogger/internal/cli"
	gsheet "drivelogger/internal/export/google"
	applog "drivelogger/internal/log"
	"drivelogger/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)

	logger.Info("Starting export-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required: the worker has nothing to export to without it")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required: the worker consumes record change notifications")
		os.Exit(1)
	}

	// The worker reads the same SQLite database the server writes.
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	sheetsClient, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(repo, sheetsClient, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catch up on anything that changed while the worker was down.
	if err := exportWorker.ExportAllOwners(ctx, repo); err != nil {
		logger.Error("Startup sweep failed", "error", err)
		// Keep running; the consume loop and periodic sweeps will retry.
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := amqpClient.ConsumeRecordChanges(gctx, exportWorker.HandleChange); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	// Periodic sweep for missed notifications.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.ExportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := exportWorker.ExportAllOwners(gctx, repo); err != nil {
					logger.Error("Periodic sweep failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
