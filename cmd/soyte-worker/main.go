package main

import (
	"context"
	"errors"
	"os"
	"time"

	"soyte/internal/amqp"
	"soyte/internal/cli"
	"soyte/internal/core"
	"soyte/internal/excel"
	"soyte/internal/log"
	"soyte/internal/sheets"
	gsheet "soyte/internal/sheets/google"
	"soyte/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting soyte-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// The Google Sheets mirror is optional; the workbook export runs
	// either way.
	var mirror sheets.EntryAppender
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets mirror", log.FieldError, err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets mirror disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	projector := excel.Projector{
		Strategy: excel.FormulaLinked,
		Price:    cfg.PricePerBook,
		Owner:    cfg.DefaultUser,
	}
	if cfg.ExportStrategy == "static" {
		projector.Strategy = excel.StaticValues
	}

	exportWorker := worker.NewExportWorker(repo, projector, cfg.ExportDir, mirror)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		_ = amqpClient.Close()
	})

	// Catch up the current month on startup in case messages were lost
	// while the worker was down.
	if err := exportWorker.RegenerateExport(ctx, cfg.DefaultUser, core.CurrentMonth()); err != nil {
		logger.Error("Startup export regeneration failed", log.FieldError, err)
		// Keep running; the next entry change will retry.
	}

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- amqpClient.ConsumeEntryChanged(ctx, func(msg *amqp.EntryChangedMessage) error {
			return exportWorker.HandleEntryChanged(ctx, msg)
		})
	}()

	// Periodic re-export picks up anything the change stream missed,
	// e.g. writes made while the broker was unreachable.
	go func() {
		ticker := time.NewTicker(cfg.ExportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := exportWorker.RegenerateExport(ctx, cfg.DefaultUser, core.CurrentMonth()); err != nil {
					logger.Error("Periodic export regeneration failed", log.FieldError, err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	select {
	case err := <-consumeErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
