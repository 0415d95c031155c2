package main

import (
	"context"
	"errors"
	"os"

	"hisab/internal/amqp"
	"hisab/internal/backend"
	"hisab/internal/cli"
	"hisab/internal/config"
	applog "hisab/internal/log"
	gsheet "hisab/internal/sheets/google"
	"hisab/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig((*config.Config).ValidateJournal)
	logger = logger.WithComponent(applog.ComponentWorker)
	logger.Info("Starting hisab-worker")

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}
	repo, err := backend.OpenRepository(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to open database", applog.FieldError, err.Error(), "driver", backendCfg.Driver.String())
		os.Exit(1)
	}
	defer repo.Close()

	journal, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	if err := journal.EnsureHeader(ctx); err != nil {
		// not fatal: appends still work on a sheet without a header
		logger.Warn("Failed to ensure journal header", applog.FieldError, err.Error())
	}
	logger.Info("Google Sheets journal initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	// unbounded attempts: the worker is useless without the broker
	amqpClient, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, 0)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	jw := worker.NewJournalWorker(repo, journal, logger)
	err = amqpClient.ConsumeEvents(ctx, jw.HandleEvent)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
