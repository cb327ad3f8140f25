package main

import (
	"context"
	"errors"
	"os"
	"time"

	"budgetly/internal/amqp"
	"budgetly/internal/cli"
	"budgetly/internal/insights"
	"budgetly/internal/log"
	"budgetly/internal/sheets"
	gsheet "budgetly/internal/sheets/google"
	"budgetly/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(log.New(log.DefaultConfig()))
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	logger.Info("Starting budget-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for budget-worker")
		os.Exit(1)
	}

	res, err := cli.OpenStore(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to open store", log.FieldBackend, cfg.DataBackend, log.FieldError, err)
		os.Exit(1)
	}

	// Mutations happen in other processes, so a cache here would only
	// serve stale statuses.
	engine := insights.New(res.Store, insights.WithLogger(logger.WithComponent(log.ComponentInsights).Logger))

	var mirror sheets.ExpenseMirror
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.WithComponent(log.ComponentSheets).Error("Failed to initialize Google Sheets client", log.FieldError, err)
			_ = res.Close()
			os.Exit(1)
		}
		mirror = client
		logger.WithComponent(log.ComponentSheets).Info("Google Sheets mirror enabled",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Google Sheets mirror disabled, no GOOGLE_SPREADSHEET_ID provided")
	}

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.WithComponent(log.ComponentAMQP).Error("Failed to initialize AMQP client", log.FieldError, err)
		_ = res.Close()
		os.Exit(1)
	}
	res.AddCleanup(consumer.Close)

	alerts := worker.NewAlertWorker(engine, mirror, logger.WithComponent(log.ComponentWorker), cfg.AlertInterval)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) error {
		return errors.Join(alerts.Stop(ctx), res.Close())
	})

	if err := alerts.Start(ctx); err != nil {
		logger.Error("Failed to start alert sweep", log.FieldError, err)
		_ = res.Close()
		os.Exit(1)
	}

	go func() {
		err := consumer.ConsumeEvents(ctx, alerts.HandleEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Event consumption failed", log.FieldError, err)
		}
	}()

	logger.Info("budget-worker running",
		"queue", cfg.AMQPQueue,
		"alert_interval", cfg.AlertInterval.String(),
		"mirror_enabled", mirror != nil)

	cli.WaitForShutdown(ctx, done)
}
