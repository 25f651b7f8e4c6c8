package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"timetrack/internal/amqp"
	"timetrack/internal/cli"
	applog "timetrack/internal/log"
	"timetrack/internal/services"
	gsheet "timetrack/internal/sheets/google"
	"timetrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger("info", applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentWorker)

	logger.Info("Starting timetrack-worker")

	if !cfg.SheetsEnabled() {
		cli.Fatal(logger, "Sheets mirror is not configured", errors.New("GOOGLE_SPREADSHEET_ID is required"))
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	mirror, err := gsheet.New(context.Background(), gsheet.Options{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}
	logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	syncWorker := worker.NewSyncWorker(repo, mirror, cfg.SyncBatchSize)
	processor := services.NewSyncProcessor(syncWorker, services.SyncProcessorConfig{PollInterval: cfg.SyncInterval})

	var consumer *amqp.Client
	if cfg.AMQPURL != "" {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize AMQP client", err)
		}
	} else {
		logger.Info("AMQP disabled, relying on periodic sync only")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := processor.Stop(shutdownCtx); err != nil {
			logger.Warn("Sync processor stop", applog.FieldError, err)
		}
		if consumer != nil {
			if err := consumer.Close(); err != nil {
				logger.Warn("AMQP close", applog.FieldError, err)
			}
		}
	})

	logger.Info("Performing startup sync check")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if consumer != nil {
		g.Go(func() error {
			err := consumer.ConsumeEntrySync(gctx, syncWorker.HandleSyncMessage)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	if err := processor.Start(ctx); err != nil {
		cli.Fatal(logger, "Failed to start sync processor", err)
	}

	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", applog.FieldError, err)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
