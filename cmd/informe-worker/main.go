package main

import (
	"context"
	"errors"
	"os"
	"time"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"informe/internal/amqp"
	"informe/internal/backend"
	"informe/internal/buildinfo"
	"informe/internal/cli"
	applog "informe/internal/log"
	"informe/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig()
	if err == nil {
		err = cfg.ValidateWorker()
	}
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, os.Stdout).WithComponent(applog.ComponentWorker)
	logger.Info("Starting informe-worker", "version", buildinfo.String())

	profile, err := cli.LoadProfile(cfg)
	if err != nil {
		logger.Error("Failed to load store profile", applog.FieldError, err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	store, err := factory.CreateStore(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	mirror, err := factory.CreateMirror(context.Background(), backend.MirrorFromAppConfig(cfg))
	if err != nil {
		logger.Error("Failed to initialize spreadsheet mirror", applog.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(store.SQLite, mirror, profile.CardFeePercent, cfg.SyncBatchSize, logger)

	ctx, done := cli.GracefulShutdown(context.Background(), logger, 15*time.Second, nil)

	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := amqpClient.ConsumeRecordSync(gctx, syncWorker.HandleSyncMessage)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return syncWorker.Run(gctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	<-done
	logger.Info("Worker stopped gracefully")
}
