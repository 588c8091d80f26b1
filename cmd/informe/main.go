package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"informe/internal/amqp"
	"informe/internal/backend"
	"informe/internal/buildinfo"
	"informe/internal/cache"
	"informe/internal/cli"
	apphttp "informe/internal/http"
	applog "informe/internal/log"
	"informe/internal/records"
	"informe/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, os.Stdout)
	logger.Info("Starting informe", "version", buildinfo.String())

	profile, err := cli.LoadProfile(cfg)
	if err != nil {
		logger.Error("Failed to load store profile", applog.FieldError, err, "path", cfg.StoreProfile)
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Failed to load time zone", applog.FieldError, err)
		os.Exit(1)
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	store, err := backend.NewFactory(logger).CreateStore(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Close()

	opts := services.Options{Profile: profile, Location: loc, Logger: logger}

	var amqpClient *amqp.Client
	if cfg.SyncEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// records stay pending and the worker's scan picks them up
			logger.Warn("Failed to initialize AMQP client, continuing without publishing", applog.FieldError, err)
		} else {
			opts.Publisher = amqpClient
			defer amqpClient.Close()
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc, err := services.NewInformeService(records.NewRepository(store.Store, logger), opts)
	if err != nil {
		logger.Error("Failed to create informe service", applog.FieldError, err)
		os.Exit(1)
	}

	cacheManager := cache.NewManager(logger)
	svc.RegisterCaches(cacheManager)
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, svc, logger)

	ctx, done := cli.GracefulShutdown(context.Background(), logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", "port", cfg.Port, "backend", cfg.DataBackend, "sync", amqpClient != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	<-done
	logger.Info("Server stopped gracefully")
}
