// Package cli holds the start-up steps shared by cmd/informe,
// cmd/informe-worker and cmd/informectl.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"informe/internal/config"
	applog "informe/internal/log"
)

// SetupLogger builds the process logger from LOG_LEVEL and sets it as the
// slog default.
func SetupLogger(level string, w io.Writer) *applog.Logger {
	if w == nil {
		w = os.Stdout
	}
	logger := applog.New(applog.Config{
		Level:   applog.ParseLevel(level),
		Handler: slog.NewTextHandler(w, &slog.HandlerOptions{Level: applog.ParseLevel(level)}),
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadConfig reads the environment and validates it.
func LoadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadProfile reads the store profile named by the config.
func LoadProfile(cfg *config.Config) (*config.Profile, error) {
	p, err := config.LoadProfile(cfg.StoreProfile)
	if err != nil {
		return nil, fmt.Errorf("load store profile: %w", err)
	}
	return &p, nil
}

// GracefulShutdown returns a context cancelled on SIGINT, SIGTERM or when
// parent ends. The cleanup function then runs with a context bounded by
// timeout, and done is closed once it returns.
func GracefulShutdown(parent context.Context, logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (ctx context.Context, done <-chan struct{}) {
	ctx, cancel := context.WithCancel(parent)
	finished := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(finished)
	}()

	return ctx, finished
}
