// Package commands implements informectl, the command-line companion of
// the informe server.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"informe/internal/amqp"
	"informe/internal/backend"
	"informe/internal/buildinfo"
	"informe/internal/cli"
	"informe/internal/core"
	"informe/internal/records"
	"informe/internal/services"
)

// Opener builds the service a command runs against. The returned function
// releases whatever the service holds.
type Opener func(ctx context.Context, stderr io.Writer) (*services.InformeService, func() error, error)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(openFromEnv)
}

func newRootCommand(open Opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "informectl",
		Short:   "Daily financial report of the store, from the command line",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newReportCommand(open),
		newImageCommand(open),
		newDashboardCommand(open),
		newChartCommand(open),
		newSetCommand(open),
	)

	return rootCmd
}

// openFromEnv wires the service the same way the server does.
func openFromEnv(ctx context.Context, stderr io.Writer) (*services.InformeService, func() error, error) {
	cli.LoadEnvFile()
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := cli.SetupLogger(cfg.LogLevel, stderr)

	profile, err := cli.LoadProfile(cfg)
	if err != nil {
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := backend.NewFactory(logger).CreateStore(ctx, bcfg)
	if err != nil {
		return nil, nil, err
	}
	closers := []func() error{store.Close}

	opts := services.Options{Profile: profile, Location: loc, Logger: logger}
	if cfg.SyncEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, edits will be picked up by the worker's scan", "error", err)
		} else {
			opts.Publisher = client
			closers = append(closers, client.Close)
		}
	}

	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	svc, err := services.NewInformeService(records.NewRepository(store.Store, logger), opts)
	if err != nil {
		_ = closeAll()
		return nil, nil, err
	}
	return svc, closeAll, nil
}

// withService opens the service for the duration of run.
func withService(cmd *cobra.Command, open Opener, run func(svc *services.InformeService) error) (err error) {
	svc, closeFn, err := open(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return run(svc)
}

// resolveDate parses --date, defaulting to the service's today.
func resolveDate(svc *services.InformeService, value string) (core.Date, error) {
	if strings.TrimSpace(value) == "" {
		return svc.Today(), nil
	}
	return core.ParseDateKey(value)
}

// describeValidation lists the invalid fields, one per line.
func describeValidation(err error) error {
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	names := make([]string, 0, len(verr.Fields))
	for name := range verr.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("campos inválidos:")
	for _, name := range names {
		fmt.Fprintf(&b, "\n  %s: %s", name, verr.Fields[name])
	}
	return errors.New(b.String())
}

func writeFile(path string, b []byte) error {
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
