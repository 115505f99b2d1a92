// Command fintrack-worker keeps a CSV snapshot of the ledger up to date.
// It consumes change events from AMQP and re-exports after each one, with
// a periodic snapshot as a backstop for lost messages.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Stdout, os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentWorker)

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	if err := checkWorkerConfig(cfg); err != nil {
		logger.Error("Worker cannot start", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// checkWorkerConfig rejects setups where the worker cannot see the server's
// writes: bolt holds an exclusive file lock and memory is per process.
func checkWorkerConfig(cfg *config.Config) error {
	if !cfg.AMQPEnabled() {
		return errors.New("AMQP_URL is required")
	}
	if cfg.DataBackend != string(backend.SQLiteBackend) {
		return fmt.Errorf("DATA_BACKEND must be sqlite to share the ledger with the server, got %q", cfg.DataBackend)
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	store, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Cleanup()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("connect to AMQP: %w", err)
	}
	defer client.Close()

	snapshots := worker.NewSnapshotWorker(store.Backend, cfg.ExportDir, cfg.ExportPrefix)

	// catch up on changes made while the worker was down
	if _, err := snapshots.Snapshot(ctx); err != nil {
		logger.Error("Startup snapshot failed", applog.FieldError, err)
	}

	logger.Info("Starting fintrack-worker",
		applog.FieldBackend, cfg.DataBackend,
		"queue", cfg.AMQPQueue,
		"export_dir", cfg.ExportDir,
		"interval", cfg.SnapshotInterval.String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeEvents(gctx, snapshots.HandleEvent)
	})
	g.Go(func() error {
		snapshots.Run(gctx, cfg.SnapshotInterval)
		return nil
	})
	return g.Wait()
}
