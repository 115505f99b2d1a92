// Package cli provides the initialization shared by cmd/fintrack and
// cmd/fintrack-worker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

// SetupLogger builds the application logger at level and makes it the slog default.
func SetupLogger(out io.Writer, level string) *applog.Logger {
	if out == nil {
		out = os.Stdout
	}
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: applog.ComponentApp,
		Output:    out,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// App bundles the long-lived dependencies of a process.
type App struct {
	Config  *config.Config
	Logger  *applog.Logger
	Tracker *services.Tracker
	Backend *backend.BackendResult
	AMQP    *amqp.Client
}

// OpenApp opens the configured storage backend and loads the tracker.
// With publish set and AMQP configured, ledger events are forwarded to the broker.
func OpenApp(ctx context.Context, cfg *config.Config, logger *applog.Logger, publish bool) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger, Backend: res}

	seed, err := ledger.LoadSeed(cfg.SeedCategoriesFile)
	if err != nil {
		logger.WarnContext(ctx, "Ignoring category seed file, using defaults",
			applog.FieldOperation, applog.OpSeed,
			applog.FieldFile, cfg.SeedCategoriesFile,
			applog.FieldError, err)
	}

	var pub services.Publisher
	if publish && cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// the ledger works without a broker; snapshots just go stale
			logger.ErrorContext(ctx, "AMQP unavailable, ledger events will not be published",
				applog.FieldOperation, applog.OpStartup,
				applog.FieldError, err)
		} else {
			app.AMQP = client
			pub = client
		}
	}

	app.Tracker = services.NewTracker(ctx, res.Backend, services.Options{
		Seed:      seed,
		Publisher: pub,
		Logger:    logger,
	})
	return app, nil
}

// Close releases the broker connection and the storage backend.
func (a *App) Close() error {
	var errs []error
	if a.AMQP != nil {
		if err := a.AMQP.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if a.Backend != nil && a.Backend.Cleanup != nil {
		if err := a.Backend.Cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
