package backend

import (
	"context"
	"fmt"
	"log/slog"

	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		b    storage.Backend
		err  error
		path string
	)
	switch config.Type {
	case BoltBackend:
		path = config.BoltDBPath
		b, err = storage.NewBoltBackend(path)
	case SQLiteBackend:
		path = config.SQLiteDBPath
		b, err = storage.NewSQLiteBackend(path)
	case MemoryBackend:
		b = storage.NewMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize %s backend: %w", config.Type, err)
	}

	f.logger.InfoContext(ctx, "Storage backend ready",
		applog.FieldComponent, applog.ComponentBackend,
		applog.FieldBackend, config.Type.String(),
		applog.FieldFile, path)

	return &BackendResult{
		Backend: b,
		Type:    config.Type,
		Cleanup: func() error {
			f.logger.Info("Closing storage backend",
				applog.FieldComponent, applog.ComponentBackend,
				applog.FieldBackend, config.Type.String())
			return b.Close()
		},
	}, nil
}
