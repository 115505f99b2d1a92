// Package storage persists whole application collections under string keys.
//
// A Backend only moves bytes. Collection layers JSON encoding and the
// read-with-default policy on top: a missing, unreadable or corrupt value
// yields the caller's default instead of an error.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	applog "fintrack/internal/log"
)

// Keys used for the persisted state.
const (
	KeyTransactions = "transactions"
	KeyCategories   = "categories"
)

// ErrNotFound is returned by a Backend when no value was ever written under a key.
var ErrNotFound = errors.New("key not found")

// Backend is a durable key-value store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Collection is a typed view of a single key.
type Collection[T any] struct {
	backend Backend
	key     string
}

func NewCollection[T any](backend Backend, key string) *Collection[T] {
	return &Collection[T]{backend: backend, key: key}
}

// Read returns the stored value, or def when nothing usable is stored.
func (c *Collection[T]) Read(ctx context.Context, def T) T {
	raw, err := c.backend.Get(ctx, c.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.WarnContext(ctx, "Storage read failed, using default",
				applog.FieldComponent, applog.ComponentStorage,
				applog.FieldOperation, applog.OpRead,
				applog.FieldKey, c.key,
				applog.FieldError, err)
		}
		return def
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.WarnContext(ctx, "Stored value is corrupt, using default",
			applog.FieldComponent, applog.ComponentStorage,
			applog.FieldOperation, applog.OpParse,
			applog.FieldKey, c.key,
			applog.FieldError, err)
		return def
	}
	return v
}

// Write replaces the stored value with v.
func (c *Collection[T]) Write(ctx context.Context, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.backend.Put(ctx, c.key, raw); err != nil {
		return fmt.Errorf("write %s: %w", c.key, err)
	}
	return nil
}
