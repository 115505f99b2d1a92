package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

// SnapshotWorker keeps an up-to-date CSV export of the ledger on disk.
// It re-reads the persisted ledger on every event, so it can run in a
// separate process from the one that mutates it.
type SnapshotWorker struct {
	transactions *storage.Collection[[]core.Transaction]
	dir          string
	prefix       string
	now          func() time.Time

	mu   sync.Mutex
	last []byte
}

func NewSnapshotWorker(backend storage.Backend, dir, prefix string) *SnapshotWorker {
	return &SnapshotWorker{
		transactions: storage.NewCollection[[]core.Transaction](backend, storage.KeyTransactions),
		dir:          dir,
		prefix:       prefix,
		now:          time.Now,
	}
}

// HandleEvent processes a single ledger event message from AMQP.
func (w *SnapshotWorker) HandleEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	slog.InfoContext(ctx, "Processing ledger event",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldEvent, string(msg.Type),
		"id", msg.ID)

	// category changes do not alter the export, which holds raw references
	if msg.Type == core.CategoryAdded || msg.Type == core.CategoryDeleted {
		return nil
	}
	_, err := w.Snapshot(ctx)
	return err
}

// Snapshot writes the export if the ledger changed since the last one.
// It returns the written path, or "" when nothing was written.
func (w *SnapshotWorker) Snapshot(ctx context.Context) (string, error) {
	txs := w.transactions.Read(ctx, nil)
	doc, ok := export.CSV(txs)
	if !ok {
		slog.DebugContext(ctx, "Ledger is empty, no snapshot written",
			applog.FieldComponent, applog.ComponentWorker)
		return "", nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if bytes.Equal(doc, w.last) {
		return "", nil
	}

	path, err := export.WriteFile(w.dir, w.prefix, txs, w.now())
	if errors.Is(err, export.ErrEmptyLedger) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	w.last = doc

	slog.InfoContext(ctx, "Snapshot written",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldOperation, applog.OpExport,
		applog.FieldFile, path,
		applog.FieldCount, len(txs))
	return path, nil
}

// Run takes a snapshot every interval until ctx is done. It backs up the
// event stream in case messages were lost.
func (w *SnapshotWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Snapshot(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic snapshot failed",
					applog.FieldComponent, applog.ComponentWorker,
					applog.FieldError, err)
			}
		}
	}
}
