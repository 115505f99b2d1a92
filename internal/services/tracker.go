package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

// ErrPersist wraps storage failures on mutation. The in-memory state has
// already been rolled back when it is returned.
var ErrPersist = errors.New("could not save changes")

// Publisher forwards change events outside the process.
type Publisher interface {
	PublishEvent(ctx context.Context, ev core.Event) error
}

type Options struct {
	// Seed is the category list used when none was ever stored.
	Seed      []core.Category
	Publisher Publisher
	Logger    *applog.Logger
	Now       func() time.Time
}

// Tracker owns the ledger and the category registry, persists every change
// as a whole-collection write and notifies subscribers afterwards.
type Tracker struct {
	mu       sync.RWMutex
	ledger   *ledger.Ledger
	registry *ledger.Registry

	txStore  *storage.Collection[[]core.Transaction]
	catStore *storage.Collection[[]core.Category]

	publisher Publisher
	logger    *applog.Logger
	events    *applog.StructuredLogger
	now       func() time.Time

	listenersMu sync.RWMutex
	listeners   []func(core.Event)
}

// NewTracker loads both collections from backend.
func NewTracker(ctx context.Context, backend storage.Backend, opts Options) *Tracker {
	if opts.Seed == nil {
		opts.Seed = core.DefaultCategories()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	logger := opts.Logger.WithComponent(applog.ComponentLedger)

	t := &Tracker{
		txStore:   storage.NewCollection[[]core.Transaction](backend, storage.KeyTransactions),
		catStore:  storage.NewCollection[[]core.Category](backend, storage.KeyCategories),
		publisher: opts.Publisher,
		logger:    logger,
		events:    applog.NewStructuredLogger(logger),
		now:       opts.Now,
	}
	t.ledger = ledger.New(t.txStore.Read(ctx, []core.Transaction{}))
	t.registry = ledger.NewRegistry(t.catStore.Read(ctx, opts.Seed))

	logger.InfoContext(ctx, "Ledger loaded",
		applog.FieldOperation, applog.OpStartup,
		"transactions", t.ledger.Len(),
		"categories", t.registry.Len())
	return t
}

// Subscribe registers fn to be called after every successful mutation.
func (t *Tracker) Subscribe(fn func(core.Event)) {
	t.listenersMu.Lock()
	defer t.listenersMu.Unlock()
	t.listeners = append(t.listeners, fn)
}

func (t *Tracker) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	tx, err := in.Parse(t.now())
	if err != nil {
		return core.Transaction{}, err
	}

	t.mu.Lock()
	t.ledger.Add(tx)
	if err := t.txStore.Write(ctx, t.ledger.All()); err != nil {
		t.ledger.Delete(tx.ID)
		t.mu.Unlock()
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	t.mu.Unlock()

	t.events.LogTransactionCreated(ctx, tx.ID, tx.Kind.String(), tx.Amount.String(), tx.Category)
	t.emit(ctx, core.TransactionAdded, tx.ID)
	return tx, nil
}

// DeleteTransaction reports false without touching storage when id is unknown.
func (t *Tracker) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	t.mu.Lock()
	removed, ok := t.ledger.Find(id)
	if !ok {
		t.mu.Unlock()
		return false, nil
	}
	before := t.ledger.All()
	t.ledger.Delete(id)
	if err := t.txStore.Write(ctx, t.ledger.All()); err != nil {
		t.ledger = ledger.New(before)
		t.mu.Unlock()
		return false, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "Transaction deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldTransactionID, removed.ID,
		applog.FieldAmount, removed.Amount.String())
	t.emit(ctx, core.TransactionDeleted, id)
	return true, nil
}

func (t *Tracker) AddCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	c, err := in.Parse()
	if err != nil {
		return core.Category{}, err
	}

	t.mu.Lock()
	t.registry.Add(c)
	if err := t.catStore.Write(ctx, t.registry.All()); err != nil {
		t.registry.Delete(c.ID)
		t.mu.Unlock()
		return core.Category{}, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	t.mu.Unlock()

	t.events.LogCategoryCreated(ctx, c.ID, c.Name, c.Kind.String())
	t.emit(ctx, core.CategoryAdded, c.ID)
	return c, nil
}

// DeleteCategory removes a category. Transactions referencing it keep the
// stale id and display as core.UnknownCategory.
func (t *Tracker) DeleteCategory(ctx context.Context, id string) (bool, error) {
	t.mu.Lock()
	if _, ok := t.registry.Find(id); !ok {
		t.mu.Unlock()
		return false, nil
	}
	before := t.registry.All()
	t.registry.Delete(id)
	if err := t.catStore.Write(ctx, t.registry.All()); err != nil {
		t.registry = ledger.NewRegistry(before)
		t.mu.Unlock()
		return false, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "Category deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldCategoryID, id)
	t.emit(ctx, core.CategoryDeleted, id)
	return true, nil
}

func (t *Tracker) Transactions() []core.Transaction {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ledger.All()
}

func (t *Tracker) Categories() []core.Category {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.registry.All()
}

func (t *Tracker) CategoriesByKind(kind core.Kind) []core.Category {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.registry.ByKind(kind)
}

func (t *Tracker) CategoryName(id string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.registry.Name(id)
}

// Snapshot returns both collections as of the same instant.
func (t *Tracker) Snapshot() ([]core.Transaction, []core.Category) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ledger.All(), t.registry.All()
}

func (t *Tracker) Now() time.Time {
	return t.now()
}

func (t *Tracker) emit(ctx context.Context, typ core.EventType, id string) {
	ev := core.Event{Type: typ, ID: id, At: t.now().UTC()}

	t.listenersMu.RLock()
	listeners := make([]func(core.Event), len(t.listeners))
	copy(listeners, t.listeners)
	t.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}

	if t.publisher == nil {
		return
	}
	// the local write already succeeded, a broker outage only costs the snapshot
	if err := t.publisher.PublishEvent(ctx, ev); err != nil {
		t.logger.ErrorContext(ctx, "Failed to publish ledger event",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldEvent, string(typ),
			applog.FieldError, err)
	}
}
