package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Level: slog.LevelError, Output: &bytes.Buffer{}})
}

func newTestTracker(t *testing.T, backend storage.Backend, pub Publisher) *Tracker {
	t.Helper()
	return NewTracker(context.Background(), backend, Options{
		Publisher: pub,
		Logger:    quietLogger(),
		Now:       func() time.Time { return fixedNow },
	})
}

type failingBackend struct {
	*storage.MemoryBackend
	failPut bool
}

func (f *failingBackend) Put(ctx context.Context, key string, value []byte) error {
	if f.failPut {
		return errors.New("disk full")
	}
	return f.MemoryBackend.Put(ctx, key, value)
}

type recordingPublisher struct {
	events []core.Event
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, ev core.Event) error {
	p.events = append(p.events, ev)
	return p.err
}

func TestNewTrackerSeedsCategories(t *testing.T) {
	tr := newTestTracker(t, storage.NewMemoryBackend(), nil)
	if got := len(tr.Categories()); got != 5 {
		t.Fatalf("expected 5 seeded categories, got %d", got)
	}
	if got := len(tr.Transactions()); got != 0 {
		t.Fatalf("expected empty ledger, got %d", got)
	}
}

func TestNewTrackerKeepsStoredCategories(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend()
	// an explicitly emptied registry stays empty
	if err := storage.NewCollection[[]core.Category](b, storage.KeyCategories).Write(ctx, []core.Category{}); err != nil {
		t.Fatal(err)
	}
	tr := newTestTracker(t, b, nil)
	if got := len(tr.Categories()); got != 0 {
		t.Fatalf("expected stored empty registry, got %d", got)
	}
}

func TestAddTransaction(t *testing.T) {
	ctx := context.Background()
	b := storage.NewMemoryBackend()
	tr := newTestTracker(t, b, nil)

	in := core.TransactionInput{Amount: "42.10", Kind: "expense", Category: "2", Date: "2025-06-01", Notes: "weekly shop"}
	tx, err := tr.AddTransaction(ctx, in)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	all := tr.Transactions()
	if len(all) != 1 {
		t.Fatalf("ledger length should grow by one, got %d", len(all))
	}
	got := all[0]
	if got.ID != tx.ID || got.Amount.String() != "42.1" || got.Kind != core.Expense ||
		got.Category != "2" || got.Date.String() != "2025-06-01" || got.Notes != "weekly shop" {
		t.Fatalf("stored entry does not match input: %+v", got)
	}
	if !got.CreatedAt.Equal(fixedNow) {
		t.Fatalf("createdAt = %v", got.CreatedAt)
	}

	// persisted: a fresh tracker over the same backend sees it
	again := newTestTracker(t, b, nil)
	if len(again.Transactions()) != 1 {
		t.Fatalf("transaction was not persisted")
	}
}

func TestAddTransactionValidation(t *testing.T) {
	tr := newTestTracker(t, storage.NewMemoryBackend(), nil)
	_, err := tr.AddTransaction(context.Background(), core.TransactionInput{Kind: "income"})
	var fe core.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if fe["amount"] == "" || fe["category"] == "" {
		t.Fatalf("expected amount and category errors, got %v", fe)
	}
	if len(tr.Transactions()) != 0 {
		t.Fatalf("invalid input must not be recorded")
	}
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, storage.NewMemoryBackend(), nil)

	var ids []string
	for _, amt := range []string{"10", "5", "20"} {
		tx, err := tr.AddTransaction(ctx, core.TransactionInput{Amount: amt, Category: "2"})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, tx.ID)
	}

	ok, err := tr.DeleteTransaction(ctx, ids[1])
	if err != nil || !ok {
		t.Fatalf("delete existing: ok=%v err=%v", ok, err)
	}
	remaining := tr.Transactions()
	if len(remaining) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(remaining))
	}
	for _, r := range remaining {
		if r.ID == ids[1] {
			t.Fatalf("deleted entry still present")
		}
	}

	ok, err = tr.DeleteTransaction(ctx, "does-not-exist")
	if err != nil || ok {
		t.Fatalf("unknown id should be a no-op: ok=%v err=%v", ok, err)
	}
	if len(tr.Transactions()) != 2 {
		t.Fatalf("no-op delete changed the ledger")
	}
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, storage.NewMemoryBackend(), nil)

	c, err := tr.AddCategory(ctx, core.CategoryInput{Name: "Travel", Kind: "expense"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := tr.AddTransaction(ctx, core.TransactionInput{Amount: "300", Category: c.ID}); err != nil {
		t.Fatal(err)
	}

	ok, err := tr.DeleteCategory(ctx, c.ID)
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	// no cascade
	if len(tr.Transactions()) != 1 {
		t.Fatalf("deleting a category must not delete transactions")
	}
	if got := tr.CategoryName(c.ID); got != core.UnknownCategory {
		t.Fatalf("expected dangling reference to read %s, got %s", core.UnknownCategory, got)
	}

	if _, err := tr.AddCategory(ctx, core.CategoryInput{Name: " "}); err == nil {
		t.Fatalf("blank name must be rejected")
	}
}

func TestWriteFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	b := &failingBackend{MemoryBackend: storage.NewMemoryBackend()}
	tr := newTestTracker(t, b, nil)
	tx, err := tr.AddTransaction(ctx, core.TransactionInput{Amount: "1", Category: "2"})
	if err != nil {
		t.Fatal(err)
	}

	b.failPut = true
	if _, err := tr.AddTransaction(ctx, core.TransactionInput{Amount: "2", Category: "2"}); !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if len(tr.Transactions()) != 1 {
		t.Fatalf("failed add must be rolled back")
	}
	if _, err := tr.DeleteTransaction(ctx, tx.ID); !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if len(tr.Transactions()) != 1 {
		t.Fatalf("failed delete must be rolled back")
	}
	if _, err := tr.DeleteCategory(ctx, "1"); !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if len(tr.Categories()) != 5 {
		t.Fatalf("failed category delete must be rolled back")
	}
}

func TestEventsAfterMutation(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	tr := newTestTracker(t, storage.NewMemoryBackend(), pub)

	var seen []core.EventType
	tr.Subscribe(func(ev core.Event) { seen = append(seen, ev.Type) })

	tx, err := tr.AddTransaction(ctx, core.TransactionInput{Amount: "1", Category: "2"})
	if err != nil {
		t.Fatalf("publish failure must not fail the mutation: %v", err)
	}
	if _, err := tr.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatal(err)
	}

	want := []core.EventType{core.TransactionAdded, core.TransactionDeleted}
	if len(seen) != len(want) || seen[0] != want[0] || seen[1] != want[1] {
		t.Fatalf("subscriber saw %v, want %v", seen, want)
	}
	if len(pub.events) != 2 || pub.events[0].ID != tx.ID {
		t.Fatalf("publisher saw %+v", pub.events)
	}
}
