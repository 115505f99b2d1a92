// Package ledger holds the two in-memory collections of the tracker:
// recorded transactions and the category registry.
//
// Neither type is safe for concurrent use; services.Tracker serialises access.
package ledger

import (
	"slices"

	"fintrack/internal/core"
)

// Ledger is the list of recorded transactions in insertion order.
type Ledger struct {
	items []core.Transaction
}

func New(items []core.Transaction) *Ledger {
	return &Ledger{items: slices.Clone(items)}
}

func (l *Ledger) Add(t core.Transaction) {
	l.items = append(l.items, t)
}

// Delete removes the entry with id. It reports whether anything was removed.
func (l *Ledger) Delete(id string) bool {
	i := slices.IndexFunc(l.items, func(t core.Transaction) bool { return t.ID == id })
	if i < 0 {
		return false
	}
	l.items = slices.Delete(l.items, i, i+1)
	return true
}

func (l *Ledger) Find(id string) (core.Transaction, bool) {
	for _, t := range l.items {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

// All returns a copy of the entries.
func (l *Ledger) All() []core.Transaction {
	return slices.Clone(l.items)
}

func (l *Ledger) Len() int {
	return len(l.items)
}
