package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func tx(id string, amount int64) core.Transaction {
	return core.Transaction{
		ID:       id,
		Amount:   decimal.NewFromInt(amount),
		Kind:     core.Expense,
		Category: "2",
		Date:     core.NewDate(2025, 1, 1),
	}
}

func TestLedgerAddDelete(t *testing.T) {
	l := New(nil)
	l.Add(tx("a", 10))
	l.Add(tx("b", 5))
	l.Add(tx("c", 20))

	if l.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", l.Len())
	}
	if !l.Delete("b") {
		t.Fatalf("expected delete of existing id to report true")
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", l.Len())
	}
	if _, ok := l.Find("b"); ok {
		t.Fatalf("b should be gone")
	}
	if l.Delete("missing") {
		t.Fatalf("deleting unknown id must be a no-op")
	}
	if l.Len() != 2 {
		t.Fatalf("no-op delete changed length")
	}
}

func TestLedgerAllIsCopy(t *testing.T) {
	l := New([]core.Transaction{tx("a", 1)})
	all := l.All()
	all[0].ID = "mutated"
	if _, ok := l.Find("a"); !ok {
		t.Fatalf("All must return a copy")
	}
}

func TestRegistryName(t *testing.T) {
	r := NewRegistry(core.DefaultCategories())
	if got := r.Name("3"); got != "Rent" {
		t.Fatalf("expected Rent, got %s", got)
	}
	r.Delete("3")
	if got := r.Name("3"); got != core.UnknownCategory {
		t.Fatalf("dangling reference should be %s, got %s", core.UnknownCategory, got)
	}
}

func TestRegistryByKind(t *testing.T) {
	r := NewRegistry(core.DefaultCategories())
	if n := len(r.ByKind(core.Income)); n != 2 {
		t.Fatalf("expected 2 income categories, got %d", n)
	}
	if n := len(r.ByKind(core.Expense)); n != 3 {
		t.Fatalf("expected 3 expense categories, got %d", n)
	}
}

func TestParseSeed(t *testing.T) {
	data := []byte(`
categories:
  - id: "10"
    name: Freelance
    type: income
  - name: Travel
    type: expense
`)
	cats, err := ParseSeed(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cats) != 2 || cats[0].ID != "10" || cats[1].ID == "" || cats[1].Kind != core.Expense {
		t.Fatalf("unexpected categories %+v", cats)
	}

	bad := [][]byte{
		[]byte("categories: [{name: X, type: gift}]"),
		[]byte("categories: [{id: a, name: '', type: income}]"),
		[]byte("categories: [{id: a, name: X, type: income}, {id: a, name: Y, type: income}]"),
		[]byte(":::"),
		[]byte("categories: []"),
	}
	for i, b := range bad {
		cats, err := ParseSeed(b)
		if err == nil {
			t.Fatalf("case %d: expected error", i)
		}
		if len(cats) != len(core.DefaultCategories()) {
			t.Fatalf("case %d: expected defaults on error", i)
		}
	}
}

func TestLoadSeedMissingFile(t *testing.T) {
	cats, err := LoadSeed(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(cats) != 5 {
		t.Fatalf("expected defaults, got %d", len(cats))
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	if err := os.WriteFile(path, []byte("categories:\n  - {id: x, name: Gifts, type: income}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cats, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "Gifts" {
		t.Fatalf("unexpected categories %+v", cats)
	}
}
