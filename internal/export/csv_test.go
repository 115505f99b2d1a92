package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func sample() []core.Transaction {
	return []core.Transaction{
		{ID: "a", Amount: decimal.RequireFromString("3000"), Kind: core.Income, Category: "1", Date: core.NewDate(2025, 6, 1), Notes: "June salary"},
		{ID: "b", Amount: decimal.RequireFromString("42.5"), Kind: core.Expense, Category: "2", Date: core.NewDate(2025, 6, 3), Notes: `milk, "organic"`},
	}
}

func TestCSVEmptyLedger(t *testing.T) {
	doc, ok := CSV(nil)
	if ok || doc != nil {
		t.Fatalf("empty ledger must produce no document, got %q", doc)
	}
}

func TestCSVLayout(t *testing.T) {
	doc, ok := CSV(sample())
	if !ok {
		t.Fatalf("expected a document")
	}
	lines := strings.Split(string(doc), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected N+1 lines, got %d: %q", len(lines), doc)
	}
	if lines[0] != Header {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != `"2025-06-01","income","1","3000","June salary"` {
		t.Fatalf("row 1 = %s", lines[1])
	}
	if lines[2] != `"2025-06-03","expense","2","42.5","milk, ""organic"""` {
		t.Fatalf("row 2 = %s", lines[2])
	}
	for _, l := range lines[1:] {
		if !strings.HasPrefix(l, `"`) || !strings.HasSuffix(l, `"`) {
			t.Fatalf("row fields must be quoted: %s", l)
		}
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
	if got := Filename("", now); got != "finance-tracker-export-2025-06-15.csv" {
		t.Fatalf("got %s", got)
	}
	if got := Filename("ledger", now); got != "ledger-2025-06-15.csv" {
		t.Fatalf("got %s", got)
	}
	// late evening west of Greenwich is already the next day in UTC
	evening := time.Date(2025, 6, 15, 21, 30, 0, 0, time.FixedZone("EDT", -4*60*60))
	if got := Filename("ledger", evening); got != "ledger-2025-06-16.csv" {
		t.Fatalf("expected the UTC date, got %s", got)
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	if _, err := WriteFile(dir, "", nil, now); !errors.Is(err, ErrEmptyLedger) {
		t.Fatalf("expected ErrEmptyLedger, got %v", err)
	}

	path, err := WriteFile(dir, "", sample(), now)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(path) != "finance-tracker-export-2025-06-15.csv" {
		t.Fatalf("path = %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := CSV(sample())
	if string(data) != string(want) {
		t.Fatalf("file content differs from CSV output")
	}
}
