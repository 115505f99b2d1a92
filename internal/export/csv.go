// Package export renders the ledger as a CSV document.
//
// The layout is fixed: an unquoted header line, then one line per
// transaction with every field double-quoted, lines joined by "\n" and no
// trailing newline. encoding/csv only quotes fields that need it, so the
// document is assembled by hand.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"
)

// DefaultPrefix names downloaded files as finance-tracker-export-YYYY-MM-DD.csv.
const DefaultPrefix = "finance-tracker-export"

// Header is the first line of every export.
const Header = "Date,Type,Category,Amount,Notes"

// ErrEmptyLedger is returned by WriteFile when there is nothing to export.
var ErrEmptyLedger = errors.New("no transactions to export")

// CSV renders txs. ok is false for an empty ledger, in which case no
// document exists.
func CSV(txs []core.Transaction) (doc []byte, ok bool) {
	if len(txs) == 0 {
		return nil, false
	}
	var b strings.Builder
	b.WriteString(Header)
	for _, t := range txs {
		b.WriteByte('\n')
		writeRow(&b, t.Date.String(), string(t.Kind), t.Category, t.Amount.String(), t.Notes)
	}
	return []byte(b.String()), true
}

func writeRow(b *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}

// Filename returns <prefix>-<YYYY-MM-DD>.csv for the UTC calendar day of now.
func Filename(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s-%s.csv", prefix, now.UTC().Format("2006-01-02"))
}

// WriteFile writes the export into dir and returns its path.
func WriteFile(dir, prefix string, txs []core.Transaction, now time.Time) (string, error) {
	doc, ok := CSV(txs)
	if !ok {
		return "", ErrEmptyLedger
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, Filename(prefix, now))

	// write then rename so readers never see a half-written file
	tmp, err := os.CreateTemp(dir, ".export-*.csv")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("rename export: %w", err)
	}
	return path, nil
}
