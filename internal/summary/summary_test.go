package summary

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func tx(amount string, kind core.Kind, category string, y, m, d int) core.Transaction {
	return core.Transaction{
		ID:       core.NewID(),
		Amount:   decimal.RequireFromString(amount),
		Kind:     kind,
		Category: category,
		Date:     core.NewDate(y, m, d),
	}
}

func TestComputeTotals(t *testing.T) {
	empty := ComputeTotals(nil)
	if !empty.Income.IsZero() || !empty.Expense.IsZero() || !empty.Balance.IsZero() {
		t.Fatalf("empty ledger should total zero: %+v", empty)
	}

	txs := []core.Transaction{
		tx("3000", core.Income, "1", 2025, 6, 1),
		tx("1200.50", core.Expense, "3", 2025, 6, 2),
		tx("80.25", core.Expense, "2", 2025, 6, 3),
	}
	got := ComputeTotals(txs)
	if got.Income.String() != "3000" || got.Expense.String() != "1280.75" {
		t.Fatalf("unexpected totals %+v", got)
	}
	if !got.Balance.Equal(got.Income.Sub(got.Expense)) || got.Balance.String() != "1719.25" {
		t.Fatalf("balance = %s", got.Balance)
	}
}

func TestMonthly(t *testing.T) {
	now := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("100", core.Income, "1", 2025, 3, 31),
		tx("40", core.Expense, "2", 2025, 3, 1),
		tx("10", core.Expense, "2", 2024, 10, 1), // oldest month in window
		tx("999", core.Expense, "2", 2024, 9, 30), // outside window
		tx("5", core.Expense, "2", 2025, 4, 1),    // future month
	}
	points := Monthly(txs, now)
	if len(points) != MonthsShown {
		t.Fatalf("expected %d points, got %d", MonthsShown, len(points))
	}
	wantLabels := []string{"Oct 2024", "Nov 2024", "Dec 2024", "Jan 2025", "Feb 2025", "Mar 2025"}
	for i, p := range points {
		if p.Label != wantLabels[i] {
			t.Fatalf("point %d label %s, want %s", i, p.Label, wantLabels[i])
		}
	}
	if points[0].Expense.String() != "10" {
		t.Fatalf("October expense = %s", points[0].Expense)
	}
	last := points[5]
	if last.Income.String() != "100" || last.Expense.String() != "40" {
		t.Fatalf("March = %+v", last)
	}
}

func TestMonthlyYearBoundary(t *testing.T) {
	points := Monthly(nil, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	if points[0].Label != "Aug 2024" || points[5].Label != "Jan 2025" {
		t.Fatalf("unexpected window %s .. %s", points[0].Label, points[5].Label)
	}
	if HasActivity(points) {
		t.Fatalf("empty ledger has no activity")
	}
}

func TestBreakdown(t *testing.T) {
	txs := []core.Transaction{
		tx("30", core.Expense, "3", 2025, 1, 1),
		tx("500", core.Income, "1", 2025, 1, 1),
		tx("10", core.Expense, "2", 2025, 1, 2),
		tx("60", core.Expense, "3", 2025, 1, 3),
	}
	names := map[string]string{"2": "Groceries", "3": "Rent"}
	got := Breakdown(txs, func(id string) string { return names[id] })

	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %+v", got)
	}
	if got[0].CategoryID != "3" || got[0].Value.String() != "90" || got[0].Name != "Rent" {
		t.Fatalf("first-seen group should be Rent 90: %+v", got[0])
	}
	if got[1].CategoryID != "2" || got[1].Value.String() != "10" {
		t.Fatalf("second group should be Groceries 10: %+v", got[1])
	}
	if got[0].Percent != 90 || got[1].Percent != 10 {
		t.Fatalf("percentages %d/%d", got[0].Percent, got[1].Percent)
	}
	if got[0].Color != Palette[0] || got[1].Color != Palette[1] {
		t.Fatalf("colours %s/%s", got[0].Color, got[1].Color)
	}
	for _, s := range got {
		if s.CategoryID == "1" {
			t.Fatalf("income categories must not appear")
		}
	}
}

func TestBuildResolvesUnknown(t *testing.T) {
	txs := []core.Transaction{tx("5", core.Expense, "deleted", 2025, 1, 1)}
	s := Build(txs, core.DefaultCategories(), time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	if len(s.Breakdown) != 1 || s.Breakdown[0].Name != core.UnknownCategory {
		t.Fatalf("unexpected breakdown %+v", s.Breakdown)
	}
	if !s.Totals.Expense.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expense total = %s", s.Totals.Expense)
	}
	if !HasActivity(s.Monthly) || !MaxMonthly(s.Monthly).Equal(decimal.NewFromInt(5)) {
		t.Fatalf("monthly max should be 5")
	}
}
