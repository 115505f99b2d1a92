package view

import (
	"net/url"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func entry(id string, amount string, kind core.Kind, category string, day int, notes string) core.Transaction {
	return core.Transaction{
		ID:       id,
		Amount:   decimal.RequireFromString(amount),
		Kind:     kind,
		Category: category,
		Date:     core.NewDate(2025, 3, day),
		Notes:    notes,
	}
}

func ids(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func fixture() []core.Transaction {
	return []core.Transaction{
		entry("a", "10", core.Expense, "2", 1, "weekly shop"),
		entry("b", "5", core.Expense, "3", 2, ""),
		entry("c", "20", core.Income, "1", 3, "March pay"),
	}
}

func TestApplyKindFilter(t *testing.T) {
	f := NewFilterer("en")
	cats := core.DefaultCategories()

	cases := []struct {
		kind string
		want int
	}{
		{string(core.Income), 1},
		{string(core.Expense), 2},
		{All, 3},
	}
	for _, tc := range cases {
		q := DefaultQuery()
		q.Kind = tc.kind
		rows := f.Apply(fixture(), cats, q)
		if len(rows) != tc.want {
			t.Fatalf("kind %s: expected %d rows, got %d", tc.kind, tc.want, len(rows))
		}
		for _, r := range rows {
			if tc.kind != All && string(r.Kind) != tc.kind {
				t.Fatalf("kind %s: row %s has kind %s", tc.kind, r.ID, r.Kind)
			}
		}
	}
}

func TestApplyAmountSort(t *testing.T) {
	f := NewFilterer("en")
	q := DefaultQuery()
	q.Sort = SortAmount

	q.Dir = Asc
	if got := ids(f.Apply(fixture(), nil, q)); !equal(got, []string{"b", "a", "c"}) {
		t.Fatalf("ascending amount order = %v", got)
	}
	q.Dir = Desc
	if got := ids(f.Apply(fixture(), nil, q)); !equal(got, []string{"c", "a", "b"}) {
		t.Fatalf("descending amount order = %v", got)
	}
}

func TestApplyDefaultIsNewestFirst(t *testing.T) {
	rows := NewFilterer("en").Apply(fixture(), nil, DefaultQuery())
	if got := ids(rows); !equal(got, []string{"c", "b", "a"}) {
		t.Fatalf("default order = %v", got)
	}
}

func TestApplySearch(t *testing.T) {
	f := NewFilterer("en")
	cats := core.DefaultCategories()

	cases := []struct {
		search string
		want   []string
	}{
		{"groc", []string{"a"}},   // category name, case-insensitive
		{"MARCH", []string{"c"}},  // notes
		{"20", []string{"c"}},     // amount decimal string
		{"zzz", []string{}},
		{" shop", []string{"a"}}, // spaces are part of the needle
		{" rent", []string{}},
		{"", []string{"c", "b", "a"}},
	}
	for _, tc := range cases {
		q := DefaultQuery()
		q.Search = tc.search
		if got := ids(f.Apply(fixture(), cats, q)); !equal(got, tc.want) {
			t.Fatalf("search %q = %v, want %v", tc.search, got, tc.want)
		}
	}
}

func TestApplyCategoryFilterAndUnknown(t *testing.T) {
	f := NewFilterer("en")
	txs := append(fixture(), entry("d", "7", core.Expense, "gone", 4, ""))

	q := DefaultQuery()
	q.Category = "gone"
	rows := f.Apply(txs, core.DefaultCategories(), q)
	if len(rows) != 1 || rows[0].CategoryName != core.UnknownCategory {
		t.Fatalf("dangling reference should resolve to Unknown: %+v", rows)
	}

	q = DefaultQuery()
	q.Search = "unknown"
	if got := ids(f.Apply(txs, core.DefaultCategories(), q)); !equal(got, []string{"d"}) {
		t.Fatalf("search on resolved name = %v", got)
	}
}

func TestApplyCategorySort(t *testing.T) {
	f := NewFilterer("en")
	cats := []core.Category{
		{ID: "x", Name: "zoo", Kind: core.Expense},
		{ID: "y", Name: "Éclair", Kind: core.Expense},
		{ID: "z", Name: "apple", Kind: core.Expense},
	}
	txs := []core.Transaction{
		entry("1", "1", core.Expense, "x", 1, ""),
		entry("2", "1", core.Expense, "y", 1, ""),
		entry("3", "1", core.Expense, "z", 1, ""),
	}
	q := DefaultQuery().Toggle(SortCategory)
	if got := ids(f.Apply(txs, cats, q)); !equal(got, []string{"3", "2", "1"}) {
		t.Fatalf("locale-aware category order = %v", got)
	}
}

func TestApplyReturnsFreshSlice(t *testing.T) {
	f := NewFilterer("en")
	txs := fixture()
	rows := f.Apply(txs, nil, DefaultQuery())
	rows[0].ID = "changed"
	if txs[2].ID != "c" {
		t.Fatalf("Apply must not alias its input")
	}
}

func TestToggle(t *testing.T) {
	q := DefaultQuery() // date desc
	q = q.Toggle(SortDate)
	if q.Sort != SortDate || q.Dir != Asc {
		t.Fatalf("same field should flip: %+v", q)
	}
	q = q.Toggle(SortAmount)
	if q.Sort != SortAmount || q.Dir != Asc {
		t.Fatalf("new field should start ascending: %+v", q)
	}
	q = q.Toggle(SortAmount)
	if q.Dir != Desc {
		t.Fatalf("second toggle should flip to desc: %+v", q)
	}
}

func TestParseQuery(t *testing.T) {
	q := ParseQuery(url.Values{"type": {"gift"}, "sort": {"name"}, "dir": {"sideways"}, "search": {"  rent "}})
	want := DefaultQuery()
	want.Search = "  rent "
	if q != want {
		t.Fatalf("got %+v, want %+v", q, want)
	}

	q = ParseQuery(url.Values{"type": {"income"}, "category": {"1"}, "sort": {"amount"}, "dir": {"asc"}})
	if q.Kind != "income" || q.Category != "1" || q.Sort != SortAmount || q.Dir != Asc {
		t.Fatalf("unexpected %+v", q)
	}
	if ParseQuery(q.Values()) != q {
		t.Fatalf("Values should round-trip through ParseQuery")
	}
}
