// Package view derives the displayed transaction list from the ledger:
// filter by kind, category and free-text search, then sort.
package view

import (
	"net/url"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"fintrack/internal/core"
)

// All is the filter value that disables the kind or category filter.
const All = "all"

type SortField string

const (
	SortDate     SortField = "date"
	SortAmount   SortField = "amount"
	SortCategory SortField = "category"
)

type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// Query is the list state driven by the filter bar and the column headers.
type Query struct {
	Search   string
	Category string // All or a category id
	Kind     string // All, income or expense
	Sort     SortField
	Dir      SortDir
}

func DefaultQuery() Query {
	return Query{Category: All, Kind: All, Sort: SortDate, Dir: Desc}
}

// Toggle returns the query after clicking the header of field: the active
// field flips direction, any other field becomes active ascending.
func (q Query) Toggle(field SortField) Query {
	if q.Sort == field {
		if q.Dir == Asc {
			q.Dir = Desc
		} else {
			q.Dir = Asc
		}
		return q
	}
	q.Sort = field
	q.Dir = Asc
	return q
}

// Values encodes the query for links and hx-get attributes.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	v.Set("category", q.Category)
	v.Set("type", q.Kind)
	v.Set("sort", string(q.Sort))
	v.Set("dir", string(q.Dir))
	return v
}

// ParseQuery reads a query from request values; unknown values fall back to the defaults.
func ParseQuery(v url.Values) Query {
	q := DefaultQuery()
	q.Search = v.Get("search")
	if c := strings.TrimSpace(v.Get("category")); c != "" {
		q.Category = c
	}
	switch k := v.Get("type"); k {
	case All, string(core.Income), string(core.Expense):
		q.Kind = k
	}
	switch f := SortField(v.Get("sort")); f {
	case SortDate, SortAmount, SortCategory:
		q.Sort = f
	}
	switch d := SortDir(v.Get("dir")); d {
	case Asc, Desc:
		q.Dir = d
	}
	return q
}

// Row is a transaction with its category name resolved for display.
type Row struct {
	core.Transaction
	CategoryName string
}

// Filterer applies queries under a collation locale. It is safe for concurrent use.
type Filterer struct {
	tag language.Tag
}

// NewFilterer builds a Filterer comparing category names under locale.
// An unparseable locale falls back to English.
func NewFilterer(locale string) *Filterer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Filterer{tag: tag}
}

// Apply returns a fresh, filtered and sorted slice of rows.
func (f *Filterer) Apply(txs []core.Transaction, categories []core.Category, q Query) []Row {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	nameOf := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return core.UnknownCategory
	}

	needle := strings.ToLower(q.Search)
	rows := make([]Row, 0, len(txs))
	for _, t := range txs {
		if q.Kind != "" && q.Kind != All && string(t.Kind) != q.Kind {
			continue
		}
		if q.Category != "" && q.Category != All && t.Category != q.Category {
			continue
		}
		name := nameOf(t.Category)
		if needle != "" &&
			!strings.Contains(strings.ToLower(name), needle) &&
			!strings.Contains(strings.ToLower(t.Notes), needle) &&
			!strings.Contains(t.Amount.String(), needle) {
			continue
		}
		rows = append(rows, Row{Transaction: t, CategoryName: name})
	}

	cmp := f.comparator(q.Sort)
	if q.Dir == Desc {
		asc := cmp
		cmp = func(a, b Row) int { return asc(b, a) }
	}
	slices.SortStableFunc(rows, cmp)
	return rows
}

func (f *Filterer) comparator(field SortField) func(a, b Row) int {
	switch field {
	case SortAmount:
		return func(a, b Row) int { return a.Amount.Cmp(b.Amount) }
	case SortCategory:
		// collate.Collator carries a buffer, so each sort gets its own
		c := collate.New(f.tag)
		return func(a, b Row) int {
			return c.CompareString(strings.ToLower(a.CategoryName), strings.ToLower(b.CategoryName))
		}
	default:
		return func(a, b Row) int { return a.Date.Compare(b.Date.Time) }
	}
}
