// Package summary computes the dashboard figures: totals, the six month
// income/expense series and the expense breakdown by category.
package summary

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// MonthsShown is the length of the monthly series.
const MonthsShown = 6

// Palette colours breakdown slices in order, wrapping around.
var Palette = []string{"#a78bfa", "#c4b5fd", "#ddd6fe", "#ede9fe", "#f5f3ff", "#8b5cf6"}

type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

type MonthPoint struct {
	Label   string          `json:"month"`
	Year    int             `json:"year"`
	Month   time.Month      `json:"-"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type Slice struct {
	CategoryID string          `json:"categoryId"`
	Name       string          `json:"name"`
	Value      decimal.Decimal `json:"value"`
	Percent    int64           `json:"percent"`
	Color      string          `json:"color"`
}

type Summary struct {
	Totals    Totals       `json:"totals"`
	Monthly   []MonthPoint `json:"monthly"`
	Breakdown []Slice      `json:"breakdown"`
}

func ComputeTotals(txs []core.Transaction) Totals {
	t := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range txs {
		switch tx.Kind {
		case core.Income:
			t.Income = t.Income.Add(tx.Amount)
		case core.Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// Monthly returns the MonthsShown calendar months ending with the month of
// now, oldest first. Dates are bucketed by their stored calendar day.
func Monthly(txs []core.Transaction, now time.Time) []MonthPoint {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	points := make([]MonthPoint, MonthsShown)
	index := make(map[[2]int]int, MonthsShown)
	for i := range points {
		m := first.AddDate(0, i-(MonthsShown-1), 0)
		points[i] = MonthPoint{
			Label:   m.Format("Jan 2006"),
			Year:    m.Year(),
			Month:   m.Month(),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
		index[[2]int{m.Year(), int(m.Month())}] = i
	}

	for _, tx := range txs {
		i, ok := index[[2]int{tx.Date.Year(), int(tx.Date.Month())}]
		if !ok {
			continue
		}
		switch tx.Kind {
		case core.Income:
			points[i].Income = points[i].Income.Add(tx.Amount)
		case core.Expense:
			points[i].Expense = points[i].Expense.Add(tx.Amount)
		}
	}
	return points
}

// Breakdown sums expenses per raw category reference in first-seen order.
// name resolves references for display; nil leaves Name empty.
func Breakdown(txs []core.Transaction, name func(id string) string) []Slice {
	var out []Slice
	pos := map[string]int{}
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Kind != core.Expense {
			continue
		}
		i, ok := pos[tx.Category]
		if !ok {
			i = len(out)
			pos[tx.Category] = i
			out = append(out, Slice{CategoryID: tx.Category, Value: decimal.Zero})
		}
		out[i].Value = out[i].Value.Add(tx.Amount)
		total = total.Add(tx.Amount)
	}

	hundred := decimal.NewFromInt(100)
	for i := range out {
		if name != nil {
			out[i].Name = name(out[i].CategoryID)
		}
		out[i].Color = Palette[i%len(Palette)]
		if total.IsPositive() {
			out[i].Percent = out[i].Value.Div(total).Mul(hundred).Round(0).IntPart()
		}
	}
	return out
}

// Build computes every figure of the dashboard in one pass over the snapshot.
func Build(txs []core.Transaction, categories []core.Category, now time.Time) Summary {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return Summary{
		Totals:  ComputeTotals(txs),
		Monthly: Monthly(txs, now),
		Breakdown: Breakdown(txs, func(id string) string {
			if n, ok := names[id]; ok {
				return n
			}
			return core.UnknownCategory
		}),
	}
}

// MaxMonthly is the largest income or expense value of the series, used to scale bars.
func MaxMonthly(points []MonthPoint) decimal.Decimal {
	top := decimal.Zero
	for _, p := range points {
		top = decimal.Max(top, p.Income, p.Expense)
	}
	return top
}

// HasActivity reports whether any month of the series has a non-zero value.
func HasActivity(points []MonthPoint) bool {
	return MaxMonthly(points).IsPositive()
}
