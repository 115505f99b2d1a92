package http

import (
	"html/template"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/summary"
	"fintrack/internal/view"
)

// Tabs of the dashboard, in display order.
const (
	TabTransactions = "transactions"
	TabAdd          = "add"
	TabCategories   = "categories"
)

func validTab(tab string) string {
	switch tab {
	case TabTransactions, TabAdd, TabCategories:
		return tab
	}
	return TabTransactions
}

type pageView struct {
	Tab        string
	Summary    summaryView
	List       listView
	Form       formView
	Categories categoriesView
}

type totalsView struct {
	Income, Expense, Balance string
	Negative                 bool
}

type monthBarView struct {
	Label                     string
	Income, Expense           string
	IncomeWidth, ExpenseWidth int
}

type sliceView struct {
	Name    string
	Value   string
	Percent int64
	Color   template.CSS
}

type summaryView struct {
	Totals      totalsView
	Months      []monthBarView
	HasActivity bool
	Breakdown   []sliceView
}

func newSummaryView(s summary.Summary, symbol string) summaryView {
	v := summaryView{
		Totals: totalsView{
			Income:   core.FormatMoney(s.Totals.Income, symbol),
			Expense:  core.FormatMoney(s.Totals.Expense, symbol),
			Balance:  core.FormatMoney(s.Totals.Balance, symbol),
			Negative: s.Totals.Balance.IsNegative(),
		},
		HasActivity: summary.HasActivity(s.Monthly),
	}
	top := summary.MaxMonthly(s.Monthly)
	for _, m := range s.Monthly {
		v.Months = append(v.Months, monthBarView{
			Label:        m.Label,
			Income:       core.FormatMoney(m.Income, symbol),
			Expense:      core.FormatMoney(m.Expense, symbol),
			IncomeWidth:  barWidth(m.Income, top),
			ExpenseWidth: barWidth(m.Expense, top),
		})
	}
	for _, sl := range s.Breakdown {
		v.Breakdown = append(v.Breakdown, sliceView{
			Name:    sl.Name,
			Value:   core.FormatMoney(sl.Value, symbol),
			Percent: sl.Percent,
			// palette entries are fixed hex literals
			Color: template.CSS(sl.Color),
		})
	}
	return v
}

type rowView struct {
	ID       string
	Date     string
	Kind     string
	Category string
	Amount   string
	Notes    string
}

// headerView is a sortable column header.
type headerView struct {
	Label       string
	PageHref    string
	PartialHref string
	Arrow       string
}

type listView struct {
	Query      view.Query
	Categories []core.Category
	Headers    []headerView
	Rows       []rowView
}

func newListView(rows []view.Row, categories []core.Category, q view.Query, symbol string) listView {
	v := listView{Query: q, Categories: categories}
	for _, h := range []struct {
		label string
		field view.SortField
	}{{"Date", view.SortDate}, {"Category", view.SortCategory}, {"Amount", view.SortAmount}} {
		enc := q.Toggle(h.field).Values().Encode()
		hv := headerView{
			Label:       h.label,
			PageHref:    "/?tab=" + TabTransactions + "&" + enc,
			PartialHref: "/ui/transactions?" + enc,
		}
		if q.Sort == h.field {
			hv.Arrow = "↓"
			if q.Dir == view.Asc {
				hv.Arrow = "↑"
			}
		}
		v.Headers = append(v.Headers, hv)
	}
	for _, r := range rows {
		v.Rows = append(v.Rows, rowView{
			ID:       r.ID,
			Date:     r.Date.Format(displayDateLayout),
			Kind:     string(r.Kind),
			Category: r.CategoryName,
			Amount:   signedMoney(r.Kind, r.Amount, symbol),
			Notes:    displayNotes(r.Notes),
		})
	}
	return v
}

type formView struct {
	Values  core.TransactionInput
	Errors  core.FieldErrors
	Choices optionsView
}

// newFormView pre-fills kind and date when the input leaves them blank.
func newFormView(in core.TransactionInput, errs core.FieldErrors, options func(core.Kind) []core.Category, now time.Time) formView {
	kind, err := core.ParseKind(in.Kind)
	if err != nil {
		kind = core.Expense
	}
	in.Kind = string(kind)
	if in.Date == "" {
		in.Date = core.DateOf(now).String()
	}
	return formView{
		Values:  in,
		Errors:  errs,
		Choices: optionsView{Options: options(kind), Selected: in.Category},
	}
}

type categoriesView struct {
	Income  []core.Category
	Expense []core.Category
	Values  core.CategoryInput
	Errors  core.FieldErrors
}

type optionsView struct {
	Options  []core.Category
	Selected string
}
