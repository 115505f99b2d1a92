package http

import (
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const displayDateLayout = "Jan 2, 2006"

// sanitizeInput drops control characters other than tab and newlines, then trims.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

// signedMoney prefixes income with + and expenses with -.
func signedMoney(kind core.Kind, d decimal.Decimal, symbol string) string {
	sign := "+"
	if kind == core.Expense {
		sign = "-"
	}
	return sign + core.FormatMoney(d, symbol)
}

// barWidth scales v against top to a CSS percentage. Non-zero values get
// at least 2 so they stay visible.
func barWidth(v, top decimal.Decimal) int {
	if !v.IsPositive() || !top.IsPositive() {
		return 0
	}
	pct := int(v.Div(top).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
	return min(max(pct, 2), 100)
}

func displayNotes(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
