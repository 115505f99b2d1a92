package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		err error
	}{
		{"1", "1", nil},
		{"1.0", "1", nil},
		{"1.23", "1.23", nil},
		{"1,23", "1.23", nil},
		{"0", "0", nil},
		{" 2.50 ", "2.5", nil},
		{"-1", "", ErrNegativeAmount},
		{"abc", "", ErrInvalidAmount},
		{"1.2.3", "", ErrInvalidAmount},
		{"1e3", "", ErrInvalidAmount},
		{"", "", ErrAmountRequired},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%q expected %v, got %v", tc.in, tc.err, err)
			}
			continue
		}
		if err != nil || got.String() != tc.out {
			t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":        "$0.00",
		"5":        "$5.00",
		"1234.5":   "$1,234.50",
		"-999.999": "-$1,000.00",
		"1000000":  "$1,000,000.00",
	}
	for in, want := range cases {
		if got := FormatMoney(decimal.RequireFromString(in), "$"); got != want {
			t.Fatalf("FormatMoney(%s) = %s, want %s", in, got, want)
		}
	}
}
