package payroll

import (
	"strings"
	"testing"
	"unicode"
)

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func TestFormatCurrencyRoundsToWholeUnits(t *testing.T) {
	tests := []struct {
		amount float64
		digits string
	}{
		{amount: 0, digits: "0"},
		{amount: 0.4, digits: "0"},
		{amount: 0.5, digits: "1"},
		{amount: 1234567.6, digits: "1234568"},
		{amount: 80000, digits: "80000"},
	}
	for _, tt := range tests {
		got := FormatCurrency(tt.amount)
		if !strings.HasSuffix(got, " CVE") {
			t.Fatalf("FormatCurrency(%v) = %q, missing currency suffix", tt.amount, got)
		}
		if digits(got) != tt.digits {
			t.Fatalf("FormatCurrency(%v) = %q, want digits %s", tt.amount, got, tt.digits)
		}
		if strings.ContainsAny(got, ",.") && tt.amount < 1000 {
			t.Fatalf("FormatCurrency(%v) = %q, expected no decimals", tt.amount, got)
		}
	}
}

func TestFormatCurrencyNegative(t *testing.T) {
	got := FormatCurrency(-1500)
	if !strings.HasPrefix(got, "-") || digits(got) != "1500" {
		t.Fatalf("unexpected %q", got)
	}
}
