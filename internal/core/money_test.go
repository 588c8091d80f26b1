package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"", 0, true},
		{"   ", 0, true},
		{"1", 100, true},
		{"1.0", 100, true},
		{"12.50", 1250, true},
		{"12,50", 1250, true},
		{"R$ 12,50", 1250, true},
		{"R$12.5", 1250, true},
		{"1.234,56", 123456, true},
		{"1,234.56", 123456, true},
		{"1.234.567", 123456700, true},
		{"1.500", 150000, true},
		{"R$1.234", 123400, true},
		{"0.500", 50, true},
		{"1234.567", 123457, true},
		{"+5", 0, false},
		{"0,005", 1, true}, // half-up rounding
		{"0,004", 0, true},
		{",5", 50, true},
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1e3", 0, false},
		{"1,2,3.4.5", 0, false},
		{".", 0, false},
		{"1234567890123456", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %d", tc.in, got.Cents)
		}
	}
}

func TestParseBalanceAllowsNegative(t *testing.T) {
	got, err := ParseBalance("-150,75")
	if err != nil || got.Cents != -15075 {
		t.Fatalf("expected -15075, got %d (err=%v)", got.Cents, err)
	}
	if _, err := ParseBalance("--1"); err == nil {
		t.Fatalf("expected error for double sign")
	}
}

func TestParseCount(t *testing.T) {
	cases := []struct {
		in  string
		out int
		ok  bool
	}{
		{"", 0, true},
		{"0", 0, true},
		{" 42 ", 42, true},
		{"-3", 0, false},
		{"+5", 0, false},
		{"1 000", 0, false},
		{"3.5", 0, false},
		{"dez", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseCount(tc.in)
		if tc.ok && (err != nil || got != tc.out) {
			t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseExpenseLines(t *testing.T) {
	text := "Gás R$ 120,00\nPadaria R$45,90 pão\nsem valor\nR$ abc\n\nFornecedor R$ 1.000,10."
	got := ParseExpenseLines(text)
	if got.Cents != 12000+4590+100010 {
		t.Fatalf("unexpected expenses total %d", got.Cents)
	}
	if got := ParseExpenseLines("Aluguel R$ 1.500\nLuz R$ 80.5"); got.Cents != 150000+8050 {
		t.Fatalf("grouped amount summed to %d", got.Cents)
	}
	if ParseExpenseLines("").Cents != 0 {
		t.Fatalf("empty text should sum to zero")
	}
}

func TestMoneyArithmetic(t *testing.T) {
	if got := (Money{Cents: 1000}).PerUnit(3); got.Cents != 333 {
		t.Fatalf("1000/3 expected 333, got %d", got.Cents)
	}
	if got := (Money{Cents: 5}).PerUnit(2); got.Cents != 3 {
		t.Fatalf("5/2 expected 3 (half-up), got %d", got.Cents)
	}
	if got := (Money{Cents: 1234}).PerUnit(0); got.Cents != 1234 {
		t.Fatalf("division by zero units should divide by one, got %d", got.Cents)
	}
	if got := (Money{Cents: 100000}).Percent(decimal.NewFromInt(3)); got.Cents != 3000 {
		t.Fatalf("3%% of 1000.00 expected 3000, got %d", got.Cents)
	}
	if got := (Money{Cents: -1250}).Fixed(); got != "-12.50" {
		t.Fatalf("unexpected fixed format %q", got)
	}
	if got := (Money{Cents: 7}).Fixed(); got != "0.07" {
		t.Fatalf("unexpected fixed format %q", got)
	}
}
