package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateKeys(t *testing.T) {
	for _, key := range []string{"2025-03-10", "2024-02-29"} {
		if !IsDateKey(key) {
			t.Fatalf("%q should be a date key", key)
		}
		d, err := ParseDateKey(key)
		if err != nil || d.Key() != key {
			t.Fatalf("round trip of %q failed: %v %v", key, d, err)
		}
	}
	for _, key := range []string{"2025-3-10", "2025-02-30", "theme", "2025-03-10x", ""} {
		if IsDateKey(key) {
			t.Fatalf("%q should not be a date key", key)
		}
		if _, err := ParseDateKey(key); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", key, err)
		}
	}
	if got := NewDate(2025, 3, 7).BR(); got != "07/03/2025" {
		t.Fatalf("unexpected BR format %q", got)
	}
}

func TestWindow(t *testing.T) {
	today := NewDate(2025, 3, 10)
	w, err := ParseWindow("")
	if err != nil || w != WindowLast7 {
		t.Fatalf("empty filter should default to last 7 days, got %q %v", w, err)
	}
	if got := WindowLast7.Start(today).Key(); got != "2025-03-04" {
		t.Fatalf("last7 start expected 2025-03-04, got %s", got)
	}
	if got := WindowMonth.Start(today).Key(); got != "2025-03-01" {
		t.Fatalf("month start expected 2025-03-01, got %s", got)
	}
	if _, err := ParseWindow("ano"); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestComputeMetrics(t *testing.T) {
	f := DailyForm{
		VendasLoja:    "1000,00",
		VendasIfood:   "500.50",
		ClientesLoja:  "40",
		ClientesIfood: "10",
	}
	m := ComputeMetrics(f, DefaultCardFeePercent)
	checks := []struct {
		name      string
		got, want int64
	}{
		{"loja", m.Loja.Cents, 100000},
		{"ifood", m.Ifood.Cents, 50050},
		{"total", m.Total.Cents, 150050},
		{"clientes", int64(m.TotalClientes), 50},
		{"ticket loja", m.TicketMedioLoja.Cents, 2500},
		{"ticket ifood", m.TicketMedioIfood.Cents, 5005},
		{"ticket geral", m.TicketMedioGeral.Cents, 3001},
		{"taxa", m.Taxa.Cents, 3000},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s: expected %d, got %d", c.name, c.want, c.got)
		}
	}
}

func TestComputeMetricsLenient(t *testing.T) {
	m := ComputeMetrics(DailyForm{VendasLoja: "abc", VendasIfood: "80", ClientesIfood: "x"}, decimal.Zero)
	if m.Loja.Cents != 0 || m.Ifood.Cents != 8000 {
		t.Fatalf("unparsable fields should count as zero: %+v", m)
	}
	// zero customers divide by one
	if m.TicketMedioIfood.Cents != 8000 || m.TicketMedioGeral.Cents != 8000 {
		t.Fatalf("unexpected tickets: %+v", m)
	}
	if m.Taxa.Cents != 0 {
		t.Fatalf("zero fee expected, got %d", m.Taxa.Cents)
	}
}

func TestFormValidate(t *testing.T) {
	good := DailyForm{VendasLoja: "10", ClientesLoja: "1", SaldoFinalConta: "-5,00"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := DailyForm{VendasLoja: "dez", ClientesIfood: "-1", SaldoFinalCofre: "x"}
	err := bad.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{FieldVendasLoja, FieldClientesIfood, FieldSaldoFinalCofre} {
		if _, ok := verr.Fields[field]; !ok {
			t.Fatalf("missing error for %s: %v", field, verr.Fields)
		}
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("unexpected fields: %v", verr.Fields)
	}
}

func TestFormSetGetAndCarryOver(t *testing.T) {
	var f DailyForm
	for _, field := range FormFields {
		if !f.Set(field, field+"-v") {
			t.Fatalf("Set(%s) should succeed", field)
		}
		if v, ok := f.Get(field); !ok || v != field+"-v" {
			t.Fatalf("Get(%s) = %q, %v", field, v, ok)
		}
	}
	if f.Set("unknown", "x") {
		t.Fatalf("unknown field should not be set")
	}
	c := f.CarryOver()
	if c.SaldoFinalConta != "saldoFinalConta-v" || c.SaldoFinalCofre != "saldoFinalCofre-v" || c.VendasLoja != "" || c.Despesas != "" {
		t.Fatalf("unexpected carry over: %+v", c)
	}
}
