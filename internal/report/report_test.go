package report

import (
	"bytes"
	"errors"
	"image/png"
	"strings"
	"testing"

	"informe/internal/core"
)

func TestText(t *testing.T) {
	form := core.DailyForm{
		VendasLoja:      "1000,00",
		VendasIfood:     "500.50",
		ClientesLoja:    "40",
		ClientesIfood:   "10",
		SaldoFinalConta: "2.345,67",
		SaldoFinalCofre: "300",
		ReceitasExtras:  "Aluguel box R$ 50",
		Despesas:        "Gás R$ 120,00\nPão R$ 30",
	}
	date := core.NewDate(2025, 3, 7)
	got := Text(DefaultHeader(), date, form, core.ComputeMetrics(form, core.DefaultCardFeePercent))

	want := "MERCADO DE SANTA\n" +
		"INFORME FINANCEIRO – 07/03/2025\n" +
		"\n" +
		"VENDAS\n" +
		"| Loja: R$ 1000.00 | iFood: R$ 500.50 | Total: R$ 1500.50 |\n" +
		"\n" +
		"Clientes Atendidos: 50 (Loja: 40 | iFood: 10)\n" +
		"Ticket Médio:\n" +
		"• Loja: R$ 25.00\n" +
		"• iFood: R$ 50.05\n" +
		"• Geral: R$ 30.01\n" +
		"\n" +
		"Receitas Extras:\n" +
		"Aluguel box R$ 50\n" +
		"\n" +
		"Despesas:\n" +
		"Gás R$ 120,00\nPão R$ 30\n" +
		"\n" +
		"Saldo Final em Conta: R$ 2.345,67\n" +
		"Saldo Final no Cofre: R$ 300"
	if got != want {
		t.Fatalf("unexpected report:\n%s\n--- want ---\n%s", got, want)
	}
}

func TestTextEmptyForm(t *testing.T) {
	got := Text(DefaultHeader(), core.NewDate(2025, 1, 1), core.DailyForm{}, core.ComputeMetrics(core.DailyForm{}, core.DefaultCardFeePercent))
	for _, want := range []string{
		"| Loja: R$ 0.00 | iFood: R$ 0.00 | Total: R$ 0.00 |",
		"Clientes Atendidos: 0 (Loja: 0 | iFood: 0)",
		"• Geral: R$ 0.00",
		"Saldo Final em Conta: R$ \n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
}

func TestTextCustomHeader(t *testing.T) {
	h := Header{StoreName: "EMPÓRIO", StoreLabel: "Balcão", DeliveryLabel: "Rappi"}
	got := Text(h, core.NewDate(2025, 1, 1), core.DailyForm{}, core.DailyMetrics{})
	if !strings.HasPrefix(got, "EMPÓRIO\n") || !strings.Contains(got, "| Balcão: R$ 0.00 | Rappi: R$ 0.00 |") {
		t.Fatalf("labels not applied:\n%s", got)
	}
}

func TestImageFilename(t *testing.T) {
	if got := ImageFilename(core.NewDate(2025, 3, 7)); got != "informe-2025-03-07.png" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestFoldASCII(t *testing.T) {
	cases := map[string]string{
		"INFORME FINANCEIRO – 07/03/2025": "INFORME FINANCEIRO - 07/03/2025",
		"• Ticket Médio":                  "* Ticket Medio",
		"Pão de açúcar":                   "Pao de acucar",
		"plain":                           "plain",
		"emoji 🍞":                         "emoji ?",
	}
	for in, want := range cases {
		if got := FoldASCII(in); got != want {
			t.Fatalf("FoldASCII(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWrapLines(t *testing.T) {
	lines := wrapLines("aaa bbb ccc\n\nddddddddd", 7)
	want := []string{"aaa bbb", "ccc", "", "ddddddd", "dd"}
	if len(lines) != len(want) {
		t.Fatalf("got %q want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("got %q want %q", lines, want)
		}
	}
}

func TestImage(t *testing.T) {
	text := Text(DefaultHeader(), core.NewDate(2025, 3, 7), core.DailyForm{VendasLoja: "10"}, core.ComputeMetrics(core.DailyForm{VendasLoja: "10"}, core.DefaultCardFeePercent))
	b, err := ImagePNG(text)
	if err != nil {
		t.Fatalf("ImagePNG() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() < 300 || bounds.Dy() < 300 {
		t.Fatalf("image too small: %v", bounds)
	}
	// top-left corner is page background, card center is white
	if r, g, b, _ := img.At(bounds.Dx()/2, cardPadding+2).RGBA(); r>>8 != 0xff || g>>8 != 0xff || b>>8 != 0xff {
		t.Fatalf("expected white card at top center")
	}

	if _, err := ImagePNG("   "); !errors.Is(err, ErrEmptyReport) {
		t.Fatalf("expected ErrEmptyReport, got %v", err)
	}
}

func historyEntry(key string, receita, despesas int64) core.HistoryEntry {
	d, _ := core.ParseDateKey(key)
	return core.HistoryEntry{
		Date:      d,
		Receita:   core.Money{Cents: receita},
		Despesas:  core.Money{Cents: despesas},
		Resultado: core.Money{Cents: receita - despesas},
	}
}

func TestChart(t *testing.T) {
	tests := []struct {
		name    string
		entries []core.HistoryEntry
	}{
		{name: "several days", entries: []core.HistoryEntry{
			historyEntry("2025-03-08", 150000, 20000),
			historyEntry("2025-03-09", 90000, 120000),
			historyEntry("2025-03-10", 110000, 0),
		}},
		{name: "single day", entries: []core.HistoryEntry{historyEntry("2025-03-10", 50000, 10000)}},
		{name: "flat zero data", entries: []core.HistoryEntry{
			historyEntry("2025-03-09", 0, 0),
			historyEntry("2025-03-10", 0, 0),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ChartPNG(tt.entries)
			if err != nil {
				t.Fatalf("ChartPNG() error = %v", err)
			}
			img, err := png.Decode(bytes.NewReader(b))
			if err != nil {
				t.Fatalf("decode png: %v", err)
			}
			if img.Bounds().Dx() != ChartWidth || img.Bounds().Dy() != ChartHeight {
				t.Fatalf("unexpected size %v", img.Bounds())
			}
		})
	}

	if _, err := ChartPNG(nil); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("expected ErrNoHistory, got %v", err)
	}
}
