package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// HistoryEntry is one day of the dashboard.
type HistoryEntry struct {
	Date        Date
	Receita     Money
	Despesas    Money
	Resultado   Money
	TicketMedio Money
	Clientes    int
}

// Totals aggregates the entries of a window.
type Totals struct {
	Receita       Money
	Despesas      Money
	Resultado     Money
	Clientes      int
	TicketSoma    Money
	Dias          int
	DiasPositivos int
}

// BuildHistoryEntry reduces a record to its dashboard figures. Revenue is the
// two sales channels; extra revenues are free text and stay out of it.
func BuildHistoryEntry(r DailyRecord) HistoryEntry {
	m := ComputeMetrics(r.Form, decimal.Zero)
	despesas := ParseExpenseLines(r.Form.Despesas)
	return HistoryEntry{
		Date:        r.Date,
		Receita:     m.Total,
		Despesas:    despesas,
		Resultado:   m.Total.Sub(despesas),
		TicketMedio: m.TicketMedioGeral,
		Clientes:    m.TotalClientes,
	}
}

// SortEntries orders entries by date, oldest first.
func SortEntries(entries []HistoryEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
}

// FilterWindow keeps the entries whose date falls in [w.Start(today), today].
// The input order is preserved.
func FilterWindow(entries []HistoryEntry, w Window, today Date) []HistoryEntry {
	start := w.Start(today)
	out := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if e.Date.Before(start) || e.Date.After(today) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Summarize folds entries into Totals. A day counts as positive when its
// result is strictly greater than zero.
func Summarize(entries []HistoryEntry) Totals {
	var t Totals
	for _, e := range entries {
		t.Receita = t.Receita.Add(e.Receita)
		t.Despesas = t.Despesas.Add(e.Despesas)
		t.Resultado = t.Resultado.Add(e.Resultado)
		t.Clientes += e.Clientes
		t.TicketSoma = t.TicketSoma.Add(e.TicketMedio)
		t.Dias++
		if e.Resultado.Cents > 0 {
			t.DiasPositivos++
		}
	}
	return t
}

// TicketMedio is the mean of the daily average tickets.
func (t Totals) TicketMedio() Money {
	return t.TicketSoma.PerUnit(t.Dias)
}
