// Package sheets mirrors daily records to a spreadsheet, one row per date.
package sheets

import (
	"context"

	"informe/internal/core"
)

// RecordWriter is the outbound port of the spreadsheet mirror.
type RecordWriter interface {
	// UpsertRecord writes the row for row.Date, replacing an existing row
	// with the same date. It returns a reference to the written range.
	UpsertRecord(ctx context.Context, row Row) (ref string, err error)
}

// Header is the first row of the mirror sheet.
var Header = []any{
	"Data", "Loja", "iFood", "Total",
	"Clientes Loja", "Clientes iFood", "Clientes",
	"Ticket Loja", "Ticket iFood", "Ticket Geral",
	"Despesas", "Resultado", "Saldo Conta", "Saldo Cofre",
}

// Row is one mirrored daily record.
type Row struct {
	Date       core.Date
	Metrics    core.DailyMetrics
	Despesas   core.Money
	Resultado  core.Money
	SaldoConta string
	SaldoCofre string
}

// NewRow derives the mirrored figures of a record.
func NewRow(r core.DailyRecord, m core.DailyMetrics) Row {
	entry := core.BuildHistoryEntry(r)
	return Row{
		Date:       r.Date,
		Metrics:    m,
		Despesas:   entry.Despesas,
		Resultado:  entry.Resultado,
		SaldoConta: r.Form.SaldoFinalConta,
		SaldoCofre: r.Form.SaldoFinalCofre,
	}
}

// Values returns the cells in Header order. Amounts are numbers in reais;
// balances that do not parse are written as typed.
func (r Row) Values() []any {
	m := r.Metrics
	return []any{
		r.Date.Key(),
		m.Loja.Float(), m.Ifood.Float(), m.Total.Float(),
		m.ClientesLoja, m.ClientesIfood, m.TotalClientes,
		m.TicketMedioLoja.Float(), m.TicketMedioIfood.Float(), m.TicketMedioGeral.Float(),
		r.Despesas.Float(), r.Resultado.Float(),
		balanceCell(r.SaldoConta), balanceCell(r.SaldoCofre),
	}
}

func balanceCell(s string) any {
	m, err := core.ParseBalance(s)
	if err != nil {
		return s
	}
	return m.Float()
}
