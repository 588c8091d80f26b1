package core

import "github.com/shopspring/decimal"

// DefaultCardFeePercent is the card-machine fee applied to in-store sales.
var DefaultCardFeePercent = decimal.NewFromInt(3)

// ComputeMetrics derives the day's figures from the raw form. Fields that
// do not parse count as zero; Validate is the strict counterpart.
func ComputeMetrics(f DailyForm, cardFeePercent decimal.Decimal) DailyMetrics {
	loja := lenientAmount(f.VendasLoja)
	ifood := lenientAmount(f.VendasIfood)
	clientesLoja := lenientCount(f.ClientesLoja)
	clientesIfood := lenientCount(f.ClientesIfood)

	total := loja.Add(ifood)
	totalClientes := clientesLoja + clientesIfood

	return DailyMetrics{
		Loja:             loja,
		Ifood:            ifood,
		Total:            total,
		ClientesLoja:     clientesLoja,
		ClientesIfood:    clientesIfood,
		TotalClientes:    totalClientes,
		TicketMedioLoja:  loja.PerUnit(clientesLoja),
		TicketMedioIfood: ifood.PerUnit(clientesIfood),
		TicketMedioGeral: total.PerUnit(totalClientes),
		Taxa:             loja.Percent(cardFeePercent),
	}
}

func lenientAmount(s string) Money {
	m, err := ParseAmount(s)
	if err != nil {
		return Money{}
	}
	return m
}

func lenientCount(s string) int {
	n, err := ParseCount(s)
	if err != nil {
		return 0
	}
	return n
}
