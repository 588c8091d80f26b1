// Package report renders the daily informe as text, as a PNG card, and the
// dashboard history as a line chart.
package report

import (
	"fmt"
	"strings"

	"informe/internal/core"
)

// Header carries the store-specific labels printed on the report.
type Header struct {
	StoreName     string
	StoreLabel    string
	DeliveryLabel string
}

// DefaultHeader matches the default store profile.
func DefaultHeader() Header {
	return Header{StoreName: "MERCADO DE SANTA", StoreLabel: "Loja", DeliveryLabel: "iFood"}
}

// Text builds the informe. Amounts print with two decimals and a dot; the
// closing balances print exactly as typed.
func Text(h Header, date core.Date, f core.DailyForm, m core.DailyMetrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", h.StoreName)
	fmt.Fprintf(&b, "INFORME FINANCEIRO – %s\n\n", date.BR())
	b.WriteString("VENDAS\n")
	fmt.Fprintf(&b, "| %s: R$ %s | %s: R$ %s | Total: R$ %s |\n\n",
		h.StoreLabel, m.Loja.Fixed(), h.DeliveryLabel, m.Ifood.Fixed(), m.Total.Fixed())
	fmt.Fprintf(&b, "Clientes Atendidos: %d (%s: %d | %s: %d)\n",
		m.TotalClientes, h.StoreLabel, m.ClientesLoja, h.DeliveryLabel, m.ClientesIfood)
	b.WriteString("Ticket Médio:\n")
	fmt.Fprintf(&b, "• %s: R$ %s\n", h.StoreLabel, m.TicketMedioLoja.Fixed())
	fmt.Fprintf(&b, "• %s: R$ %s\n", h.DeliveryLabel, m.TicketMedioIfood.Fixed())
	fmt.Fprintf(&b, "• Geral: R$ %s\n\n", m.TicketMedioGeral.Fixed())
	fmt.Fprintf(&b, "Receitas Extras:\n%s\n\n", f.ReceitasExtras)
	fmt.Fprintf(&b, "Despesas:\n%s\n\n", f.Despesas)
	fmt.Fprintf(&b, "Saldo Final em Conta: R$ %s\n", f.SaldoFinalConta)
	fmt.Fprintf(&b, "Saldo Final no Cofre: R$ %s", f.SaldoFinalCofre)
	return b.String()
}

// ImageFilename is the download name of the exported card.
func ImageFilename(date core.Date) string {
	return "informe-" + date.Key() + ".png"
}
