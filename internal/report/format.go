package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"informe/internal/core"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// Reais formats an amount the way the store reads it ("R$ 1.234,56").
func Reais(m core.Money) string {
	if m.Cents < 0 {
		return "-R$ " + brPrinter.Sprintf("%.2f", core.Money{Cents: -m.Cents}.Float())
	}
	return "R$ " + brPrinter.Sprintf("%.2f", m.Float())
}

// Count groups thousands with dots.
func Count(n int) string {
	return brPrinter.Sprintf("%d", n)
}
