package http

import (
	"net/url"
	"strings"

	"informe/internal/core"
	"informe/internal/report"
)

var (
	formatReais = report.Reais
	formatInt   = report.Count
)

// sanitizeInput removes control characters other than tab and newlines.
// Surrounding whitespace is kept off single-line fields only.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// parseDateParam reads a YYYY-MM-DD date from values, defaulting to today.
func parseDateParam(values url.Values, today core.Date) (core.Date, error) {
	v := strings.TrimSpace(values.Get("date"))
	if v == "" {
		return today, nil
	}
	return core.ParseDateKey(v)
}

// parseWindowParam reads the dashboard filter ("7dias" or "mes").
func parseWindowParam(values url.Values) (core.Window, error) {
	return core.ParseWindow(values.Get("filtro"))
}
