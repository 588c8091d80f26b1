package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"informe/internal/core"
	applog "informe/internal/log"
	"informe/internal/report"
	"informe/internal/services"
)

type entryView struct {
	Data      string
	Receita   string
	Despesas  string
	Resultado string
	Clientes  string
	Negative  bool
}

// dashboardView is the formatted dashboard partial.
type dashboardView struct {
	Filtro      string
	Label       string
	HasData     bool
	Receita     string
	Despesas    string
	Lucro       string
	LucroNeg    bool
	TicketMedio string
	Clientes    string
	Dias        int
	DiasLucro   int
	ChartURL    string
	Entries     []entryView
}

func newDashboardView(d services.Dashboard) dashboardView {
	w := d.Window
	if w == "" {
		w = core.WindowLast7
	}
	t := d.Totals
	v := dashboardView{
		Filtro:      string(w),
		Label:       w.Label(),
		HasData:     d.HasData(),
		Receita:     formatReais(t.Receita),
		Despesas:    formatReais(t.Despesas),
		Lucro:       formatReais(t.Resultado),
		LucroNeg:    t.Resultado.Cents < 0,
		TicketMedio: formatReais(t.TicketMedio()),
		Clientes:    formatInt(t.Clientes),
		Dias:        t.Dias,
		DiasLucro:   t.DiasPositivos,
		ChartURL: "/ui/dashboard/chart.png?filtro=" + string(w) +
			"&v=" + strconv.Itoa(t.Dias) + "-" + strconv.FormatInt(t.Resultado.Cents, 10),
	}
	for i := len(d.Entries) - 1; i >= 0; i-- {
		e := d.Entries[i]
		v.Entries = append(v.Entries, entryView{
			Data:      e.Date.BR(),
			Receita:   formatReais(e.Receita),
			Despesas:  formatReais(e.Despesas),
			Resultado: formatReais(e.Resultado),
			Clientes:  formatInt(e.Clientes),
			Negative:  e.Resultado.Cents < 0,
		})
	}
	return v
}

// handleDashboard renders the dashboard partial for the chosen filter.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	win, err := parseWindowParam(r.URL.Query())
	if err != nil {
		BadRequestError("Filtro inválido").Write(w)
		return
	}
	d, err := s.service.Dashboard(ctx, win)
	if err != nil {
		requestLogger(r).ErrorContext(ctx, "Failed to load dashboard",
			applog.FieldWindow, string(win), applog.FieldError, err)
		InternalServerError("Erro ao carregar o painel").Write(w)
		return
	}
	s.render(w, r, "dashboard.html", newDashboardView(d))
}

// handleDashboardChart serves the line chart of the filter window.
func (s *Server) handleDashboardChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	win, err := parseWindowParam(r.URL.Query())
	if err != nil {
		BadRequestError("Filtro inválido").Write(w)
		return
	}
	b, err := s.service.DashboardChart(ctx, win)
	if errors.Is(err, report.ErrNoHistory) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		requestLogger(r).ErrorContext(ctx, "Failed to render chart",
			applog.FieldWindow, string(win), applog.FieldError, err)
		InternalServerError("Erro ao gerar o gráfico").Write(w)
		return
	}
	writePNG(w, b, "")
}

type historyEntryJSON struct {
	Date        string `json:"date"`
	Receita     string `json:"receita"`
	Despesas    string `json:"despesas"`
	Resultado   string `json:"resultado"`
	TicketMedio string `json:"ticketMedio"`
	Clientes    int    `json:"clientes"`
}

type historyTotalsJSON struct {
	Receita       string `json:"receita"`
	Despesas      string `json:"despesas"`
	Resultado     string `json:"resultado"`
	TicketMedio   string `json:"ticketMedio"`
	Clientes      int    `json:"clientes"`
	Dias          int    `json:"dias"`
	DiasPositivos int    `json:"diasPositivos"`
}

type historyJSON struct {
	Filtro  string             `json:"filtro"`
	Inicio  string             `json:"inicio"`
	Hoje    string             `json:"hoje"`
	Entries []historyEntryJSON `json:"entries"`
	Totals  historyTotalsJSON  `json:"totals"`
}

// handleHistory returns the filtered history as JSON. Amounts are decimal
// strings in reais with a dot separator.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	win, err := parseWindowParam(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	d, err := s.service.Dashboard(ctx, win)
	if err != nil {
		requestLogger(r).ErrorContext(ctx, "Failed to load history", applog.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	out := historyJSON{
		Filtro:  string(d.Window),
		Inicio:  d.Start.Key(),
		Hoje:    d.Today.Key(),
		Entries: make([]historyEntryJSON, 0, len(d.Entries)),
		Totals: historyTotalsJSON{
			Receita:       d.Totals.Receita.Fixed(),
			Despesas:      d.Totals.Despesas.Fixed(),
			Resultado:     d.Totals.Resultado.Fixed(),
			TicketMedio:   d.Totals.TicketMedio().Fixed(),
			Clientes:      d.Totals.Clientes,
			Dias:          d.Totals.Dias,
			DiasPositivos: d.Totals.DiasPositivos,
		},
	}
	for _, e := range d.Entries {
		out.Entries = append(out.Entries, historyEntryJSON{
			Date:        e.Date.Key(),
			Receita:     e.Receita.Fixed(),
			Despesas:    e.Despesas.Fixed(),
			Resultado:   e.Resultado.Fixed(),
			TicketMedio: e.TicketMedio.Fixed(),
			Clientes:    e.Clientes,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
