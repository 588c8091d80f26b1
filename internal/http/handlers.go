package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"informe/internal/core"
	applog "informe/internal/log"
	"informe/internal/report"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady checks the templates and the record store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.service.Ping(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	cacheChecks := map[string]interface{}{}
	for name, st := range s.service.CacheStats() {
		cacheChecks[name] = map[string]interface{}{"entries": st.Size}
	}
	checks["cache"] = cacheChecks

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	m := s.appMetrics

	counter := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n\n", name, help, name, name, v)
	}
	gauge := func(name, help string, v int64) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %d\n\n", name, help, name, name, v)
	}

	counter("http_requests_total", "Total number of HTTP requests", traceMetrics.TotalRequests)
	counter("http_client_errors_total", "Responses with a 4xx status", traceMetrics.ClientErrors)
	counter("http_server_errors_total", "Responses with a 5xx status", traceMetrics.ServerErrors)
	gauge("http_response_time_avg_microseconds", "Average response time", traceMetrics.AverageResponseTime)

	counter("records_saved_total", "Daily records saved", m.recordsSaved.Load())
	counter("reports_generated_total", "Reports generated", m.reportsGenerated.Load())
	counter("reports_rejected_total", "Report requests rejected by validation", m.reportsRejected.Load())
	counter("report_images_total", "Report images exported", m.imagesExported.Load())

	stats := s.service.CacheStats()
	fmt.Fprintf(w, "# HELP cache_hits_total Total cache hits\n# TYPE cache_hits_total counter\n")
	for _, name := range []string{"history", "chart"} {
		fmt.Fprintf(w, "cache_hits_total{cache=%q} %d\n", name, stats[name].Hits)
	}
	fmt.Fprintf(w, "\n# HELP cache_misses_total Total cache misses\n# TYPE cache_misses_total counter\n")
	for _, name := range []string{"history", "chart"} {
		fmt.Fprintf(w, "cache_misses_total{cache=%q} %d\n", name, stats[name].Misses)
	}
	fmt.Fprintf(w, "\n# HELP cache_entries Current cache entries\n# TYPE cache_entries gauge\n")
	for _, name := range []string{"history", "chart"} {
		fmt.Fprintf(w, "cache_entries{cache=%q} %d\n", name, stats[name].Size)
	}
	fmt.Fprintln(w)

	counter("rate_limit_hits_total", "Total rate limit hits", rateLimitMetrics.TotalHits)
	gauge("active_rate_limit_clients", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	counter("suspicious_requests_total", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	counter("invalid_ip_attempts_total", "Malformed client addresses seen", securityMetrics.InvalidIPAttempts)
	gauge("uptime_seconds", "Application uptime in seconds", int64(time.Since(m.uptime).Seconds()))
}

type indexPage struct {
	Labels    report.Header
	Date      core.Date
	Form      core.DailyForm
	Found     bool
	Dashboard dashboardView
}

// handleIndex renders the form prefilled with today's record, or with
// yesterday's closing balances when today has none yet.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := s.service.Today()

	form, found, err := s.service.FormFor(ctx, today)
	if err != nil {
		requestLogger(r).ErrorContext(ctx, "Failed to load today's record",
			applog.FieldDate, today.Key(), applog.FieldError, err)
		InternalServerError("Erro ao carregar o registro do dia").Write(w)
		return
	}

	dash, err := s.service.Dashboard(ctx, core.WindowLast7)
	if err != nil {
		// the form stays usable without the dashboard
		requestLogger(r).ErrorContext(ctx, "Failed to load dashboard", applog.FieldError, err)
	}

	s.render(w, r, "index.html", indexPage{
		Labels:    s.service.Header(),
		Date:      today,
		Form:      form,
		Found:     found,
		Dashboard: newDashboardView(dash),
	})
}
