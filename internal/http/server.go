// Package http serves the daily informe UI: the auto-saving form, report
// generation and export, and the dashboard partials.
package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"informe/internal/core"
	applog "informe/internal/log"
	"informe/internal/middleware/ratelimit"
	"informe/internal/middleware/security"
	"informe/internal/middleware/trace"
	"informe/internal/services"
	appweb "informe/web"
)

type Server struct {
	http.Server
	service   *services.InformeService
	templates *template.Template
	logger    *applog.Logger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	appMetrics   *appMetrics
	shutdownOnce sync.Once
}

type appMetrics struct {
	recordsSaved     atomic.Int64
	reportsGenerated atomic.Int64
	reportsRejected  atomic.Int64
	imagesExported   atomic.Int64
	uptime           time.Time
}

// templateFuncs are available in every template.
var templateFuncs = template.FuncMap{
	"reais": formatReais,
	"int":   formatInt,
	"field": func(f core.DailyForm, name string) string {
		v, _ := f.Get(name)
		return v
	},
}

func parseTemplates() (*template.Template, error) {
	return template.New("informe").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, svc *services.InformeService, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.Discard()
	}
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		service:          svc,
		logger:           logger.WithComponent(applog.ComponentHTTP),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		securityDetector: security.NewDetector(logger),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)

	t, err := parseTemplates()
	if err != nil {
		s.logger.Error("Failed parsing templates",
			applog.FieldComponent, applog.ComponentTemplate,
			applog.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /record", s.handleSaveRecord)
	mux.HandleFunc("POST /report", s.handleGenerateReport)
	mux.HandleFunc("GET /report.png", s.handleReportImage)

	mux.HandleFunc("GET /ui/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /ui/dashboard/chart.png", s.handleDashboardChart)
	mux.HandleFunc("GET /api/history", s.handleHistory)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimit)

	var h http.Handler = mux
	h = limit(h)
	h = headers.Middleware(h)
	h = s.securityDetector.Middleware(h)
	h = s.traceMiddleware.Middleware(h)
	s.Handler = h

	return s
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldComponent, applog.ComponentRateLimit,
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Muitas requisições. Tente novamente em instantes.").Write(w)
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// requestLogger returns the request-scoped logger set by the trace middleware.
func requestLogger(r *http.Request) *applog.Logger {
	return applog.FromContext(r.Context()).WithComponent(applog.ComponentHTTP)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		requestLogger(r).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err, "template", name)
		// headers are already out; nothing more to send
	}
}

// renderFragment executes a template into memory so the caller can attach
// HTMX triggers before writing.
func (s *Server) renderFragment(name string, data any) (string, error) {
	if s.templates == nil {
		return "", errors.New("templates not loaded")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute %s: %w", name, err)
	}
	return buf.String(), nil
}

func writePNG(w http.ResponseWriter, b []byte, attachment string) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", fmt.Sprint(len(b)))
	if attachment != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+attachment+`"`)
	}
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
