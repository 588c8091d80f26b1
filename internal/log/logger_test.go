package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{Handler: slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
}

func TestLoggerAddsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf).WithComponent(ComponentStorage)
	l.Info("hello", FieldKey, "2025-03-10")
	out := buf.String()
	if strings.Count(out, "component=storage") != 1 {
		t.Fatalf("expected one component field, got %q", out)
	}
	if !strings.Contains(out, "key=2025-03-10") {
		t.Fatalf("missing key field: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestIDMiddlewareEnrichesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := newBufferLogger(&buf)
	h := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("request id not logged: %q", buf.String())
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf))
	r := httptest.NewRequest(http.MethodPost, "/record", nil)
	sl.LogHTTPEnd(context.Background(), r, "req-9", http.StatusUnprocessableEntity, 3, "10.0.0.1")
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Fatalf("4xx should log at warn: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "request_id=req-9") {
		t.Fatalf("request id missing: %q", buf.String())
	}
	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("bad"), ComponentStorage, OpSave, nil)
	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "error=bad") || !strings.Contains(out, "component=storage") {
		t.Fatalf("unexpected error log: %q", out)
	}
}
