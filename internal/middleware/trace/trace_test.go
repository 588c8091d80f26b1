package trace

import (
	"net/http"
	"net/http/httptest"
	"testing"

	applog "informe/internal/log"

	"github.com/google/uuid"
)

func TestMiddleware_AssignsRequestID(t *testing.T) {
	m := NewMiddleware(nil, nil)
	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		if applog.FromContext(r.Context()).Component() == "unknown" {
			t.Error("request logger not installed")
		}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("request id %q is not a uuid", seen)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("header = %q, context = %q", rec.Header().Get(RequestIDHeader), seen)
	}
}

func TestMiddleware_KeepsIncomingID(t *testing.T) {
	m := NewMiddleware(nil, nil)
	id := uuid.NewString()
	h := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get(RequestIDHeader) != id {
		t.Fatalf("id not kept: %q", rec.Header().Get(RequestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid\nInjected: 1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
		t.Fatal("malformed incoming id should be replaced")
	}
}

func TestMiddleware_Metrics(t *testing.T) {
	m := NewMiddleware(nil, nil)
	statuses := []int{http.StatusOK, http.StatusUnprocessableEntity, http.StatusInternalServerError}
	for _, code := range statuses {
		code := code
		h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(code)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	got := m.GetMetrics()
	if got.TotalRequests != 3 || got.ClientErrors != 1 || got.ServerErrors != 1 {
		t.Fatalf("metrics = %+v", got)
	}
}
