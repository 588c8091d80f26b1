package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"informe/internal/core"
	ports "informe/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheet serves the subset of the Sheets values API the client uses.
type fakeSheet struct {
	mu      sync.Mutex
	colA    []string
	updates []string
	input   []string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, rng, ok := strings.Cut(r.URL.Path, "/values/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodGet:
		values := make([][]any, len(f.colA))
		for i, k := range f.colA {
			values[i] = []any{k}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": values})
	case http.MethodPut:
		var body struct {
			Values [][]any `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.updates = append(f.updates, rng)
		f.input = append(f.input, r.URL.Query().Get("valueInputOption"))
		if row, ok := rowOf(rng); ok {
			for len(f.colA) < row {
				f.colA = append(f.colA, "")
			}
			if len(body.Values) > 0 && len(body.Values[0]) > 0 {
				f.colA[row-1], _ = body.Values[0][0].(string)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"updatedRange": rng})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// rowOf extracts n from "Sheet!An:Nn".
func rowOf(rng string) (int, bool) {
	_, cells, ok := strings.Cut(rng, "!A")
	if !ok {
		return 0, false
	}
	digits, _, _ := strings.Cut(cells, ":")
	n, err := strconv.Atoi(digits)
	return n, err == nil
}

func newTestClient(t *testing.T, f *fakeSheet) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	c, err := NewWithService(svc, Options{SpreadsheetID: "sheet-id", SheetName: "Informes"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestUpsertRecord_EmptySheetWritesHeaderThenRow(t *testing.T) {
	f := &fakeSheet{}
	c := newTestClient(t, f)

	ref, err := c.UpsertRecord(context.Background(), ports.Row{Date: core.NewDate(2024, 3, 10)})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if ref != "Informes!A2:N2" {
		t.Fatalf("ref = %q", ref)
	}
	if len(f.updates) != 2 || f.updates[0] != "Informes!A1:N1" {
		t.Fatalf("updates = %v", f.updates)
	}
	if f.colA[0] != "Data" || f.colA[1] != "2024-03-10" {
		t.Fatalf("column A = %v", f.colA)
	}
	for _, in := range f.input {
		if in != "RAW" {
			t.Fatalf("valueInputOption = %q, want RAW", in)
		}
	}
}

func TestUpsertRecord_ReplacesExistingRow(t *testing.T) {
	f := &fakeSheet{colA: []string{"Data", "2024-03-09", "10/03/2024", "2024-03-11"}}
	c := newTestClient(t, f)

	ref, err := c.UpsertRecord(context.Background(), ports.Row{Date: core.NewDate(2024, 3, 10)})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if ref != "Informes!A3:N3" {
		t.Fatalf("ref = %q, want row 3", ref)
	}
	if len(f.colA) != 4 {
		t.Fatalf("sheet grew to %d rows", len(f.colA))
	}
}

func TestUpsertRecord_AppendsNewDate(t *testing.T) {
	f := &fakeSheet{colA: []string{"Data", "2024-03-09"}}
	c := newTestClient(t, f)

	ref, err := c.UpsertRecord(context.Background(), ports.Row{Date: core.NewDate(2024, 3, 10)})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if ref != "Informes!A3:N3" {
		t.Fatalf("ref = %q", ref)
	}
	if len(f.updates) != 1 {
		t.Fatalf("header rewritten: %v", f.updates)
	}
}

func TestUpsertRecord_ZeroDate(t *testing.T) {
	c := newTestClient(t, &fakeSheet{})
	if _, err := c.UpsertRecord(context.Background(), ports.Row{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNewWithService_RequiresSpreadsheetID(t *testing.T) {
	if _, err := NewWithService(nil, Options{}); err == nil {
		t.Fatal("expected error without spreadsheet id")
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := loadCredentials(Options{}); err == nil {
		t.Fatal("expected error without credentials")
	}
	b, err := loadCredentials(Options{CredentialsJSON: ` {"type":"service_account"} `})
	if err != nil || string(b) != `{"type":"service_account"}` {
		t.Fatalf("inline credentials = %q, %v", b, err)
	}
}
