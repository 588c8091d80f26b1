// Package memory is an in-process spreadsheet mirror used in development
// and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	ports "informe/internal/sheets"
)

type Writer struct {
	mu    sync.Mutex
	rows  map[string]ports.Row
	order []string
	// writes counts every successful upsert, including overwrites.
	writes int
}

var _ ports.RecordWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{rows: map[string]ports.Row{}}
}

// UpsertRecord keeps one row per date and returns a synthetic reference.
func (w *Writer) UpsertRecord(_ context.Context, row ports.Row) (string, error) {
	if err := row.Date.Validate(); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	key := row.Date.Key()
	if _, ok := w.rows[key]; !ok {
		w.order = append(w.order, key)
	}
	w.rows[key] = row
	w.writes++
	// row 1 is the header
	return fmt.Sprintf("mem:%d", w.position(key)+2), nil
}

func (w *Writer) position(key string) int {
	for i, k := range w.order {
		if k == key {
			return i
		}
	}
	return -1
}

// Row returns the mirrored row for a date key.
func (w *Writer) Row(key string) (ports.Row, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.rows[key]
	return r, ok
}

// Rows returns all mirrored rows ordered by date.
func (w *Writer) Rows() []ports.Row {
	w.mu.Lock()
	defer w.mu.Unlock()
	keys := append([]string(nil), w.order...)
	sort.Strings(keys)
	out := make([]ports.Row, 0, len(keys))
	for _, k := range keys {
		out = append(out, w.rows[k])
	}
	return out
}

// Writes reports how many upserts succeeded.
func (w *Writer) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}
