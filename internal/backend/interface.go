// Package backend builds the record store and the spreadsheet mirror
// selected by configuration.
package backend

import (
	"context"

	"informe/internal/records"
	"informe/internal/sheets"
	"informe/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// StoreResult contains the store and an optional cleanup function.
type StoreResult struct {
	Store records.KeyValueStore
	// SQLite is set for the sqlite backend; the sync worker needs its
	// bookkeeping columns.
	SQLite  *storage.SQLiteRepository
	Cleanup CleanupFunc
}

// Close runs the cleanup function if there is one.
func (r *StoreResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*StoreResult, error)
	CreateMirror(ctx context.Context, config MirrorConfig) (sheets.RecordWriter, error)
}

// Config selects the record store.
type Config struct {
	Type BackendType

	SQLiteDBPath   string
	MemorySeedFile string
}

// MirrorConfig selects the spreadsheet the worker writes to. An empty
// spreadsheet id gives an in-memory mirror.
type MirrorConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
