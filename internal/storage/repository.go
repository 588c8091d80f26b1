package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	applog "informe/internal/log"
	"informe/internal/records"

	_ "modernc.org/sqlite"
)

// Sync states of a stored entry.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// SQLiteRepository is the SQLite key-value backend. Every write bumps the
// entry version and marks it pending for the spreadsheet mirror.
type SQLiteRepository struct {
	db     *sql.DB
	logger *applog.Logger
}

// Entry is a stored value with its sync bookkeeping.
type Entry struct {
	Key           string
	Value         string
	Version       int64
	SyncedVersion int64
	SyncStatus    string
	UpdatedAt     time.Time
}

// PendingEntry is the minimal data needed to enqueue a sync message.
type PendingEntry struct {
	Key       string
	Version   int64
	UpdatedAt time.Time
}

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Server and worker share the file.
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger = logger.WithComponent(applog.ComponentStorage)
	logger.Info("SQLite store ready", "path", dbPath, "schema_version", version)
	return &SQLiteRepository{db: db, logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Get implements records.KeyValueStore
func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select entry: %w", err)
	}
	return value, true, nil
}

// Set implements records.KeyValueStore
func (r *SQLiteRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.Put(ctx, key, value)
	return err
}

// Put upserts the value and returns the new version of the key.
func (r *SQLiteRepository) Put(ctx context.Context, key, value string) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO kv_entries (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			version = kv_entries.version + 1,
			sync_status = 'pending',
			updated_at = CURRENT_TIMESTAMP
		RETURNING version`, key, value).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("upsert entry: %w", err)
	}
	r.logger.Debug("Entry stored", applog.FieldKey, key, applog.FieldVersion, version)
	return version, nil
}

// Keys implements records.KeyValueStore
func (r *SQLiteRepository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key FROM kv_entries ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// GetEntry returns the value together with its sync bookkeeping.
func (r *SQLiteRepository) GetEntry(ctx context.Context, key string) (*Entry, error) {
	var e Entry
	err := r.db.QueryRowContext(ctx, `
		SELECT key, value, version, synced_version, sync_status, updated_at
		FROM kv_entries WHERE key = ?`, key).
		Scan(&e.Key, &e.Value, &e.Version, &e.SyncedVersion, &e.SyncStatus, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get entry %s: %w", key, records.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", key, err)
	}
	return &e, nil
}

// GetPendingSync returns entries not yet mirrored, oldest change first.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT key, version, updated_at FROM kv_entries
		WHERE sync_status IN ('pending', 'error')
		ORDER BY updated_at, key
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync entries: %w", err)
	}
	defer rows.Close()
	var out []PendingEntry
	for rows.Next() {
		var p PendingEntry
		if err := rows.Scan(&p.Key, &p.Version, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan pending entry: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced records that version of key reached the mirror. If the entry
// changed in the meantime it stays pending.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, key string, version int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE kv_entries SET
			synced_version = ?,
			sync_status = CASE WHEN version = ? THEN 'synced' ELSE sync_status END
		WHERE key = ?`, version, version, key)
	if err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	r.logger.Info("Entry marked as synced", applog.FieldKey, key, applog.FieldVersion, version)
	return nil
}

// MarkSyncError flags key for a retry by the periodic scan.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE kv_entries SET sync_status = 'error' WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	r.logger.Warn("Entry marked with sync error", applog.FieldKey, key)
	return nil
}
