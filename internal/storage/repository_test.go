package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"informe/internal/records"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"), nil)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

var _ records.VersionedStore = (*SQLiteRepository)(nil)

func TestSQLiteRepositoryGetSetKeys(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, found, err := repo.Get(ctx, "2025-03-10"); err != nil || found {
		t.Fatalf("expected missing key, got found=%v err=%v", found, err)
	}

	v, err := repo.Put(ctx, "2025-03-10", `{"vendasLoja":"10"}`)
	if err != nil || v != 1 {
		t.Fatalf("first put: version=%d err=%v", v, err)
	}
	v, err = repo.Put(ctx, "2025-03-10", `{"vendasLoja":"11"}`)
	if err != nil || v != 2 {
		t.Fatalf("second put: version=%d err=%v", v, err)
	}
	if err := repo.Set(ctx, "2025-03-01", `{}`); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, found, err := repo.Get(ctx, "2025-03-10")
	if err != nil || !found || got != `{"vendasLoja":"11"}` {
		t.Fatalf("unexpected get: %q found=%v err=%v", got, found, err)
	}

	keys, err := repo.Keys(ctx)
	if err != nil || len(keys) != 2 || keys[0] != "2025-03-01" || keys[1] != "2025-03-10" {
		t.Fatalf("unexpected keys: %v err=%v", keys, err)
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestSQLiteRepositorySyncBookkeeping(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, _ = repo.Put(ctx, "2025-03-09", `{}`)
	_, _ = repo.Put(ctx, "2025-03-10", `{}`)

	pending, err := repo.GetPendingSync(ctx, 10)
	if err != nil || len(pending) != 2 {
		t.Fatalf("expected 2 pending entries, got %v err=%v", pending, err)
	}

	if err := repo.MarkSynced(ctx, "2025-03-09", 1); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	e, err := repo.GetEntry(ctx, "2025-03-09")
	if err != nil || e.SyncStatus != SyncSynced || e.SyncedVersion != 1 {
		t.Fatalf("unexpected entry: %+v err=%v", e, err)
	}

	// a newer write lands before the mirror confirms the old version
	_, _ = repo.Put(ctx, "2025-03-10", `{"vendasLoja":"1"}`)
	if err := repo.MarkSynced(ctx, "2025-03-10", 1); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	e, _ = repo.GetEntry(ctx, "2025-03-10")
	if e.SyncStatus != SyncPending || e.Version != 2 || e.SyncedVersion != 1 {
		t.Fatalf("stale confirmation should keep entry pending: %+v", e)
	}

	if err := repo.MarkSyncError(ctx, "2025-03-10"); err != nil {
		t.Fatalf("mark error: %v", err)
	}
	pending, _ = repo.GetPendingSync(ctx, 10)
	if len(pending) != 1 || pending[0].Key != "2025-03-10" || pending[0].Version != 2 {
		t.Fatalf("errored entry should be retried: %+v", pending)
	}

	if _, err := repo.GetEntry(ctx, "missing"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	first, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first != 1 {
		t.Fatalf("schema version = %d, want 1", first)
	}
	second, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second != first {
		t.Fatalf("second run moved schema from %d to %d", first, second)
	}
}
