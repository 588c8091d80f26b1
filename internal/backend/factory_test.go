package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"informe/internal/config"
	memsheet "informe/internal/sheets/memory"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Error("sqlite without path must fail")
	}
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Errorf("memory: %v", err)
	}
	if got := GetBackendTypeStrings(); len(got) != 2 || got[0] != "sqlite" {
		t.Errorf("types = %v", got)
	}
}

func TestCreateStore_Memory(t *testing.T) {
	ctx := context.Background()
	seed := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(seed, []byte(`{"2024-03-10": {"vendasLoja": "10"}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateStore(ctx, Config{Type: MemoryBackend, MemorySeedFile: seed})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if res.SQLite != nil {
		t.Error("memory backend must not expose a SQLite repository")
	}
	v, found, err := res.Store.Get(ctx, "2024-03-10")
	if err != nil || !found || v == "" {
		t.Fatalf("seeded record: %q found=%v err=%v", v, found, err)
	}
}

func TestCreateStore_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "informe.db")

	res, err := NewFactory(nil).CreateStore(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatal(err)
	}
	if res.SQLite == nil {
		t.Fatal("expected SQLite repository")
	}
	if err := res.Store.Set(ctx, "2024-03-10", `{"vendasLoja":"1"}`); err != nil {
		t.Fatal(err)
	}
	if err := res.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestCreateMirror_DefaultsToMemory(t *testing.T) {
	w, err := NewFactory(nil).CreateMirror(context.Background(), MirrorConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := w.(*memsheet.Writer); !ok {
		t.Errorf("mirror = %T, want *memory.Writer", w)
	}
}
