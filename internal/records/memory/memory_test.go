package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStoreSetGetKeys(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, found, _ := s.Get(ctx, "2025-03-10"); found {
		t.Fatalf("empty store should not find keys")
	}
	if err := s.Set(ctx, "2025-03-10", `{"vendasLoja":"10"}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, err := s.Put(ctx, "2025-03-10", `{"vendasLoja":"12"}`)
	if err != nil || v != 2 {
		t.Fatalf("expected version 2, got %d (err=%v)", v, err)
	}
	_ = s.Set(ctx, "theme", "dark")
	_ = s.Set(ctx, "2025-01-02", "{}")

	got, found, err := s.Get(ctx, "2025-03-10")
	if err != nil || !found || got != `{"vendasLoja":"12"}` {
		t.Fatalf("unexpected get: %q %v %v", got, found, err)
	}
	keys, _ := s.Keys(ctx)
	want := []string{"2025-01-02", "2025-03-10", "theme"}
	if len(keys) != len(want) {
		t.Fatalf("unexpected keys: %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("unexpected keys: %v", keys)
		}
	}
}

func TestNewFromFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("missing file should give an empty store: %v", err)
	}
	if keys, _ := s.Keys(ctx); len(keys) != 0 {
		t.Fatalf("expected empty store, got %v", keys)
	}

	path := filepath.Join(dir, "seed.json")
	seed := `{"2025-03-09": {"vendasLoja": "100"}, "2025-03-10": "{\"vendasLoja\":\"50\"}"}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	v, found, _ := s.Get(ctx, "2025-03-09")
	if !found || v != `{"vendasLoja": "100"}` {
		t.Fatalf("object value should be kept as JSON text, got %q", v)
	}
	v, _, _ = s.Get(ctx, "2025-03-10")
	if v != `{"vendasLoja":"50"}` {
		t.Fatalf("string value should be unquoted, got %q", v)
	}

	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := NewFromFile(path); err == nil {
		t.Fatalf("expected decode error")
	}
}
