// Package memory is an in-process key-value backend for daily records.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

type entry struct {
	value   string
	version int64
}

type Store struct {
	mu    sync.Mutex
	items map[string]entry
}

func New() *Store {
	return &Store{items: map[string]entry{}}
}

// NewFromFile seeds the store from a JSON object whose keys are store keys.
// String values are stored as-is and any other value is stored as its JSON
// text, so both {"2025-03-10": {...}} and {"2025-03-10": "{...}"} load.
// A missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for k, v := range raw {
		var str string
		if err := json.Unmarshal(v, &str); err == nil {
			s.items[k] = entry{value: str, version: 1}
			continue
		}
		s.items[k] = entry{value: string(v), version: 1}
	}
	return s, nil
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[key]
	return e.value, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.Put(ctx, key, value)
	return err
}

// Put stores value and returns the key's new version.
func (s *Store) Put(_ context.Context, key, value string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.items[key]
	e.value = value
	e.version++
	s.items[key] = e
	return e.version, nil
}

// Keys returns every key in lexical order.
func (s *Store) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Ping(context.Context) error { return nil }
