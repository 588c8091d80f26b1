// Package records persists one daily form per calendar date over a
// string-keyed store.
package records

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("record not found")

// Ports for the key-value backends.
type (
	// KeyValueStore is an opaque string store. Keys that are not dates may
	// live next to the daily records and are ignored by the Repository.
	KeyValueStore interface {
		Get(ctx context.Context, key string) (value string, found bool, err error)
		Set(ctx context.Context, key, value string) error
		Keys(ctx context.Context) ([]string, error)
	}

	// VersionedStore bumps a per-key version on every write so that mirrors
	// can tell stale sync messages apart.
	VersionedStore interface {
		KeyValueStore
		Put(ctx context.Context, key, value string) (version int64, err error)
	}

	// Pinger reports whether the backend is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
