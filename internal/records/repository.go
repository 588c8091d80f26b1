package records

import (
	"context"
	"encoding/json"
	"fmt"

	"informe/internal/core"
	applog "informe/internal/log"
)

// Repository reads and writes daily records. Values are the JSON encoding
// of core.DailyForm under the YYYY-MM-DD key.
type Repository struct {
	store  KeyValueStore
	logger *applog.Logger
}

func NewRepository(store KeyValueStore, logger *applog.Logger) *Repository {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Repository{store: store, logger: logger.WithComponent(applog.ComponentStorage)}
}

// Store exposes the underlying backend, e.g. for readiness checks.
func (r *Repository) Store() KeyValueStore { return r.store }

// Load returns the form stored for date. The boolean is false when the day
// has no record.
func (r *Repository) Load(ctx context.Context, date core.Date) (core.DailyForm, bool, error) {
	raw, found, err := r.store.Get(ctx, date.Key())
	if err != nil {
		return core.DailyForm{}, false, fmt.Errorf("get record %s: %w", date.Key(), err)
	}
	if !found {
		return core.DailyForm{}, false, nil
	}
	form, err := DecodeForm(raw)
	if err != nil {
		return core.DailyForm{}, false, fmt.Errorf("decode record %s: %w", date.Key(), err)
	}
	return form, true, nil
}

// Save writes the form for date and returns the stored version. Backends
// without versioning report version 0.
func (r *Repository) Save(ctx context.Context, date core.Date, form core.DailyForm) (int64, error) {
	if err := date.Validate(); err != nil {
		return 0, err
	}
	b, err := json.Marshal(form)
	if err != nil {
		return 0, fmt.Errorf("encode record %s: %w", date.Key(), err)
	}
	if vs, ok := r.store.(VersionedStore); ok {
		version, err := vs.Put(ctx, date.Key(), string(b))
		if err != nil {
			return 0, fmt.Errorf("put record %s: %w", date.Key(), err)
		}
		return version, nil
	}
	if err := r.store.Set(ctx, date.Key(), string(b)); err != nil {
		return 0, fmt.Errorf("set record %s: %w", date.Key(), err)
	}
	return 0, nil
}

// History returns one entry per stored date, oldest first. Keys that are
// not dates are ignored and values that do not decode are skipped.
func (r *Repository) History(ctx context.Context) ([]core.HistoryEntry, error) {
	keys, err := r.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	entries := make([]core.HistoryEntry, 0, len(keys))
	for _, key := range keys {
		if !core.IsDateKey(key) {
			continue
		}
		date, err := core.ParseDateKey(key)
		if err != nil {
			continue
		}
		raw, found, err := r.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("get record %s: %w", key, err)
		}
		if !found {
			continue
		}
		form, err := DecodeForm(raw)
		if err != nil {
			r.logger.Warn("Skipping undecodable record",
				applog.FieldKey, key,
				applog.FieldError, err)
			continue
		}
		entries = append(entries, core.BuildHistoryEntry(core.DailyRecord{Date: date, Form: form}))
	}
	core.SortEntries(entries)
	return entries, nil
}

// DecodeForm parses a stored record value.
func DecodeForm(raw string) (core.DailyForm, error) {
	var form core.DailyForm
	if err := json.Unmarshal([]byte(raw), &form); err != nil {
		return core.DailyForm{}, err
	}
	return form, nil
}
