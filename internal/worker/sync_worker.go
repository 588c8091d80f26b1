// Package worker mirrors saved daily records to the spreadsheet. It reacts
// to AMQP sync messages and periodically rescans entries still pending.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"informe/internal/amqp"
	"informe/internal/core"
	applog "informe/internal/log"
	"informe/internal/records"
	"informe/internal/sheets"
	"informe/internal/storage"

	"github.com/shopspring/decimal"
)

// RecordStore is the slice of the SQLite repository the worker needs.
type RecordStore interface {
	GetEntry(ctx context.Context, key string) (*storage.Entry, error)
	GetPendingSync(ctx context.Context, limit int) ([]storage.PendingEntry, error)
	MarkSynced(ctx context.Context, key string, version int64) error
	MarkSyncError(ctx context.Context, key string) error
}

// SyncWorker handles synchronization of daily records from SQLite to Google Sheets
type SyncWorker struct {
	store     RecordStore
	sheets    sheets.RecordWriter
	cardFee   decimal.Decimal
	batchSize int
	logger    *applog.Logger
}

func NewSyncWorker(store RecordStore, writer sheets.RecordWriter, cardFee decimal.Decimal, batchSize int, logger *applog.Logger) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &SyncWorker{
		store:     store,
		sheets:    writer,
		cardFee:   cardFee,
		batchSize: batchSize,
		logger:    logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleSyncMessage processes a single record sync message from AMQP. A
// returned error requeues the message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	w.logger.InfoContext(ctx, "Processing sync message",
		applog.FieldDate, msg.Date,
		applog.FieldVersion, msg.Version)

	entry, err := w.store.GetEntry(ctx, msg.Date)
	if errors.Is(err, records.ErrNotFound) {
		w.logger.WarnContext(ctx, "Record not found, dropping sync message", applog.FieldDate, msg.Date)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}

	if msg.Version < entry.Version {
		// a newer save published its own message
		w.logger.DebugContext(ctx, "Skipping stale sync message",
			applog.FieldDate, msg.Date,
			applog.FieldVersion, msg.Version,
			"stored_version", entry.Version)
		return nil
	}
	if entry.SyncedVersion >= entry.Version {
		return nil
	}

	if err := w.syncEntry(ctx, entry); err != nil {
		return fmt.Errorf("sync record to sheets: %w", err)
	}
	return nil
}

// ProcessPending syncs up to one batch of entries that are pending or
// failed. This is the backup path for lost AMQP messages. It returns the
// number of entries synced.
func (w *SyncWorker) ProcessPending(ctx context.Context) (int, error) {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains a larger batch at startup to recover from
// worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	w.logger.InfoContext(ctx, "Startup sync completed", applog.FieldCount, synced)
	return nil
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (int, error) {
	pending, err := w.store.GetPendingSync(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Processing pending records", applog.FieldCount, len(pending))

	synced := 0
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		entry, err := w.store.GetEntry(ctx, p.Key)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to get record", applog.FieldKey, p.Key, applog.FieldError, err)
			continue
		}
		if err := w.syncEntry(ctx, entry); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync record", applog.FieldKey, p.Key, applog.FieldError, err)
			continue
		}
		synced++
	}
	return synced, nil
}

// Run calls ProcessPending immediately and then every interval until ctx
// is done.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.ProcessPending(ctx); err != nil && ctx.Err() == nil {
			w.logger.ErrorContext(ctx, "Periodic sync failed", applog.FieldError, err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *SyncWorker) syncEntry(ctx context.Context, entry *storage.Entry) error {
	date, err := core.ParseDateKey(entry.Key)
	if err != nil {
		// not a daily record; nothing to mirror
		return w.store.MarkSynced(ctx, entry.Key, entry.Version)
	}
	form, err := records.DecodeForm(entry.Value)
	if err != nil {
		w.markError(ctx, entry.Key)
		return fmt.Errorf("decode record %s: %w", entry.Key, err)
	}

	rec := core.DailyRecord{Date: date, Form: form}
	row := sheets.NewRow(rec, core.ComputeMetrics(form, w.cardFee))
	ref, err := w.sheets.UpsertRecord(ctx, row)
	if err != nil {
		w.markError(ctx, entry.Key)
		return fmt.Errorf("upsert row %s: %w", entry.Key, err)
	}

	if err := w.store.MarkSynced(ctx, entry.Key, entry.Version); err != nil {
		// the row is written; the next scan rewrites it harmlessly
		w.logger.WarnContext(ctx, "Failed to mark record as synced",
			applog.FieldKey, entry.Key, applog.FieldError, err)
	}

	w.logger.InfoContext(ctx, "Synced record to Google Sheets",
		applog.FieldDate, entry.Key,
		applog.FieldVersion, entry.Version,
		applog.FieldSheetsRef, ref)
	return nil
}

func (w *SyncWorker) markError(ctx context.Context, key string) {
	if err := w.store.MarkSyncError(ctx, key); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark sync error", applog.FieldKey, key, applog.FieldError, err)
	}
}
