package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
	"fintrack/internal/store"
)

// mirrorStore is the slice of the repository the worker needs.
type mirrorStore interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	TransactionVersion(ctx context.Context, id int64) (int64, error)
	ListPendingSync(ctx context.Context, limit int) ([]storage.SyncRecord, error)
	MarkSynced(ctx context.Context, id, version int64) error
}

var _ mirrorStore = (*storage.SQLiteRepository)(nil)

// MirrorWorker pushes transaction changes into the Sheets backup. Queue
// messages drive the normal path; the periodic reconcile sweep catches rows
// whose messages were lost.
type MirrorWorker struct {
	store     mirrorStore
	writer    sheets.RowWriter
	deleter   sheets.RowDeleter
	batchSize int
}

func NewMirrorWorker(store mirrorStore, writer sheets.RowWriter, deleter sheets.RowDeleter, batchSize int) *MirrorWorker {
	return &MirrorWorker{
		store:     store,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage mirrors one transaction. Messages for rows that were
// deleted or modified again since publishing are dropped; the follow-up
// message or the reconcile sweep covers the newer state.
func (w *MirrorWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	current, err := w.store.TransactionVersion(ctx, msg.ID)
	if errors.Is(err, store.ErrNotFound) {
		slog.WarnContext(ctx, "Sync message for unknown transaction, dropping", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction version: %w", err)
	}
	if msg.Version < current {
		slog.InfoContext(ctx, "Stale sync message, dropping",
			"id", msg.ID,
			"message_version", msg.Version,
			"current_version", current)
		return nil
	}

	tx, err := w.store.GetTransaction(ctx, msg.ID)
	if errors.Is(err, store.ErrNotFound) {
		// Soft deleted after the message was published. The delete message
		// handles the sheet row.
		slog.InfoContext(ctx, "Transaction deleted before mirror, dropping", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	return w.mirror(ctx, tx, current)
}

// HandleDeleteMessage removes one transaction's backup row.
func (w *MirrorWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.TransactionDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	if err := w.deleter.DeleteTransaction(ctx, msg.ID); err != nil {
		return fmt.Errorf("delete mirrored row: %w", err)
	}

	slog.InfoContext(ctx, "Removed transaction from backup", "id", msg.ID)
	return nil
}

// ProcessPending sweeps up to limit rows still awaiting a mirror. Per-row
// failures are logged and skipped so one bad row cannot stall the sweep.
func (w *MirrorWorker) ProcessPending(ctx context.Context, limit int) error {
	pending, err := w.store.ListPendingSync(ctx, limit)
	if err != nil {
		return fmt.Errorf("list pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, rec := range pending {
		if err := w.mirror(ctx, rec.Tx, rec.Version); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction",
				"id", rec.Tx.ID, "error", err)
			continue
		}
	}
	return nil
}

// StartupCheck runs one larger reconcile sweep when the worker boots, to
// recover from messages missed during downtime.
func (w *MirrorWorker) StartupCheck(ctx context.Context) error {
	return w.ProcessPending(ctx, w.batchSize*5)
}

// RunReconciler sweeps pending rows on a fixed interval until the context
// ends.
func (w *MirrorWorker) RunReconciler(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping reconciler", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx, w.batchSize); err != nil {
				slog.ErrorContext(ctx, "Reconcile sweep failed", "error", err)
			}
		}
	}
}

func (w *MirrorWorker) mirror(ctx context.Context, tx core.Transaction, version int64) error {
	if err := w.writer.UpsertTransaction(ctx, tx); err != nil {
		return fmt.Errorf("upsert backup row: %w", err)
	}
	if err := w.store.MarkSynced(ctx, tx.ID, version); err != nil {
		// The mirror itself worked; the pending flag stays set and the
		// next sweep retries the acknowledgement.
		slog.ErrorContext(ctx, "Failed to mark transaction synced",
			"id", tx.ID, "version", version, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Mirrored transaction",
		"id", tx.ID,
		"version", version,
		"title", tx.Title,
		"amount_cents", tx.Amount.Cents)
	return nil
}
