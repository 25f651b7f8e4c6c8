package worker

import (
	"context"
	"fmt"
	"log/slog"

	"timetrack/internal/amqp"
	"timetrack/internal/core"
	"timetrack/internal/sheets"
	"timetrack/internal/storage"
)

// EntrySource is the slice of the SQLite repository the worker needs.
type EntrySource interface {
	GetEntry(ctx context.Context, id int64) (core.TimeEntry, error)
	GetPendingSyncEntries(ctx context.Context, limit int) ([]storage.PendingSyncEntry, error)
	SyncStatus(ctx context.Context, id int64) (string, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncWorker mirrors stored entries to Google Sheets.
type SyncWorker struct {
	entries   EntrySource
	mirror    sheets.EntryMirror
	batchSize int
}

func NewSyncWorker(entries EntrySource, mirror sheets.EntryMirror, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		entries:   entries,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single entry sync message from AMQP.
// Already mirrored entries are acknowledged without a second append.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"message_id", msg.MessageID,
		"entry_id", msg.EntryID,
		"user_id", msg.UserID)

	status, err := w.entries.SyncStatus(ctx, msg.EntryID)
	if err != nil {
		return fmt.Errorf("get sync status: %w", err)
	}
	if status == storage.SyncSynced {
		slog.InfoContext(ctx, "Entry already synced, skipping", "entry_id", msg.EntryID)
		return nil
	}

	entry, err := w.entries.GetEntry(ctx, msg.EntryID)
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}

	if err := w.syncEntry(ctx, entry); err != nil {
		return fmt.Errorf("sync entry to sheets: %w", err)
	}
	return nil
}

// ProcessPendingEntries mirrors one batch of entries still marked pending.
// It backs up the AMQP path when messages are lost.
func (w *SyncWorker) ProcessPendingEntries(ctx context.Context) error {
	_, _, err := w.processPending(ctx, w.batchSize)
	return err
}

// StartupSyncCheck drains a larger batch of pending entries when the worker starts.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, failed, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	if synced+failed == 0 {
		slog.InfoContext(ctx, "No pending entries found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Startup sync completed",
		"total", synced+failed,
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (synced, failed int, err error) {
	pending, err := w.entries.GetPendingSyncEntries(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	slog.InfoContext(ctx, "Processing pending entries", "count", len(pending))

	for _, p := range pending {
		if ctx.Err() != nil {
			return synced, failed, ctx.Err()
		}

		entry, err := w.entries.GetEntry(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get entry", "entry_id", p.ID, "error", err)
			w.markError(ctx, p.ID)
			failed++
			continue
		}
		if err := w.syncEntry(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry", "entry_id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

func (w *SyncWorker) syncEntry(ctx context.Context, e core.TimeEntry) error {
	ref, err := w.mirror.AppendEntry(ctx, e)
	if err != nil {
		w.markError(ctx, e.ID)
		return err
	}

	if err := w.entries.MarkSynced(ctx, e.ID); err != nil {
		// The row exists in the sheet; leave the message acknowledged.
		slog.WarnContext(ctx, "Failed to mark entry as synced", "entry_id", e.ID, "error", err)
	}

	slog.InfoContext(ctx, "Synced entry to Google Sheets",
		"entry_id", e.ID,
		"user_id", int64(e.UserID),
		"category", string(e.Category),
		"sheets_ref", ref)
	return nil
}

func (w *SyncWorker) markError(ctx context.Context, id int64) {
	if err := w.entries.MarkSyncError(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync error", "entry_id", id, "error", err)
	}
}
