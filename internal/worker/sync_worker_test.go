package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"timetrack/internal/amqp"
	"timetrack/internal/core"
	sheetsmem "timetrack/internal/sheets/memory"
	"timetrack/internal/storage"
)

func newRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func appendEntries(t *testing.T, repo *storage.SQLiteRepository, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := repo.AppendEntry(context.Background(), core.TimeEntry{
			UserID:          5,
			Category:        core.Work,
			DurationMinutes: 30 + i,
			OccurredAt:      time.Date(2024, 2, 1, 9, i, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("AppendEntry: %v", err)
		}
	}
}

func TestHandleSyncMessage(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	appendEntries(t, repo, 1)
	mirror := sheetsmem.New()
	w := NewSyncWorker(repo, mirror, 10)

	msg := amqp.NewEntrySyncMessage(1, 5)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}
	if status, _ := repo.SyncStatus(ctx, 1); status != storage.SyncSynced {
		t.Errorf("status = %q, want synced", status)
	}

	// Redelivery must not append a second row.
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("HandleSyncMessage redelivery: %v", err)
	}
	if got := len(mirror.Rows()); got != 1 {
		t.Errorf("rows = %d, want 1", got)
	}
}

func TestHandleSyncMessage_MirrorFailure(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	appendEntries(t, repo, 1)
	mirror := sheetsmem.New()
	mirror.FailWith(errors.New("sheets unavailable"))
	w := NewSyncWorker(repo, mirror, 10)

	if err := w.HandleSyncMessage(ctx, amqp.NewEntrySyncMessage(1, 5)); err == nil {
		t.Fatal("expected error when mirror fails")
	}
	if status, _ := repo.SyncStatus(ctx, 1); status != storage.SyncError {
		t.Errorf("status = %q, want error", status)
	}
}

func TestHandleSyncMessage_UnknownEntry(t *testing.T) {
	w := NewSyncWorker(newRepo(t), sheetsmem.New(), 10)
	err := w.HandleSyncMessage(context.Background(), amqp.NewEntrySyncMessage(42, 5))
	if !errors.Is(err, storage.ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestProcessPendingEntries(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	appendEntries(t, repo, 4)
	mirror := sheetsmem.New()
	w := NewSyncWorker(repo, mirror, 3)

	if err := w.ProcessPendingEntries(ctx); err != nil {
		t.Fatalf("ProcessPendingEntries: %v", err)
	}
	if got := len(mirror.Rows()); got != 3 {
		t.Errorf("first batch rows = %d, want 3", got)
	}

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("StartupSyncCheck: %v", err)
	}
	if got := len(mirror.Rows()); got != 4 {
		t.Errorf("rows after startup check = %d, want 4", got)
	}
	pending, _ := repo.GetPendingSyncEntries(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
}
