package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"timetrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "timetrack.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestAppendAndListEntries(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.CreateUser(ctx, 42, "Ann"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	// Second call updates the name instead of failing.
	if err := repo.CreateUser(ctx, 42, "Ann B."); err != nil {
		t.Fatalf("CreateUser again: %v", err)
	}

	loc := time.FixedZone("UTC+3", 3*3600)
	entries := []core.TimeEntry{
		{UserID: 42, Category: core.Work, DurationMinutes: 90, OccurredAt: time.Date(2024, 3, 10, 9, 0, 0, 0, loc)},
		{UserID: 42, Category: core.Study, DurationMinutes: 30, OccurredAt: time.Date(2024, 3, 11, 1, 0, 0, 0, loc)},
		{UserID: 7, Category: core.Sleep, DurationMinutes: 480, OccurredAt: time.Date(2024, 3, 10, 23, 0, 0, 0, loc)},
	}
	for _, e := range entries {
		ref, err := repo.AppendEntry(ctx, e)
		if err != nil {
			t.Fatalf("AppendEntry: %v", err)
		}
		if ref == "" {
			t.Fatal("expected a row reference")
		}
	}

	rng, _ := core.NewDateRange(core.NewDate(2024, 3, 10), core.NewDate(2024, 3, 10))
	got, err := repo.EntriesForUser(ctx, 42, rng)
	if err != nil {
		t.Fatalf("EntriesForUser: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].Category != core.Work || got[0].DurationMinutes != 90 || got[0].ID == 0 {
		t.Fatalf("unexpected entry %+v", got[0])
	}
	if !got[0].OccurredAt.Equal(entries[0].OccurredAt) {
		t.Fatalf("OccurredAt = %v, want %v", got[0].OccurredAt, entries[0].OccurredAt)
	}
	if !got[0].Date().Equal(core.NewDate(2024, 3, 10)) {
		t.Fatalf("entry date shifted to %s", got[0].Date())
	}
}

func TestAppendEntryRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.AppendEntry(context.Background(), core.TimeEntry{
		UserID:          1,
		Category:        core.Work,
		DurationMinutes: 0,
		OccurredAt:      time.Now(),
	})
	if !errors.Is(err, core.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestSyncStatusLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for i := 0; i < 3; i++ {
		_, err := repo.AppendEntry(ctx, core.TimeEntry{
			UserID:          1,
			Category:        core.Rest,
			DurationMinutes: 15,
			OccurredAt:      time.Date(2024, 1, 1, 10, i, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("AppendEntry: %v", err)
		}
	}

	pending, err := repo.GetPendingSyncEntries(ctx, 2)
	if err != nil {
		t.Fatalf("GetPendingSyncEntries: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected limit to apply, got %d", len(pending))
	}

	if err := repo.MarkSynced(ctx, pending[0].ID); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	if err := repo.MarkSyncError(ctx, pending[1].ID); err != nil {
		t.Fatalf("MarkSyncError: %v", err)
	}

	status, err := repo.SyncStatus(ctx, pending[0].ID)
	if err != nil || status != SyncSynced {
		t.Fatalf("SyncStatus = %q, %v", status, err)
	}

	rest, err := repo.GetPendingSyncEntries(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncEntries: %v", err)
	}
	if len(rest) != 1 {
		t.Fatalf("expected 1 pending entry, got %d", len(rest))
	}

	moved, err := repo.RetryFailedSyncs(ctx)
	if err != nil || moved != 1 {
		t.Fatalf("RetryFailedSyncs = %d, %v", moved, err)
	}
	if rest, _ = repo.GetPendingSyncEntries(ctx, 10); len(rest) != 2 {
		t.Fatalf("expected errored entry back in pending, got %d", len(rest))
	}

	if err := repo.MarkSynced(ctx, 9999); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
	if _, err := repo.GetEntry(ctx, 9999); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	repo.Close()

	version, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	if version != 1 {
		t.Fatalf("version = %d, want 1", version)
	}
}
