package adapters

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"timetrack/internal/core"
	applog "timetrack/internal/log"
	"timetrack/internal/services"
	"timetrack/internal/storage"
)

type recordingPublisher struct {
	ids []int64
}

func (p *recordingPublisher) PublishEntrySync(_ context.Context, entryID, _ int64) error {
	p.ids = append(p.ids, entryID)
	return nil
}

func TestSQLiteAdapterPublishesOnAppend(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "adapter.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	defer repo.Close()

	pub := &recordingPublisher{}
	logger := applog.New(applog.Config{Output: &bytes.Buffer{}})
	adapter := NewSQLiteAdapter(repo, services.NewEntryService(repo, pub, logger))

	if err := adapter.CreateUser(ctx, 3, "bob"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	at := time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC)
	ref, err := adapter.AppendEntry(ctx, core.TimeEntry{UserID: 3, Category: core.Sleep, DurationMinutes: 480, OccurredAt: at})
	if err != nil {
		t.Fatalf("AppendEntry: %v", err)
	}
	if ref != "1" || len(pub.ids) != 1 || pub.ids[0] != 1 {
		t.Fatalf("ref %q, published %v", ref, pub.ids)
	}

	day := core.DateOf(at)
	got, err := adapter.EntriesForUser(ctx, 3, core.DateRange{Start: day, End: day})
	if err != nil || len(got) != 1 {
		t.Fatalf("EntriesForUser = %v, %v", got, err)
	}
	if err := adapter.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
