package adapters

import (
	"context"

	"timetrack/internal/core"
	"timetrack/internal/services"
	"timetrack/internal/storage"
	"timetrack/internal/store"
)

// SQLiteAdapter exposes SQLiteRepository as a store.Store whose writes go through
// EntryService, so every append also queues a sync message.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.EntryService
}

var _ store.Store = (*SQLiteAdapter)(nil)

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.EntryService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// CreateUser implements store.UserRegistrar
func (a *SQLiteAdapter) CreateUser(ctx context.Context, id core.UserID, displayName string) error {
	return a.storage.CreateUser(ctx, id, displayName)
}

// AppendEntry implements store.EntryWriter
func (a *SQLiteAdapter) AppendEntry(ctx context.Context, e core.TimeEntry) (string, error) {
	return a.service.CreateEntry(ctx, e)
}

// EntriesForUser implements store.EntryLister
func (a *SQLiteAdapter) EntriesForUser(ctx context.Context, id core.UserID, rng core.DateRange) ([]core.TimeEntry, error) {
	return a.storage.EntriesForUser(ctx, id, rng)
}

func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	return a.storage.Ping(ctx)
}
