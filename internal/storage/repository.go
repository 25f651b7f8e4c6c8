package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"timetrack/internal/core"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Sync states of a stored entry.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// ErrEntryNotFound is returned by GetEntry for an unknown id.
var ErrEntryNotFound = errors.New("entry not found")

type SQLiteRepository struct {
	db *sqlx.DB
}

// entryRow mirrors a time_entries row.
type entryRow struct {
	ID              int64  `db:"id"`
	UserID          int64  `db:"user_id"`
	Category        string `db:"category"`
	DurationMinutes int    `db:"duration_minutes"`
	OccurredAt      string `db:"occurred_at"`
	SyncStatus      string `db:"sync_status"`
}

// PendingSyncEntry is the minimal data needed to enqueue a sync message.
type PendingSyncEntry struct {
	ID         int64
	UserID     int64
	OccurredAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateUser registers a user, refreshing the display name if it already exists.
// An empty name keeps the stored one.
func (r *SQLiteRepository) CreateUser(ctx context.Context, id core.UserID, displayName string) error {
	if id == 0 {
		return core.ErrMissingUser
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET display_name =
			CASE WHEN excluded.display_name = '' THEN users.display_name ELSE excluded.display_name END`,
		int64(id), displayName)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// AppendEntry stores a new entry and returns its id as the row reference.
func (r *SQLiteRepository) AppendEntry(ctx context.Context, e core.TimeEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validate entry: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO time_entries (user_id, category, duration_minutes, occurred_at, occurred_date)
		VALUES (?, ?, ?, ?, ?)`,
		int64(e.UserID), string(e.Category), e.DurationMinutes,
		e.OccurredAt.Format(time.RFC3339Nano), e.Date().ISO())
	if err != nil {
		return "", fmt.Errorf("create entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("read entry id: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", id,
		"user_id", e.UserID,
		"category", e.Category,
		"duration_minutes", e.DurationMinutes)

	return strconv.FormatInt(id, 10), nil
}

// EntriesForUser returns the user's entries whose calendar day lies in rng, oldest first.
func (r *SQLiteRepository) EntriesForUser(ctx context.Context, id core.UserID, rng core.DateRange) ([]core.TimeEntry, error) {
	var rows []entryRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, category, duration_minutes, occurred_at, sync_status
		FROM time_entries
		WHERE user_id = ? AND occurred_date BETWEEN ? AND ?
		ORDER BY occurred_at, id`,
		int64(id), rng.Start.ISO(), rng.End.ISO())
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	entries := make([]core.TimeEntry, 0, len(rows))
	for _, row := range rows {
		e, err := row.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// GetEntry retrieves a single entry by id.
func (r *SQLiteRepository) GetEntry(ctx context.Context, id int64) (core.TimeEntry, error) {
	var row entryRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, user_id, category, duration_minutes, occurred_at, sync_status
		FROM time_entries WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TimeEntry{}, fmt.Errorf("get entry %d: %w", id, ErrEntryNotFound)
	}
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("get entry by id: %w", err)
	}
	return row.entry()
}

// GetPendingSyncEntries returns up to limit entries not yet mirrored, oldest first.
func (r *SQLiteRepository) GetPendingSyncEntries(ctx context.Context, limit int) ([]PendingSyncEntry, error) {
	var rows []entryRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, category, duration_minutes, occurred_at, sync_status
		FROM time_entries
		WHERE sync_status = ?
		ORDER BY id
		LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync entries: %w", err)
	}

	pending := make([]PendingSyncEntry, 0, len(rows))
	for _, row := range rows {
		at, err := time.Parse(time.RFC3339Nano, row.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse occurred_at of entry %d: %w", row.ID, err)
		}
		pending = append(pending, PendingSyncEntry{ID: row.ID, UserID: row.UserID, OccurredAt: at})
	}
	return pending, nil
}

// MarkSynced marks an entry as mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.setSyncStatus(ctx, id, SyncSynced); err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	slog.InfoContext(ctx, "Entry marked as synced", "id", id)
	return nil
}

// MarkSyncError marks an entry whose mirroring failed.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.setSyncStatus(ctx, id, SyncError); err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	slog.WarnContext(ctx, "Entry marked with sync error", "id", id)
	return nil
}

// RetryFailedSyncs moves every errored entry back to pending and returns how many moved.
func (r *SQLiteRepository) RetryFailedSyncs(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE time_entries SET sync_status = ? WHERE sync_status = ?`, SyncPending, SyncError)
	if err != nil {
		return 0, fmt.Errorf("retry failed syncs: %w", err)
	}
	return res.RowsAffected()
}

// SyncStatus returns the sync state of an entry.
func (r *SQLiteRepository) SyncStatus(ctx context.Context, id int64) (string, error) {
	var status string
	err := r.db.GetContext(ctx, &status, `SELECT sync_status FROM time_entries WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("sync status of %d: %w", id, ErrEntryNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("sync status: %w", err)
	}
	return status, nil
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE time_entries SET sync_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (row entryRow) entry() (core.TimeEntry, error) {
	at, err := time.Parse(time.RFC3339Nano, row.OccurredAt)
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("parse occurred_at of entry %d: %w", row.ID, err)
	}
	cat, err := core.ParseCategory(row.Category)
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("entry %d: %w", row.ID, err)
	}
	return core.TimeEntry{
		ID:              row.ID,
		UserID:          core.UserID(row.UserID),
		Category:        cat,
		DurationMinutes: row.DurationMinutes,
		OccurredAt:      at,
	}, nil
}
