package store

import (
	"context"

	"timetrack/internal/core"
)

// Ports for outbound persistence adapters.
type (
	UserRegistrar interface {
		// CreateUser registers a user; calling it again for the same id is not an error.
		CreateUser(ctx context.Context, id core.UserID, displayName string) error
	}

	EntryWriter interface {
		AppendEntry(ctx context.Context, e core.TimeEntry) (ref string, err error)
	}

	// EntryLister returns a user's entries whose calendar day falls in the range.
	EntryLister interface {
		EntriesForUser(ctx context.Context, id core.UserID, rng core.DateRange) ([]core.TimeEntry, error)
	}

	Store interface {
		UserRegistrar
		EntryWriter
		EntryLister
	}
)
