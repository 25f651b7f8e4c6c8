package sheets

import (
	"context"

	"timetrack/internal/core"
)

// Ports for outbound mirror adapters.
type (
	// EntryMirror copies a persisted entry to an external sheet.
	EntryMirror interface {
		AppendEntry(ctx context.Context, e core.TimeEntry) (rowRef string, err error)
	}
)

// Row lays an entry out as the mirror columns:
// entry id, user id, date, time, category, minutes, duration.
func Row(e core.TimeEntry) []any {
	return []any{
		e.ID,
		int64(e.UserID),
		e.Date().String(),
		e.OccurredAt.Format("15:04"),
		e.Category.Name(),
		e.DurationMinutes,
		core.HumanDuration(e.DurationMinutes),
	}
}
