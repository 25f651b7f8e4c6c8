// Package memory is an in-process EntryMirror that records rows instead of
// calling Google Sheets.
package memory

import (
	"context"
	"fmt"
	"sync"

	"timetrack/internal/core"
	ports "timetrack/internal/sheets"
)

type Mirror struct {
	mu   sync.Mutex
	rows [][]any
	fail error
}

var _ ports.EntryMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

// FailWith makes subsequent appends return err; nil restores normal behaviour.
func (m *Mirror) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func (m *Mirror) AppendEntry(_ context.Context, e core.TimeEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	m.rows = append(m.rows, ports.Row(e))
	return fmt.Sprintf("mem!A%d:G%d", len(m.rows), len(m.rows)), nil
}

// Rows returns a copy of the recorded rows.
func (m *Mirror) Rows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]any, len(m.rows))
	copy(out, m.rows)
	return out
}
