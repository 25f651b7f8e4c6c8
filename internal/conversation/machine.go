// Package conversation drives users through the short question flows that
// produce a time entry or a report request.
//
// Each user has an independent session. Transitions for one user are
// serialized; different users never block each other beyond the map lookup.
package conversation

import (
	"strconv"
	"sync"
	"time"

	"timetrack/internal/core"
)

type session struct {
	mu      sync.Mutex
	state   State
	touched time.Time
	// removed is set by CleanExpired once the session left the table.
	removed bool
}

type Machine struct {
	mu          sync.Mutex
	sessions    map[core.UserID]*session
	idleTimeout time.Duration
	now         func() time.Time
}

// NewMachine creates a machine whose abandoned sessions expire after idleTimeout.
// A non-positive timeout keeps sessions until they finish.
func NewMachine(idleTimeout time.Duration) *Machine {
	return &Machine{
		sessions:    make(map[core.UserID]*session),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// with runs fn holding the user's session lock.
func (m *Machine) with(user core.UserID, fn func(st *State) Outcome) Outcome {
	for {
		m.mu.Lock()
		s, ok := m.sessions[user]
		if !ok {
			s = &session{state: State{UserID: user}}
			m.sessions[user] = s
		}
		m.mu.Unlock()

		s.mu.Lock()
		if s.removed {
			s.mu.Unlock()
			continue
		}
		out := fn(&s.state)
		s.touched = m.now()
		out.State = s.state
		s.mu.Unlock()
		return out
	}
}

// StartEntry begins the entry flow from any stage.
func (m *Machine) StartEntry(user core.UserID) Outcome {
	return m.with(user, func(st *State) Outcome {
		st.reset(AwaitingCategory)
		return Outcome{Kind: Prompt, Question: AskCategory}
	})
}

// StartReport begins the daily report flow from any stage.
func (m *Machine) StartReport(user core.UserID) Outcome {
	return m.with(user, func(st *State) Outcome {
		st.reset(AwaitingReportDate)
		return Outcome{Kind: Prompt, Question: AskReportDate}
	})
}

// Abandon drops any pending flow.
func (m *Machine) Abandon(user core.UserID) {
	m.with(user, func(st *State) Outcome {
		st.reset(Idle)
		return Outcome{}
	})
}

// Handle feeds a free-text reply into the user's current flow.
// today resolves relative report dates.
func (m *Machine) Handle(user core.UserID, text string, today core.Date) Outcome {
	return m.with(user, func(st *State) Outcome {
		switch st.Stage {
		case AwaitingCategory:
			cat, err := core.LookupCategory(text)
			if err != nil {
				return Outcome{Kind: Invalid, Question: AskCategory, Err: err}
			}
			st.Stage = AwaitingDuration
			st.PendingCategory = cat
			return Outcome{Kind: Prompt, Question: AskDuration}

		case AwaitingDuration:
			minutes, err := core.ParseDuration(text)
			if err != nil {
				return Outcome{Kind: Invalid, Question: AskDuration, Err: err}
			}
			return st.finishEntry(minutes)

		case AwaitingReportDate:
			date, err := core.ParseReportDate(text, today)
			if err != nil {
				return Outcome{Kind: Invalid, Question: AskReportDate, Err: err}
			}
			st.reset(Idle)
			return Outcome{Kind: ReportReady, ReportDate: date}

		default:
			return Outcome{Kind: NotInFlow}
		}
	})
}

// HandleQuickDuration accepts one of the preset durations while a duration is awaited.
func (m *Machine) HandleQuickDuration(user core.UserID, minutes int) Outcome {
	return m.with(user, func(st *State) Outcome {
		if st.Stage != AwaitingDuration {
			return Outcome{Kind: NotInFlow}
		}
		if !core.IsQuickDuration(minutes) {
			err := &core.ParseError{Kind: core.InvalidFormat, Input: strconv.Itoa(minutes)}
			return Outcome{Kind: Invalid, Question: AskDuration, Err: err}
		}
		return st.finishEntry(minutes)
	})
}

// State returns a snapshot of the user's conversation.
func (m *Machine) State(user core.UserID) State {
	m.mu.Lock()
	s, ok := m.sessions[user]
	m.mu.Unlock()
	if !ok {
		return State{UserID: user, Stage: Idle}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active returns the number of tracked sessions.
func (m *Machine) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CleanExpired forgets idle sessions and flows untouched for longer than the
// idle timeout. Sessions mid-transition are skipped.
func (m *Machine) CleanExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for user, s := range m.sessions {
		if !s.mu.TryLock() {
			continue
		}
		stale := m.idleTimeout > 0 && now.Sub(s.touched) > m.idleTimeout
		if s.state.Stage == Idle || stale {
			s.removed = true
			delete(m.sessions, user)
			removed++
		}
		s.mu.Unlock()
	}
	return removed
}

func (st *State) reset(stage Stage) {
	st.Stage = stage
	st.PendingCategory = ""
}

func (st *State) finishEntry(minutes int) Outcome {
	draft := core.EntryDraft{Category: st.PendingCategory, DurationMinutes: minutes}
	st.reset(Idle)
	return Outcome{Kind: EntryReady, Entry: &draft}
}
