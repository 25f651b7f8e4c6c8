package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"timetrack/internal/core"
)

type Store struct {
	mu      sync.Mutex
	users   map[core.UserID]string
	entries []core.TimeEntry
}

func New() *Store {
	return &Store{users: make(map[core.UserID]string)}
}

// NewFromFile seeds the store from a file of "user,category,minutes,RFC3339" lines.
// A missing file yields an empty store; malformed lines are skipped.
func NewFromFile(path string) *Store {
	s := New()
	for _, e := range readEntries(path) {
		if _, ok := s.users[e.UserID]; !ok {
			s.users[e.UserID] = ""
		}
		s.entries = append(s.entries, e)
		s.entries[len(s.entries)-1].ID = int64(len(s.entries))
	}
	return s
}

func (s *Store) CreateUser(_ context.Context, id core.UserID, displayName string) error {
	if id == 0 {
		return core.ErrMissingUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok || displayName != "" {
		s.users[id] = displayName
	}
	return nil
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (s *Store) AppendEntry(_ context.Context, e core.TimeEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = int64(len(s.entries) + 1)
	s.entries = append(s.entries, e)
	return fmt.Sprintf("mem:%d", e.ID), nil
}

func (s *Store) EntriesForUser(_ context.Context, id core.UserID, rng core.DateRange) ([]core.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.TimeEntry
	for _, e := range s.entries {
		if e.UserID == id && rng.Contains(e.Date()) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	return out, nil
}

// DisplayName returns the registered name of a user.
func (s *Store) DisplayName(id core.UserID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.users[id]
	return name, ok
}

func readEntries(path string) []core.TimeEntry {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []core.TimeEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if e, ok := parseSeedLine(line); ok {
			out = append(out, e)
		}
	}
	return out
}

func parseSeedLine(line string) (core.TimeEntry, bool) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return core.TimeEntry{}, false
	}
	user, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return core.TimeEntry{}, false
	}
	cat, err := core.ParseCategory(strings.TrimSpace(parts[1]))
	if err != nil {
		return core.TimeEntry{}, false
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return core.TimeEntry{}, false
	}
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[3]))
	if err != nil {
		return core.TimeEntry{}, false
	}
	e := core.TimeEntry{UserID: core.UserID(user), Category: cat, DurationMinutes: minutes, OccurredAt: at}
	if e.Validate() != nil {
		return core.TimeEntry{}, false
	}
	return e, true
}
