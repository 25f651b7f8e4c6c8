package core

import (
	"errors"
	"fmt"
	"time"
)

const (
	MinDurationMinutes = 1
	MaxDurationMinutes = 24 * 60
)

type (
	UserID int64

	Date struct {
		time.Time
	}

	// DateRange is inclusive on both ends.
	DateRange struct {
		Start Date
		End   Date
	}

	TimeEntry struct {
		ID              int64 // Store ID, zero until persisted
		UserID          UserID
		Category        Category
		DurationMinutes int
		OccurredAt      time.Time
	}

	// EntryDraft is what the conversation produces; the caller owns UserID and OccurredAt.
	EntryDraft struct {
		Category        Category
		DurationMinutes int
	}
)

var (
	ErrInvalidDuration = errors.New("duration out of range")
	ErrInvalidCategory = errors.New("invalid category")
	ErrMissingUser     = errors.New("missing user id")
	ErrZeroTimestamp   = errors.New("entry timestamp cannot be zero")
	ErrInvalidRange    = errors.New("range end is before range start")

	ErrStoreFailure  = errors.New("store failure")
	ErrRenderFailure = errors.New("render failure")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool {
	return d.Time.After(o.Time)
}

// Equal reports whether d and o are the same calendar day.
func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time)
}

// ISO formats the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// String formats the date the way users type it (dd.mm.yyyy).
func (d Date) String() string {
	return d.Format("02.01.2006")
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// MarshalText renders the date as YYYY-MM-DD for JSON payloads.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.ISO()), nil
}

// UnmarshalText parses a YYYY-MM-DD date.
func (d *Date) UnmarshalText(b []byte) error {
	t, err := time.Parse("2006-01-02", string(b))
	if err != nil {
		return fmt.Errorf("parse date %q: %w", string(b), err)
	}
	d.Time = t
	return nil
}

// MarshalJSON overrides the promoted time.Time encoding.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("parse date %s: expected a string", s)
	}
	return d.UnmarshalText([]byte(s[1 : len(s)-1]))
}

// NewDateRange builds an inclusive range, rejecting end < start.
func NewDateRange(start, end Date) (DateRange, error) {
	if end.Before(start) {
		return DateRange{}, ErrInvalidRange
	}
	return DateRange{Start: start, End: end}, nil
}

// Days returns the number of calendar days covered by the range.
func (r DateRange) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	// Both ends are midnight UTC, so the difference is a whole number of days.
	return int(r.End.Sub(r.Start.Time).Hours()/24) + 1
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

func (d EntryDraft) Validate() error {
	if !d.Category.IsValid() {
		return ErrInvalidCategory
	}
	if d.DurationMinutes < MinDurationMinutes || d.DurationMinutes > MaxDurationMinutes {
		return ErrInvalidDuration
	}
	return nil
}

// Entry stamps the draft with its owner and creation time.
func (d EntryDraft) Entry(user UserID, at time.Time) TimeEntry {
	return TimeEntry{
		UserID:          user,
		Category:        d.Category,
		DurationMinutes: d.DurationMinutes,
		OccurredAt:      at,
	}
}

func (e TimeEntry) Validate() error {
	if e.UserID == 0 {
		return ErrMissingUser
	}
	if e.OccurredAt.IsZero() {
		return ErrZeroTimestamp
	}
	return EntryDraft{Category: e.Category, DurationMinutes: e.DurationMinutes}.Validate()
}

// Date returns the calendar day the entry belongs to.
func (e TimeEntry) Date() Date {
	return DateOf(e.OccurredAt)
}
