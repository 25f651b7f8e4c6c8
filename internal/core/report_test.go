package core

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func entryAt(cat Category, minutes int, y, m, d, hour int) TimeEntry {
	return TimeEntry{
		UserID:          1,
		Category:        cat,
		DurationMinutes: minutes,
		OccurredAt:      time.Date(y, time.Month(m), d, hour, 0, 0, 0, time.UTC),
	}
}

func TestBuildDailyReport(t *testing.T) {
	day := NewDate(2024, 3, 10)
	entries := []TimeEntry{
		entryAt(Work, 120, 2024, 3, 10, 9),
		entryAt(Work, 30, 2024, 3, 10, 14),
		entryAt(Study, 45, 2024, 3, 10, 20),
		entryAt(Sleep, 480, 2024, 3, 9, 23),
	}

	got := BuildDailyReport(entries, day)
	if got.TotalMinutes != 195 {
		t.Fatalf("TotalMinutes = %d, want 195", got.TotalMinutes)
	}
	if got.Minutes[Work] != 150 || got.Minutes[Study] != 45 {
		t.Fatalf("unexpected minutes: %v", got.Minutes)
	}
	if got.Minutes[Sleep] != 0 {
		t.Fatalf("entry from another day leaked into report: %v", got.Minutes)
	}
	if len(got.Minutes) != len(Categories) {
		t.Fatalf("expected a row per category, got %d", len(got.Minutes))
	}

	again := BuildDailyReport(entries, day)
	if !reflect.DeepEqual(got, again) {
		t.Fatal("building the same report twice gave different results")
	}
}

func TestBuildDailyReportEmpty(t *testing.T) {
	got := BuildDailyReport(nil, NewDate(2024, 3, 10))
	if !got.IsEmpty() || len(got.Breakdown()) != 0 {
		t.Fatalf("expected an empty report, got %+v", got)
	}
}

func TestBuildRangeReportZeroFillsDays(t *testing.T) {
	start, end := NewDate(2024, 3, 4), NewDate(2024, 3, 10)
	entries := []TimeEntry{
		entryAt(Work, 60, 2024, 3, 4, 10),
		entryAt(Rest, 30, 2024, 3, 5, 10),
		entryAt(Study, 90, 2024, 3, 7, 10),
		entryAt(Work, 20, 2024, 3, 9, 10),
		entryAt(Work, 500, 2024, 3, 11, 10),
	}

	got, err := BuildRangeReport(entries, start, end)
	if err != nil {
		t.Fatalf("BuildRangeReport: %v", err)
	}
	if len(got.Days) != 7 {
		t.Fatalf("len(Days) = %d, want 7", len(got.Days))
	}
	empty := 0
	for i, d := range got.Days {
		if !d.Date.Equal(start.AddDays(i)) {
			t.Fatalf("Days[%d].Date = %s, want %s", i, d.Date, start.AddDays(i))
		}
		if d.TotalMinutes == 0 {
			empty++
		}
	}
	if empty != 3 {
		t.Fatalf("expected 3 empty days, got %d", empty)
	}
	if got.TotalMinutes != 200 {
		t.Fatalf("TotalMinutes = %d, want 200", got.TotalMinutes)
	}
	// 200 / 7 floors to 28.
	if got.AverageMinutesPerDay != 28 {
		t.Fatalf("AverageMinutesPerDay = %d, want 28", got.AverageMinutesPerDay)
	}

	var sum float64
	for _, p := range got.Percentages {
		sum += p
	}
	if math.Abs(sum-100) > 0.1 {
		t.Fatalf("percentages sum to %f", sum)
	}
}

func TestBuildRangeReportEmpty(t *testing.T) {
	got, err := BuildRangeReport(nil, NewDate(2024, 3, 4), NewDate(2024, 3, 4))
	if err != nil {
		t.Fatalf("BuildRangeReport: %v", err)
	}
	if !got.IsEmpty() || got.AverageMinutesPerDay != 0 || len(got.Days) != 1 {
		t.Fatalf("unexpected report %+v", got)
	}
	for c, p := range got.Percentages {
		if p != 0 {
			t.Fatalf("percentage of %s = %f, want 0", c, p)
		}
	}
}

func TestBuildRangeReportInvertedRange(t *testing.T) {
	_, err := BuildRangeReport(nil, NewDate(2024, 3, 10), NewDate(2024, 3, 9))
	if err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestRank(t *testing.T) {
	totals := map[Category]int{
		Study:         30,
		Work:          30,
		Entertainment: 60,
		Sleep:         0,
	}
	got := Rank(totals)
	want := []Category{Entertainment, Work, Study}
	if len(got) != len(want) {
		t.Fatalf("Rank returned %d rows, want %d", len(got), len(want))
	}
	for i, c := range want {
		if got[i].Category != c {
			t.Fatalf("Rank[%d] = %s, want %s", i, got[i].Category, c)
		}
	}
	if got[0].Percent != 50 || got[1].Percent != 25 {
		t.Fatalf("unexpected percents: %+v", got)
	}
}

func TestEntriesOnOrdersByTime(t *testing.T) {
	day := NewDate(2024, 3, 10)
	entries := []TimeEntry{
		entryAt(Study, 10, 2024, 3, 10, 18),
		entryAt(Work, 10, 2024, 3, 11, 1),
		entryAt(Sleep, 10, 2024, 3, 10, 2),
	}
	got := EntriesOn(entries, day)
	if len(got) != 2 || got[0].Category != Sleep || got[1].Category != Study {
		t.Fatalf("unexpected entries: %+v", got)
	}
}

func TestFormatting(t *testing.T) {
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"human hours", HumanDuration(90), "1h 30m"},
		{"human minutes", HumanDuration(30), "30m"},
		{"human whole hours", HumanDuration(120), "2h 0m"},
		{"full", FullDuration(45), "0h 45m"},
		{"percent third", FormatPercent(100.0 / 3), "33.3%"},
		{"percent two thirds", FormatPercent(200.0 / 3), "66.7%"},
		{"percent zero", FormatPercent(0), "0.0%"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, tc.got, tc.want)
		}
	}
}
