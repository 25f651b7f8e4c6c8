package core

import (
	"sort"
)

// CategoryShare is one row of a ranked breakdown.
type CategoryShare struct {
	Category Category `json:"category"`
	Minutes  int      `json:"minutes"`
	Percent  float64  `json:"percent"`
}

// DailyReport aggregates one calendar day.
type DailyReport struct {
	Date         Date             `json:"date"`
	Minutes      map[Category]int `json:"minutes"`
	TotalMinutes int              `json:"total_minutes"`
}

// DayTotal is one zero-filled row of a range report.
type DayTotal struct {
	Date         Date `json:"date"`
	TotalMinutes int  `json:"total_minutes"`
}

// RangeReport aggregates an inclusive run of calendar days.
type RangeReport struct {
	Start                Date                 `json:"start"`
	End                  Date                 `json:"end"`
	Days                 []DayTotal           `json:"days"`
	Totals               map[Category]int     `json:"totals"`
	Percentages          map[Category]float64 `json:"percentages"`
	TotalMinutes         int                  `json:"total_minutes"`
	AverageMinutesPerDay int                  `json:"average_minutes_per_day"`
}

func emptyTotals() map[Category]int {
	m := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		m[c] = 0
	}
	return m
}

// BuildDailyReport sums the entries that occurred on date.
// No matching entries yields an all-zero report.
func BuildDailyReport(entries []TimeEntry, date Date) DailyReport {
	report := DailyReport{Date: date, Minutes: emptyTotals()}
	for _, e := range entries {
		if !e.Date().Equal(date) {
			continue
		}
		report.Minutes[e.Category] += e.DurationMinutes
		report.TotalMinutes += e.DurationMinutes
	}
	return report
}

// IsEmpty reports whether nothing was logged on the day.
func (r DailyReport) IsEmpty() bool {
	return r.TotalMinutes == 0
}

// Breakdown ranks the day's categories.
func (r DailyReport) Breakdown() []CategoryShare {
	return Rank(r.Minutes)
}

// BuildRangeReport aggregates entries over [start, end], emitting a row for every
// day in the range, including days with nothing logged.
func BuildRangeReport(entries []TimeEntry, start, end Date) (RangeReport, error) {
	rng, err := NewDateRange(start, end)
	if err != nil {
		return RangeReport{}, err
	}

	days := rng.Days()
	report := RangeReport{
		Start:  start,
		End:    end,
		Days:   make([]DayTotal, days),
		Totals: emptyTotals(),
	}
	for i := range report.Days {
		report.Days[i] = DayTotal{Date: start.AddDays(i)}
	}

	for _, e := range entries {
		d := e.Date()
		if !rng.Contains(d) {
			continue
		}
		idx := int(d.Sub(start.Time).Hours() / 24)
		report.Days[idx].TotalMinutes += e.DurationMinutes
		report.Totals[e.Category] += e.DurationMinutes
		report.TotalMinutes += e.DurationMinutes
	}

	report.Percentages = Percentages(report.Totals, report.TotalMinutes)
	report.AverageMinutesPerDay = report.TotalMinutes / days
	return report, nil
}

// IsEmpty reports whether nothing was logged in the whole range.
func (r RangeReport) IsEmpty() bool {
	return r.TotalMinutes == 0
}

// Breakdown ranks the range's categories.
func (r RangeReport) Breakdown() []CategoryShare {
	return Rank(r.Totals)
}

// Percentages computes each category's share of total; all zero when total is zero.
func Percentages(totals map[Category]int, total int) map[Category]float64 {
	out := make(map[Category]float64, len(Categories))
	for _, c := range Categories {
		out[c] = percentOf(totals[c], total)
	}
	return out
}

func percentOf(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// Rank orders categories by descending minutes, dropping zeros.
// Ties fall back to category priority.
func Rank(totals map[Category]int) []CategoryShare {
	var total int
	for _, m := range totals {
		total += m
	}

	out := make([]CategoryShare, 0, len(totals))
	for _, c := range Categories {
		m := totals[c]
		if m <= 0 {
			continue
		}
		out = append(out, CategoryShare{Category: c, Minutes: m, Percent: percentOf(m, total)})
	}
	// Input is already in priority order, so a stable sort keeps ties deterministic.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Minutes > out[j].Minutes
	})
	return out
}

// EntriesOn returns the entries of date ordered by time of day.
func EntriesOn(entries []TimeEntry, date Date) []TimeEntry {
	var out []TimeEntry
	for _, e := range entries {
		if e.Date().Equal(date) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	return out
}
