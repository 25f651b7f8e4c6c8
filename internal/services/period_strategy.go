// Package services provides business logic and orchestration services.
//
// This file implements the strategy registry for report periods. Each named
// period resolves "today" into the inclusive date range it covers.
package services

import (
	"fmt"
	"sort"

	"timetrack/internal/core"
)

// PeriodResolver turns today into the range a report covers.
type PeriodResolver interface {
	Range(today core.Date) core.DateRange
}

// DayPeriod covers today only.
type DayPeriod struct{}

func (DayPeriod) Range(today core.Date) core.DateRange {
	return core.DateRange{Start: today, End: today}
}

// TrailingPeriod covers the last Days days, today included.
type TrailingPeriod struct {
	Days int
}

func (p TrailingPeriod) Range(today core.Date) core.DateRange {
	days := p.Days
	if days < 1 {
		days = 1
	}
	return core.DateRange{Start: today.AddDays(-(days - 1)), End: today}
}

// MonthToDate covers the first of the current month through today.
type MonthToDate struct{}

func (MonthToDate) Range(today core.Date) core.DateRange {
	return core.DateRange{Start: core.NewDate(today.Year(), int(today.Month()), 1), End: today}
}

const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodStats = "stats"
	PeriodMonth = "month"
)

var periodStrategies = map[string]PeriodResolver{
	PeriodDay:   DayPeriod{},
	PeriodWeek:  TrailingPeriod{Days: 7},
	PeriodStats: TrailingPeriod{Days: 30},
	PeriodMonth: MonthToDate{},
}

// GetPeriodResolver returns the resolver registered under name.
func GetPeriodResolver(name string) (PeriodResolver, error) {
	r, ok := periodStrategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown report period: %s", name)
	}
	return r, nil
}

// RegisterPeriodResolver adds or replaces a named period. Not safe for concurrent use
// with lookups; register during startup.
func RegisterPeriodResolver(name string, r PeriodResolver) {
	periodStrategies[name] = r
}

// PeriodNames lists the registered periods in alphabetical order.
func PeriodNames() []string {
	names := make([]string, 0, len(periodStrategies))
	for n := range periodStrategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
