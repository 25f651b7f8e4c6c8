package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"timetrack/internal/core"
	applog "timetrack/internal/log"
	"timetrack/internal/store"
)

// ReportService loads entries and runs the aggregation functions over them.
// Concurrent identical loads share one store read.
type ReportService struct {
	entries store.EntryLister
	group   singleflight.Group
	events  *applog.StructuredLogger
}

func NewReportService(entries store.EntryLister, logger *applog.Logger) *ReportService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ReportService{
		entries: entries,
		events:  applog.NewStructuredLogger(logger.WithComponent(applog.ComponentReport)),
	}
}

// sharedLoadTimeout bounds a collapsed store read, which no single caller can cancel.
const sharedLoadTimeout = 15 * time.Second

// load shares one store read between concurrent callers for the same key. The read
// runs detached from any one caller's cancellation; each caller still stops waiting
// when its own ctx is done.
func (s *ReportService) load(ctx context.Context, user core.UserID, rng core.DateRange) ([]core.TimeEntry, error) {
	key := fmt.Sprintf("%d:%s:%s", user, rng.Start.ISO(), rng.End.ISO())
	ch := s.group.DoChan(key, func() (any, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		return s.entries.EntriesForUser(sharedCtx, user, rng)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		s.events.LogError(ctx, "Failed to load entries", res.Err, applog.ComponentStorage, applog.OpRead,
			applog.NewFields().WithUser(user).WithRange(rng.Start, rng.End))
		return nil, fmt.Errorf("%w: %w", core.ErrStoreFailure, res.Err)
	}
	return res.Val.([]core.TimeEntry), nil
}

// Daily builds the report of one day.
func (s *ReportService) Daily(ctx context.Context, user core.UserID, date core.Date) (core.DailyReport, error) {
	entries, err := s.load(ctx, user, core.DateRange{Start: date, End: date})
	if err != nil {
		return core.DailyReport{}, err
	}
	report := core.BuildDailyReport(entries, date)
	s.events.LogReportBuilt(ctx, user, date, date, report.TotalMinutes)
	return report, nil
}

// Range builds the report of [start, end].
func (s *ReportService) Range(ctx context.Context, user core.UserID, start, end core.Date) (core.RangeReport, error) {
	rng, err := core.NewDateRange(start, end)
	if err != nil {
		return core.RangeReport{}, err
	}
	entries, err := s.load(ctx, user, rng)
	if err != nil {
		return core.RangeReport{}, err
	}
	report, err := core.BuildRangeReport(entries, start, end)
	if err != nil {
		return core.RangeReport{}, err
	}
	s.events.LogReportBuilt(ctx, user, start, end, report.TotalMinutes)
	return report, nil
}

// Period builds the range report of a named period ending today.
func (s *ReportService) Period(ctx context.Context, user core.UserID, period string, today core.Date) (core.RangeReport, error) {
	resolver, err := GetPeriodResolver(period)
	if err != nil {
		return core.RangeReport{}, err
	}
	rng := resolver.Range(today)
	return s.Range(ctx, user, rng.Start, rng.End)
}

// EntriesOn lists the entries of one day ordered by time.
func (s *ReportService) EntriesOn(ctx context.Context, user core.UserID, date core.Date) ([]core.TimeEntry, error) {
	entries, err := s.load(ctx, user, core.DateRange{Start: date, End: date})
	if err != nil {
		return nil, err
	}
	return core.EntriesOn(entries, date), nil
}
