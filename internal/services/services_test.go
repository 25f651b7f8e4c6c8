package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"timetrack/internal/core"
	applog "timetrack/internal/log"
	"timetrack/internal/store/memory"
)

func testLogger() *applog.Logger {
	return applog.New(applog.Config{Output: &bytes.Buffer{}})
}

type fakeWriter struct {
	ref    string
	err    error
	got    []core.TimeEntry
	closed bool
}

func (w *fakeWriter) AppendEntry(_ context.Context, e core.TimeEntry) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	w.got = append(w.got, e)
	return w.ref, nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakePublisher struct {
	err      error
	entryIDs []int64
}

func (p *fakePublisher) PublishEntrySync(_ context.Context, entryID, _ int64) error {
	p.entryIDs = append(p.entryIDs, entryID)
	return p.err
}

func sampleEntry() core.TimeEntry {
	return core.TimeEntry{UserID: 3, Category: core.Work, DurationMinutes: 30, OccurredAt: time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)}
}

func TestEntryService_CreateEntry(t *testing.T) {
	t.Run("stores then publishes", func(t *testing.T) {
		w := &fakeWriter{ref: "17"}
		p := &fakePublisher{}
		svc := NewEntryService(w, p, testLogger())

		ref, err := svc.CreateEntry(context.Background(), sampleEntry())
		if err != nil || ref != "17" {
			t.Fatalf("CreateEntry = %q, %v", ref, err)
		}
		if len(w.got) != 1 || len(p.entryIDs) != 1 || p.entryIDs[0] != 17 {
			t.Fatalf("unexpected calls: writes=%d publishes=%v", len(w.got), p.entryIDs)
		}
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		p := &fakePublisher{err: errors.New("broker down")}
		svc := NewEntryService(&fakeWriter{ref: "1"}, p, testLogger())
		if _, err := svc.CreateEntry(context.Background(), sampleEntry()); err != nil {
			t.Fatalf("CreateEntry: %v", err)
		}
	})

	t.Run("non numeric refs are not published", func(t *testing.T) {
		p := &fakePublisher{}
		svc := NewEntryService(&fakeWriter{ref: "mem:1"}, p, testLogger())
		if _, err := svc.CreateEntry(context.Background(), sampleEntry()); err != nil {
			t.Fatalf("CreateEntry: %v", err)
		}
		if len(p.entryIDs) != 0 {
			t.Fatalf("unexpected publish %v", p.entryIDs)
		}
	})

	t.Run("store failure is returned", func(t *testing.T) {
		storeErr := errors.New("disk full")
		p := &fakePublisher{}
		svc := NewEntryService(&fakeWriter{err: storeErr}, p, testLogger())
		if _, err := svc.CreateEntry(context.Background(), sampleEntry()); !errors.Is(err, storeErr) {
			t.Fatalf("expected store error, got %v", err)
		}
		if len(p.entryIDs) != 0 {
			t.Fatal("nothing should be published when the store fails")
		}
	})

	t.Run("without publisher", func(t *testing.T) {
		svc := NewEntryService(&fakeWriter{ref: "2"}, nil, nil)
		if _, err := svc.CreateEntry(context.Background(), sampleEntry()); err != nil {
			t.Fatalf("CreateEntry: %v", err)
		}
	})
}

func TestEntryService_Close(t *testing.T) {
	w := &fakeWriter{}
	if err := NewEntryService(w, nil, testLogger()).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !w.closed {
		t.Fatal("expected writer to be closed")
	}
}

type countingLister struct {
	calls   atomic.Int32
	release chan struct{}
	entries []core.TimeEntry
	err     error
}

func (l *countingLister) EntriesForUser(_ context.Context, _ core.UserID, _ core.DateRange) ([]core.TimeEntry, error) {
	l.calls.Add(1)
	if l.release != nil {
		<-l.release
	}
	return l.entries, l.err
}

func TestReportService_Reports(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	add := func(cat core.Category, minutes int, y, m, d int) {
		t.Helper()
		e := core.TimeEntry{UserID: 1, Category: cat, DurationMinutes: minutes, OccurredAt: time.Date(y, time.Month(m), d, 12, 0, 0, 0, time.UTC)}
		if _, err := st.AppendEntry(ctx, e); err != nil {
			t.Fatalf("AppendEntry: %v", err)
		}
	}
	add(core.Work, 120, 2024, 3, 5)
	add(core.Study, 60, 2024, 3, 5)
	add(core.Sleep, 480, 2024, 3, 1)
	add(core.Work, 30, 2024, 2, 20)

	svc := NewReportService(st, testLogger())
	today := core.NewDate(2024, 3, 5)

	daily, err := svc.Daily(ctx, 1, today)
	if err != nil || daily.TotalMinutes != 180 {
		t.Fatalf("Daily = %+v, %v", daily, err)
	}

	week, err := svc.Period(ctx, 1, PeriodWeek, today)
	if err != nil {
		t.Fatalf("Period(week): %v", err)
	}
	if len(week.Days) != 7 || week.TotalMinutes != 660 {
		t.Fatalf("week = %d days, %d minutes", len(week.Days), week.TotalMinutes)
	}

	month, err := svc.Period(ctx, 1, PeriodMonth, today)
	if err != nil || month.TotalMinutes != 660 || len(month.Days) != 5 {
		t.Fatalf("month = %+v, %v", month, err)
	}

	stats, err := svc.Period(ctx, 1, PeriodStats, today)
	if err != nil || stats.TotalMinutes != 690 {
		t.Fatalf("stats = %+v, %v", stats, err)
	}

	if _, err := svc.Period(ctx, 1, "decade", today); err == nil {
		t.Fatal("expected unknown period error")
	}
	if _, err := svc.Range(ctx, 1, today, today.AddDays(-1)); !errors.Is(err, core.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}

	listed, err := svc.EntriesOn(ctx, 1, today)
	if err != nil || len(listed) != 2 {
		t.Fatalf("EntriesOn = %v, %v", listed, err)
	}
}

func TestReportService_StoreFailure(t *testing.T) {
	cause := errors.New("database is locked")
	svc := NewReportService(&countingLister{err: cause}, testLogger())

	_, err := svc.Daily(context.Background(), 1, core.NewDate(2024, 1, 1))
	if !errors.Is(err, core.ErrStoreFailure) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped store failure, got %v", err)
	}
}

func TestReportService_CollapsesConcurrentLoads(t *testing.T) {
	lister := &countingLister{release: make(chan struct{})}
	svc := NewReportService(lister, testLogger())
	day := core.NewDate(2024, 1, 1)

	const callers = 5
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer done.Done()
			started.Done()
			if _, err := svc.Daily(context.Background(), 1, day); err != nil {
				t.Errorf("Daily: %v", err)
			}
		}()
	}
	started.Wait()
	// Let the goroutines reach the shared call before releasing it.
	time.Sleep(100 * time.Millisecond)
	close(lister.release)
	done.Wait()

	if n := lister.calls.Load(); n != 1 {
		t.Fatalf("expected one shared store call, got %d", n)
	}
}

type ctxLister struct {
	called  chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (l *ctxLister) EntriesForUser(ctx context.Context, _ core.UserID, _ core.DateRange) ([]core.TimeEntry, error) {
	if l.calls.Add(1) == 1 {
		close(l.called)
	}
	<-l.release
	return nil, ctx.Err()
}

func TestReportService_SharedLoadSurvivesFirstCallerCancel(t *testing.T) {
	lister := &ctxLister{called: make(chan struct{}), release: make(chan struct{})}
	svc := NewReportService(lister, testLogger())
	day := core.NewDate(2024, 1, 1)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Daily(firstCtx, 1, day)
		firstErr <- err
	}()
	<-lister.called

	secondErr := make(chan error, 1)
	go func() {
		_, err := svc.Daily(context.Background(), 1, day)
		secondErr <- err
	}()
	// Let the second caller join the in-flight load.
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: got %v, want context.Canceled", err)
	}

	close(lister.release)
	if err := <-secondErr; err != nil {
		t.Fatalf("waiting caller inherited the cancellation: %v", err)
	}
	if n := lister.calls.Load(); n != 1 {
		t.Errorf("store calls = %d, want 1", n)
	}
}
