package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) ProcessPendingEntries(context.Context) error {
	s.calls.Add(1)
	return s.err
}

func TestNewSyncProcessor_DefaultsInterval(t *testing.T) {
	p := NewSyncProcessor(&countingSweeper{}, SyncProcessorConfig{})
	if p.config.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", p.config.PollInterval)
	}
	if p.IsRunning() {
		t.Error("processor should not be running initially")
	}
}

func TestSyncProcessor_Lifecycle(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("transient")}
	p := NewSyncProcessor(sweeper, SyncProcessorConfig{PollInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Start(ctx); !errors.Is(err, ErrProcessorRunning) {
		t.Fatalf("second Start = %v, want ErrProcessorRunning", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for sweeper.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sweeper.calls.Load() < 3 {
		t.Fatalf("expected repeated sweeps, got %d", sweeper.calls.Load())
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if p.IsRunning() {
		t.Error("processor still running after Stop")
	}

	after := sweeper.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if sweeper.calls.Load() != after {
		t.Error("sweeps continued after Stop")
	}
}

func TestSyncProcessor_StopNotRunning(t *testing.T) {
	p := NewSyncProcessor(&countingSweeper{}, DefaultSyncProcessorConfig())
	if err := p.Stop(context.Background()); err != nil {
		t.Errorf("Stop on idle processor: %v", err)
	}
}
