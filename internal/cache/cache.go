package cache

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Cache defines a generic keyed cache.
type Cache[K comparable, T any] interface {
	Get(key K) (T, bool)
	Set(key K, data T)
	Delete(key K)
	Size() int
}

// Cleaner is anything holding state that expires: caches, conversation sessions.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically sweeps every registered Cleaner.
type Manager struct {
	cleaners    []Cleaner
	logger      *slog.Logger
	started     atomic.Bool
	stopOnce    sync.Once
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:      logger,
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cleaner. Call before StartCleanup.
func (m *Manager) Register(c Cleaner) {
	m.cleaners = append(m.cleaners, c)
}

// StartCleanup begins periodic cleanup of all registered cleaners.
func (m *Manager) StartCleanup(interval time.Duration) {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	go m.cleanup(interval)
}

// Sweep runs one cleanup pass and returns the number of removed items.
func (m *Manager) Sweep() int {
	total := 0
	for _, c := range m.cleaners {
		total += c.CleanExpired()
	}
	return total
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Debug("Expired items removed", "count", n)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop ends the cleanup goroutine started by StartCleanup and waits for it.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCleanup)
		if m.started.Load() {
			<-m.cleanupDone
		}
	})
}
