package backend

import (
	"context"

	"timetrack/internal/services"
	"timetrack/internal/store"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult bundles the store, the entry service writing into it and
// lifecycle hooks.
type BackendResult struct {
	Store   store.Store
	Entries *services.EntryService
	// Ready reports whether the backend can serve requests.
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Memory specific; empty means start empty
	SeedFile string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
