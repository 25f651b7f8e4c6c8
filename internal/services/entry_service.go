package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"timetrack/internal/core"
	applog "timetrack/internal/log"
	"timetrack/internal/store"
)

// SyncPublisher announces stored entries to the sync worker.
type SyncPublisher interface {
	PublishEntrySync(ctx context.Context, entryID, userID int64) error
}

// EntryService saves entries locally and then queues them for mirroring.
type EntryService struct {
	writer    store.EntryWriter
	publisher SyncPublisher
	logger    *applog.Logger
	events    *applog.StructuredLogger
}

// NewEntryService wires a writer with an optional publisher; pass a nil interface,
// not a nil pointer, to disable publishing.
func NewEntryService(writer store.EntryWriter, publisher SyncPublisher, logger *applog.Logger) *EntryService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentEntry)
	return &EntryService{
		writer:    writer,
		publisher: publisher,
		logger:    logger,
		events:    applog.NewStructuredLogger(logger),
	}
}

// CreateEntry stores e and publishes a sync message. Publishing is best effort:
// once the store accepted the entry the call succeeds.
func (s *EntryService) CreateEntry(ctx context.Context, e core.TimeEntry) (string, error) {
	ref, err := s.writer.AppendEntry(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save entry: %w", err)
	}
	s.events.LogEntryCreated(ctx, e, ref)

	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not available, skipping sync message", "ref", ref)
		return ref, nil
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		s.logger.WarnContext(ctx, "Entry reference is not numeric, skipping sync message", "ref", ref)
		return ref, nil
	}

	if err := s.publisher.PublishEntrySync(ctx, id, int64(e.UserID)); err != nil {
		s.events.LogError(ctx, "Failed to publish sync message", err, applog.ComponentAMQP, applog.OpPublish,
			applog.NewFields().WithEntry(e))
	}
	return ref, nil
}

// Close closes the writer and publisher when they hold resources.
func (s *EntryService) Close() error {
	var errs []error
	if c, ok := s.writer.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close entry service: %w", errors.Join(errs...))
	}
	return nil
}
