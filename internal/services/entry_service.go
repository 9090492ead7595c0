// Package services wires the write path together: entry mutations go to
// SQLite first, then a change notification is published for the export
// worker. Publishing is fire-and-forget so a dead broker never fails a
// request.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"soyte/internal/amqp"
	"soyte/internal/core"
	"soyte/internal/log"
	"soyte/internal/store"
)

// EntryPublisher is the slice of the AMQP client the service needs.
type EntryPublisher interface {
	PublishEntryChanged(ctx context.Context, userID, month, entryID string, op amqp.Op) error
}

// EntryService implements store.EntryStore on top of a persistent store
// and announces every mutation to the export worker.
type EntryService struct {
	store     store.Store
	publisher EntryPublisher
}

func NewEntryService(s store.Store, publisher EntryPublisher) *EntryService {
	return &EntryService{store: s, publisher: publisher}
}

func (s *EntryService) CreateEntry(ctx context.Context, userID string, month core.Month, e core.Entry) (string, error) {
	id, err := s.store.CreateEntry(ctx, userID, month, e)
	if err != nil {
		return "", err
	}
	s.publish(ctx, userID, month, id, amqp.OpCreated)
	return id, nil
}

func (s *EntryService) UpdateEntry(ctx context.Context, userID string, month core.Month, id string, books int, note string, timestamp int64) error {
	if err := s.store.UpdateEntry(ctx, userID, month, id, books, note, timestamp); err != nil {
		return err
	}
	s.publish(ctx, userID, month, id, amqp.OpUpdated)
	return nil
}

func (s *EntryService) DeleteEntry(ctx context.Context, userID string, month core.Month, id string) error {
	if err := s.store.DeleteEntry(ctx, userID, month, id); err != nil {
		return err
	}
	s.publish(ctx, userID, month, id, amqp.OpDeleted)
	return nil
}

func (s *EntryService) ListEntries(ctx context.Context, userID string, month core.Month) ([]core.Entry, error) {
	return s.store.ListEntries(ctx, userID, month)
}

func (s *EntryService) publish(ctx context.Context, userID string, month core.Month, entryID string, op amqp.Op) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP publisher not available, skipping change message")
		return
	}
	if err := s.publisher.PublishEntryChanged(ctx, userID, month.Key(), entryID, op); err != nil {
		// The entry is already persisted; the worker catches up on the
		// next message for this month.
		slog.ErrorContext(ctx, "Failed to publish entry change message",
			log.FieldEntryID, entryID, log.FieldOperation, op, log.FieldError, err)
	}
}

// Close releases the underlying store and publisher.
func (s *EntryService) Close() error {
	var errs []error

	if closer, ok := s.store.(io.Closer); ok && closer != nil {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if closer, ok := s.publisher.(io.Closer); ok && closer != nil {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close entry service: %v", errs)
	}
	return nil
}
