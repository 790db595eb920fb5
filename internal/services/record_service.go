// Package services orchestrates record operations across the store and the
// change-notification channel.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"drivelogger/internal/amqp"
	"drivelogger/internal/core"
	"drivelogger/internal/store"
)

// ChangePublisher is the notification side of the service; satisfied by
// *amqp.Client.
type ChangePublisher interface {
	PublishRecordChange(ctx context.Context, msg *amqp.RecordChangeMessage) error
}

// RecordService wraps a record store and publishes a change notification
// after every acknowledged mutation. Publication is best effort: the store
// is the source of truth and a lost notification never fails the request.
// The service itself satisfies the store ports, so handlers and the
// reconciliation flow can use it transparently.
type RecordService struct {
	store     store.RecordStore
	publisher ChangePublisher
}

var _ store.RecordStore = (*RecordService)(nil)

func NewRecordService(st store.RecordStore, publisher ChangePublisher) *RecordService {
	return &RecordService{store: st, publisher: publisher}
}

func (s *RecordService) Create(ctx context.Context, ownerID string, date core.Date, description string, amount core.Money) (string, error) {
	id, err := s.store.Create(ctx, ownerID, date, description, amount)
	if err != nil {
		return "", fmt.Errorf("create record: %w", err)
	}
	s.publish(ctx, amqp.NewRecordChangeMessage(amqp.OpCreated, id, ownerID, date.Year(), date.Month()))
	return id, nil
}

func (s *RecordService) Update(ctx context.Context, id string, date core.Date, description string, amount core.Money) error {
	// Resolve the owner before mutating so the notification carries it.
	prev, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if err := s.store.Update(ctx, id, date, description, amount); err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	s.publish(ctx, amqp.NewRecordChangeMessage(amqp.OpUpdated, id, prev.OwnerID, date.Year(), date.Month()))
	return nil
}

func (s *RecordService) Delete(ctx context.Context, id string) error {
	prev, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.publish(ctx, amqp.NewRecordChangeMessage(amqp.OpDeleted, id, prev.OwnerID, prev.Date.Year(), prev.Date.Month()))
	return nil
}

func (s *RecordService) Get(ctx context.Context, id string) (core.Record, error) {
	return s.store.Get(ctx, id)
}

func (s *RecordService) List(ctx context.Context, ownerID string) ([]core.Record, error) {
	records, err := s.store.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

func (s *RecordService) publish(ctx context.Context, msg *amqp.RecordChangeMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record change",
			"op", msg.Op, "record_id", msg.RecordID, "error", err)
	}
}
