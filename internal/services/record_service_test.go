package services

import (
	"context"
	"errors"
	"testing"

	"drivelogger/internal/amqp"
	"drivelogger/internal/core"
	"drivelogger/internal/store/memory"
)

type spyPublisher struct {
	messages []*amqp.RecordChangeMessage
	fail     error
}

func (p *spyPublisher) PublishRecordChange(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	if p.fail != nil {
		return p.fail
	}
	p.messages = append(p.messages, msg)
	return nil
}

func TestCreatePublishesChange(t *testing.T) {
	pub := &spyPublisher{}
	svc := NewRecordService(memory.New(), pub)
	ctx := context.Background()

	id, err := svc.Create(ctx, "user_1", core.NewDate(2024, 3, 15), "Oil change", core.Money{Cents: 4500})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.Op != amqp.OpCreated || msg.RecordID != id || msg.OwnerID != "user_1" || msg.Year != 2024 || msg.Month != 3 {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestUpdatePublishesOwnerAndNewMonth(t *testing.T) {
	pub := &spyPublisher{}
	svc := NewRecordService(memory.New(), pub)
	ctx := context.Background()

	id, _ := svc.Create(ctx, "user_1", core.NewDate(2024, 3, 15), "Oil change", core.Money{Cents: 4500})
	if err := svc.Update(ctx, id, core.NewDate(2024, 4, 2), "Oil change", core.Money{Cents: 4500}); err != nil {
		t.Fatalf("update: %v", err)
	}

	msg := pub.messages[len(pub.messages)-1]
	if msg.Op != amqp.OpUpdated || msg.OwnerID != "user_1" || msg.Month != 4 {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestDeletePublishesPriorCoordinates(t *testing.T) {
	pub := &spyPublisher{}
	svc := NewRecordService(memory.New(), pub)
	ctx := context.Background()

	id, _ := svc.Create(ctx, "user_1", core.NewDate(2024, 3, 15), "Oil change", core.Money{Cents: 4500})
	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	msg := pub.messages[len(pub.messages)-1]
	if msg.Op != amqp.OpDeleted || msg.OwnerID != "user_1" || msg.Year != 2024 || msg.Month != 3 {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestPublisherFailureDoesNotFailRequest(t *testing.T) {
	pub := &spyPublisher{fail: errors.New("broker down")}
	svc := NewRecordService(memory.New(), pub)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "user_1", core.NewDate(2024, 3, 15), "Oil change", core.Money{Cents: 4500}); err != nil {
		t.Fatalf("create must not fail on publish error: %v", err)
	}
	records, _ := svc.List(ctx, "user_1")
	if len(records) != 1 {
		t.Fatalf("record must be persisted despite publish failure")
	}
}

func TestNilPublisherIsSkipped(t *testing.T) {
	svc := NewRecordService(memory.New(), nil)
	if _, err := svc.Create(context.Background(), "user_1", core.NewDate(2024, 3, 15), "x", core.Money{Cents: 1}); err != nil {
		t.Fatalf("create with nil publisher: %v", err)
	}
}

func TestUpdateUnknownIDDoesNotPublish(t *testing.T) {
	pub := &spyPublisher{}
	svc := NewRecordService(memory.New(), pub)

	if err := svc.Update(context.Background(), "missing", core.NewDate(2024, 4, 2), "x", core.Money{Cents: 1}); err == nil {
		t.Fatalf("expected error for unknown id")
	}
	if len(pub.messages) != 0 {
		t.Fatalf("no message expected for failed mutation")
	}
}
