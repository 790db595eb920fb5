package memory

import (
	"context"
	"errors"
	"testing"

	"drivelogger/internal/core"
	"drivelogger/internal/store"
)

func TestCreateAndList(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.Create(ctx, "user_1", core.NewDate(2024, 3, 15), "Oil change", core.Money{Cents: 4500})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatalf("expected non-empty id")
	}

	records, err := s.List(ctx, "user_1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.ID != id || r.OwnerID != "user_1" || r.Description != "Oil change" || r.Amount.Cents != 4500 {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestListIsOwnerScoped(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Create(ctx, "user_1", core.NewDate(2024, 3, 15), "mine", core.Money{Cents: 100}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, "user_2", core.NewDate(2024, 3, 16), "theirs", core.Money{Cents: 200}); err != nil {
		t.Fatalf("create: %v", err)
	}

	records, err := s.List(ctx, "user_1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].Description != "mine" {
		t.Fatalf("owner scoping violated: %+v", records)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, d := range []struct {
		day  int
		desc string
	}{{1, "old"}, {20, "new"}, {10, "mid"}} {
		if _, err := s.Create(ctx, "user_1", core.NewDate(2024, 3, d.day), d.desc, core.Money{Cents: 100}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	records, err := s.List(ctx, "user_1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"new", "mid", "old"}
	for i, w := range want {
		if records[i].Description != w {
			t.Fatalf("position %d expected %q, got %q", i, w, records[i].Description)
		}
	}
}

func TestUpdate(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, _ := s.Create(ctx, "user_1", core.NewDate(2024, 3, 15), "a", core.Money{Cents: 100})
	if err := s.Update(ctx, id, core.NewDate(2024, 4, 2), "b", core.Money{Cents: 250}); err != nil {
		t.Fatalf("update: %v", err)
	}

	records, _ := s.List(ctx, "user_1")
	r := records[0]
	if r.Date.Month() != 4 || r.Description != "b" || r.Amount.Cents != 250 {
		t.Fatalf("update not applied: %+v", r)
	}
	if r.ID != id || r.OwnerID != "user_1" {
		t.Fatalf("id/owner must not change: %+v", r)
	}

	if err := s.Update(ctx, "missing", core.NewDate(2024, 4, 2), "b", core.Money{Cents: 1}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, _ := s.Create(ctx, "user_1", core.NewDate(2024, 3, 15), "a", core.Money{Cents: 100})
	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	records, _ := s.List(ctx, "user_1")
	if len(records) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(records))
	}
	if err := s.Delete(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
