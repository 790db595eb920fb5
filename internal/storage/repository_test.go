package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"drivelogger/internal/core"
	"drivelogger/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateListRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, "user_1", core.NewDate(2024, 3, 15), "Oil change", core.Money{Cents: 4500})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	records, err := repo.List(ctx, "user_1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.ID != id || r.Date.ISO() != "2024-03-15" || r.Description != "Oil change" || r.Amount.Cents != 4500 {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestListOwnerScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Create(ctx, "user_1", core.NewDate(2024, 3, 15), "mine", core.Money{Cents: 100}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, "user_2", core.NewDate(2024, 3, 15), "theirs", core.Money{Cents: 100}); err != nil {
		t.Fatalf("create: %v", err)
	}

	records, err := repo.List(ctx, "user_1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].Description != "mine" {
		t.Fatalf("owner scoping violated: %+v", records)
	}
}

func TestUpdateMovesRecordAcrossMonths(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, _ := repo.Create(ctx, "user_1", core.NewDate(2024, 3, 15), "Oil change", core.Money{Cents: 4500})
	if err := repo.Update(ctx, id, core.NewDate(2024, 4, 2), "Oil change", core.Money{Cents: 4500}); err != nil {
		t.Fatalf("update: %v", err)
	}

	records, _ := repo.List(ctx, "user_1")
	buckets := core.GroupByMonth(records)
	if len(buckets) != 1 || buckets[0].Label != "April 2024" {
		t.Fatalf("expected single April 2024 bucket, got %+v", buckets)
	}
	if buckets[0].Total.Cents != 4500 {
		t.Fatalf("expected total 4500, got %d", buckets[0].Total.Cents)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.Update(context.Background(), "missing", core.NewDate(2024, 4, 2), "x", core.Money{Cents: 1})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, _ := repo.Create(ctx, "user_1", core.NewDate(2024, 3, 15), "Oil change", core.Money{Cents: 4500})
	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	records, _ := repo.List(ctx, "user_1")
	if len(records) != 0 {
		t.Fatalf("expected no records after delete, got %d", len(records))
	}
	if err := repo.Delete(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, _ := repo.Create(ctx, "user_1", core.NewDate(2024, 3, 15), "Oil change", core.Money{Cents: 4500})
	rec, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.OwnerID != "user_1" || rec.Description != "Oil change" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
