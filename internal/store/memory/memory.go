// Package memory implements the record store ports on an in-process map.
// It is the default backend for local development and the test double for
// everything that talks to a store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"drivelogger/internal/core"
	"drivelogger/internal/store"
)

type entry struct {
	record core.Record
	seq    int64 // creation order, breaks ties between same-day records
}

type Store struct {
	mu      sync.Mutex
	records map[string]entry
	nextSeq int64
}

func New() *Store {
	return &Store{records: make(map[string]entry)}
}

var _ store.RecordStore = (*Store)(nil)

func (s *Store) Create(ctx context.Context, ownerID string, date core.Date, description string, amount core.Money) (string, error) {
	r := core.Record{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Date:        date,
		Description: description,
		Amount:      amount,
	}
	if err := r.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	s.records[r.ID] = entry{record: r, seq: s.nextSeq}
	return r.ID, nil
}

func (s *Store) Update(ctx context.Context, id string, date core.Date, description string, amount core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.records[id]
	if !ok {
		return store.ErrNotFound
	}
	e.record.Date = date
	e.record.Description = description
	e.record.Amount = amount
	if err := e.record.Validate(); err != nil {
		return err
	}
	s.records[id] = e
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.records[id]
	if !ok {
		return core.Record{}, store.ErrNotFound
	}
	return e.record, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *Store) List(ctx context.Context, ownerID string) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []entry
	for _, e := range s.records {
		if e.record.OwnerID == ownerID {
			entries = append(entries, e)
		}
	}
	// Newest first; creation order breaks same-day ties.
	sort.Slice(entries, func(i, j int) bool {
		di, dj := entries[i].record.Date.Time, entries[j].record.Date.Time
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return entries[i].seq > entries[j].seq
	})

	out := make([]core.Record, len(entries))
	for i, e := range entries {
		out[i] = e.record
	}
	return out, nil
}

// Owners returns the distinct owner ids that currently have records.
func (s *Store) Owners(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	var owners []string
	for _, e := range s.records {
		if _, ok := seen[e.record.OwnerID]; !ok {
			seen[e.record.OwnerID] = struct{}{}
			owners = append(owners, e.record.OwnerID)
		}
	}
	sort.Strings(owners)
	return owners, nil
}
