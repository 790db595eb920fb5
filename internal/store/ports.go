// Package store defines the ports every record backend must satisfy.
package store

import (
	"context"
	"errors"

	"drivelogger/internal/core"
)

// ErrNotFound is returned when an operation references an id the backend
// does not hold.
var ErrNotFound = errors.New("record not found")

// Ports for outbound record backends.
type (
	RecordWriter interface {
		// Create persists a new record for ownerID and returns the assigned id.
		Create(ctx context.Context, ownerID string, date core.Date, description string, amount core.Money) (id string, err error)
	}

	RecordUpdater interface {
		// Update mutates date/description/amount in place; id and owner
		// never change.
		Update(ctx context.Context, id string, date core.Date, description string, amount core.Money) error
	}

	RecordDeleter interface {
		Delete(ctx context.Context, id string) error
	}

	RecordGetter interface {
		Get(ctx context.Context, id string) (core.Record, error)
	}

	// RecordLister returns only records belonging to ownerID, newest first.
	RecordLister interface {
		List(ctx context.Context, ownerID string) ([]core.Record, error)
	}

	// RecordStore combines the four operations the application depends on.
	RecordStore interface {
		RecordWriter
		RecordUpdater
		RecordDeleter
		RecordGetter
		RecordLister
	}
)
