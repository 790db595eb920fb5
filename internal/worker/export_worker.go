// Package worker reacts to record change notifications by re-exporting the
// affected owner's month sections to the configured spreadsheet.
package worker

import (
	"context"
	"fmt"

	"drivelogger/internal/amqp"
	"drivelogger/internal/core"
	applog "drivelogger/internal/log"
	"drivelogger/internal/store"
)

// MonthExporter writes an owner's grouped records to an external sink.
type MonthExporter interface {
	ExportOwner(ctx context.Context, ownerID string, buckets []core.Bucket) error
}

// OwnerLister enumerates owners with records, for periodic full sweeps.
type OwnerLister interface {
	Owners(ctx context.Context) ([]string, error)
}

type ExportWorker struct {
	lister   store.RecordLister
	exporter MonthExporter
	logger   *applog.Logger
}

func NewExportWorker(lister store.RecordLister, exporter MonthExporter, logger *applog.Logger) *ExportWorker {
	return &ExportWorker{
		lister:   lister,
		exporter: exporter,
		logger:   logger,
	}
}

// HandleChange rebuilds the owner's full projection after any mutation.
// Exporting every month rather than just the changed one keeps the sink
// consistent when a record moved between months.
func (w *ExportWorker) HandleChange(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	if msg.OwnerID == "" {
		return fmt.Errorf("change message %s/%s has no owner", msg.Op, msg.RecordID)
	}

	records, err := w.lister.List(ctx, msg.OwnerID)
	if err != nil {
		return fmt.Errorf("list records for %s: %w", msg.OwnerID, err)
	}

	buckets := core.GroupByMonth(records)
	if err := w.exporter.ExportOwner(ctx, msg.OwnerID, buckets); err != nil {
		return fmt.Errorf("export owner %s: %w", msg.OwnerID, err)
	}

	w.logger.InfoContext(ctx, "Export completed",
		applog.FieldOperation, msg.Op,
		applog.FieldRecordID, msg.RecordID,
		applog.FieldOwner, msg.OwnerID,
		"months", len(buckets))
	return nil
}

// ExportAllOwners sweeps every owner, catching up on any notification the
// worker missed while it was down. Failures are collected per owner so one
// bad export does not starve the rest.
func (w *ExportWorker) ExportAllOwners(ctx context.Context, owners OwnerLister) error {
	ids, err := owners.Owners(ctx)
	if err != nil {
		return fmt.Errorf("list owners: %w", err)
	}

	var failed int
	for _, ownerID := range ids {
		records, err := w.lister.List(ctx, ownerID)
		if err != nil {
			w.logger.ErrorContext(ctx, "Sweep list failed", applog.FieldOwner, ownerID, applog.FieldError, err)
			failed++
			continue
		}
		if err := w.exporter.ExportOwner(ctx, ownerID, core.GroupByMonth(records)); err != nil {
			w.logger.ErrorContext(ctx, "Sweep export failed", applog.FieldOwner, ownerID, applog.FieldError, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("sweep: %d of %d owners failed", failed, len(ids))
	}
	w.logger.InfoContext(ctx, "Sweep completed", "owners", len(ids))
	return nil
}
