// Package flow implements the edit/delete reconciliation state machine that
// governs which record is staged for modification or destructive
// confirmation. One Flow is owned per list view, never per row, so stale
// per-row dialog state cannot leak across rows.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"drivelogger/internal/core"
	"drivelogger/internal/store"
)

var (
	ErrNoEditInProgress = errors.New("no edit in progress")
	ErrNoDeletePending  = errors.New("no delete pending")
)

// Draft holds the editable copy of a record's fields as the presentation
// surface supplies them. Mutating a draft never touches the source list.
type Draft struct {
	RecordID    string // the original record id; updates are keyed by it
	Date        string // ISO form value (2006-01-02)
	Description string
	Amount      string // decimal form value
}

// FieldErrors maps field names to validation messages. It satisfies error so
// callers can distinguish validation failures from store failures with
// errors.As.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Flow is the reconciliation state machine. The edit state (one staged
// draft) and the delete state (one staged id) are independent: a pending
// delete does not disturb an edit in progress and vice versa.
//
// Transitions that mutate the store are never optimistic: staged state is
// cleared only after the store acknowledges, so a failed call leaves the
// machine where it was and the caller can retry.
type Flow struct {
	updater  store.RecordUpdater
	deleter  store.RecordDeleter
	minCents int64

	mu            sync.Mutex
	draft         *Draft
	pendingDelete string
}

// New creates a Flow backed by the given store operations. minCents is the
// deployment's minimum accepted amount (0 unless policy says otherwise).
func New(updater store.RecordUpdater, deleter store.RecordDeleter, minCents int64) *Flow {
	return &Flow{updater: updater, deleter: deleter, minCents: minCents}
}

// BeginEdit copies the record's current field values into a fresh draft and
// enters the editing state. Beginning a new edit while one is in progress
// discards the prior unsaved draft.
func (f *Flow) BeginEdit(r core.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = &Draft{
		RecordID:    r.ID,
		Date:        r.Date.ISO(),
		Description: r.Description,
		Amount:      r.Amount.Format(),
	}
}

// Editing reports whether a draft is staged.
func (f *Flow) Editing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft != nil
}

// Draft returns a copy of the staged draft, if any.
func (f *Flow) Draft() (Draft, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft == nil {
		return Draft{}, false
	}
	return *f.draft, true
}

// CancelEdit discards the draft without contacting the store.
func (f *Flow) CancelEdit() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = nil
}

// SubmitEdit validates the submitted field values and, if they pass, issues
// an update keyed by the ORIGINAL record id. The flow returns to idle only
// after the store acknowledges; validation or store failure leaves it in the
// editing state with the failed values staged, and the error says which.
func (f *Flow) SubmitEdit(ctx context.Context, date, description, amount string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.draft == nil {
		return ErrNoEditInProgress
	}

	// Keep whatever the user typed staged, valid or not.
	f.draft.Date = date
	f.draft.Description = description
	f.draft.Amount = amount

	d, cents, ferr := validateDraft(date, amount, f.minCents)
	if ferr != nil {
		return ferr
	}

	id := f.draft.RecordID
	if err := f.updater.Update(ctx, id, d, description, core.Money{Cents: cents}); err != nil {
		slog.ErrorContext(ctx, "Record update rejected by store", "id", id, "error", err)
		return fmt.Errorf("update record %s: %w", id, err)
	}

	f.draft = nil
	return nil
}

// RequestDelete stages id for destructive confirmation. No store operation
// happens until ConfirmDelete; the confirmation step is a mandatory gate.
// A second request replaces the previously staged id.
func (f *Flow) RequestDelete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingDelete = id
}

// PendingDelete returns the staged id, if any.
func (f *Flow) PendingDelete() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pendingDelete, f.pendingDelete != ""
}

// ConfirmDelete issues the delete for the staged id. The staged id is
// cleared only on acknowledgment; on failure it stays staged so the user can
// retry or cancel with the error surfaced.
func (f *Flow) ConfirmDelete(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pendingDelete == "" {
		return ErrNoDeletePending
	}
	id := f.pendingDelete
	if err := f.deleter.Delete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Record delete rejected by store", "id", id, "error", err)
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	f.pendingDelete = ""
	return nil
}

// CancelDelete clears the staged id without contacting the store.
func (f *Flow) CancelDelete() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingDelete = ""
}

// validateDraft checks the submitted field values: the date must be present
// and parseable, the amount a finite decimal of at least minCents.
func validateDraft(date, amount string, minCents int64) (core.Date, int64, FieldErrors) {
	fe := make(FieldErrors)

	d, err := core.ParseDate(date)
	if err != nil {
		fe["date"] = "enter a valid date"
	}

	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		fe["amount"] = "enter a valid amount"
	} else if cents < minCents {
		fe["amount"] = "amount is below the minimum of " + (core.Money{Cents: minCents}).Format()
	}

	if len(fe) > 0 {
		return core.Date{}, 0, fe
	}
	return d, cents, nil
}
