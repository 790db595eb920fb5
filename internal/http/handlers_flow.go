package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"drivelogger/internal/auth"
	"drivelogger/internal/flow"
	"drivelogger/internal/store"
)

// editDialogData feeds the edit dialog template: the staged draft plus any
// per-field validation messages and a store-level error line.
type editDialogData struct {
	Draft      flow.Draft
	Errors     flow.FieldErrors
	StoreError string
}

type confirmDeleteData struct {
	Record recordView
	Error  string
}

// handleEditDialog stages an edit for one of the owner's records and returns
// the dialog with the record's current values copied into the form.
func (s *Server) handleEditDialog(w http.ResponseWriter, r *http.Request) {
	subject, fl, id, ok := s.flowRequest(w, r)
	if !ok {
		return
	}

	record, err := s.records.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "record not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "Record lookup error", "error", err, "record_id", id)
		http.Error(w, "could not load record", http.StatusInternalServerError)
		return
	}
	// Records of other owners are indistinguishable from absent ones.
	if record.OwnerID != subject {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}

	fl.BeginEdit(record)
	draft, _ := fl.Draft()
	s.renderDialog(w, r, "edit_dialog.html", http.StatusOK, editDialogData{Draft: draft})
}

// handleUpdateRecord submits the staged edit. Validation failures return the
// dialog with the typed values and field messages; store failures keep the
// edit staged so the user can retry.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	_, fl, _, ok := s.flowRequest(w, r)
	if !ok {
		return
	}

	date := strings.TrimSpace(r.Form.Get("date"))
	desc := sanitizeInput(r.Form.Get("description"))
	amount := strings.TrimSpace(r.Form.Get("amount"))

	err := fl.SubmitEdit(r.Context(), date, desc, amount)
	if err == nil {
		w.Header().Set("HX-Trigger", `{"record:updated": {}}`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div id="dialog"></div>`))
		return
	}

	if errors.Is(err, flow.ErrNoEditInProgress) {
		http.Error(w, "no edit in progress", http.StatusConflict)
		return
	}

	draft, _ := fl.Draft()
	var fieldErrs flow.FieldErrors
	if errors.As(err, &fieldErrs) {
		s.renderDialog(w, r, "edit_dialog.html", http.StatusUnprocessableEntity, editDialogData{Draft: draft, Errors: fieldErrs})
		return
	}

	slog.ErrorContext(r.Context(), "Record update error", "error", err, "record_id", draft.RecordID)
	s.renderDialog(w, r, "edit_dialog.html", http.StatusInternalServerError, editDialogData{
		Draft:      draft,
		StoreError: "Could not save your changes. Try again or cancel.",
	})
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	_, fl, _, ok := s.flowRequest(w, r)
	if !ok {
		return
	}
	fl.CancelEdit()
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div id="dialog"></div>`))
}

// handleDeleteRequest stages a delete and returns the confirmation gate.
// Nothing is removed until the user confirms.
func (s *Server) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	subject, fl, id, ok := s.flowRequest(w, r)
	if !ok {
		return
	}

	record, err := s.records.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "record not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "Record lookup error", "error", err, "record_id", id)
		http.Error(w, "could not load record", http.StatusInternalServerError)
		return
	}
	if record.OwnerID != subject {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}

	fl.RequestDelete(record.ID)
	s.renderDialog(w, r, "confirm_delete.html", http.StatusOK, confirmDeleteData{Record: viewRecord(record)})
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	subject, fl, _, ok := s.flowRequest(w, r)
	if !ok {
		return
	}

	err := fl.ConfirmDelete(r.Context())
	if err == nil {
		w.Header().Set("HX-Trigger", `{"record:deleted": {}}`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div id="dialog"></div>`))
		return
	}

	if errors.Is(err, flow.ErrNoDeletePending) {
		http.Error(w, "no delete pending", http.StatusConflict)
		return
	}

	// The id stays staged, so the gate is re-rendered with the error and the
	// user can retry or cancel.
	id, _ := fl.PendingDelete()
	slog.ErrorContext(r.Context(), "Record delete error", "error", err, "record_id", id)
	data := confirmDeleteData{Error: "Could not delete the record. Try again or cancel."}
	if record, gerr := s.records.Get(r.Context(), id); gerr == nil && record.OwnerID == subject {
		data.Record = viewRecord(record)
	} else {
		data.Record = recordView{ID: id}
	}
	s.renderDialog(w, r, "confirm_delete.html", http.StatusInternalServerError, data)
}

func (s *Server) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	_, fl, _, ok := s.flowRequest(w, r)
	if !ok {
		return
	}
	fl.CancelDelete()
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div id="dialog"></div>`))
}

// flowRequest handles the boilerplate shared by the dialog endpoints: POST
// only, parsed form, authenticated subject, and the owner's flow. The id
// return carries the submitted record id, which not every endpoint uses.
func (s *Server) flowRequest(w http.ResponseWriter, r *http.Request) (subject string, fl *flow.Flow, id string, ok bool) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return "", nil, "", false
	}
	subject, hasSubject := auth.Subject(r.Context())
	if !hasSubject {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return "", nil, "", false
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		http.Error(w, "malformed request", http.StatusBadRequest)
		return "", nil, "", false
	}
	return subject, s.flows.get(subject), strings.TrimSpace(r.Form.Get("id")), true
}

func (s *Server) renderDialog(w http.ResponseWriter, r *http.Request, name string, status int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		_, _ = w.Write([]byte(`<div id="dialog"><div class="error">Templates not loaded</div></div>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", name)
		_, _ = w.Write([]byte(`<div id="dialog"><div class="error">Could not render dialog</div></div>`))
	}
}
