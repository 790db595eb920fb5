package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"drivelogger/internal/auth"
	"drivelogger/internal/core"
)

type recordView struct {
	ID          string
	Date        string // short form, e.g. 3/15/2024
	ISODate     string
	Description string
	Amount      string
}

type bucketView struct {
	Label   string
	Year    int
	Month   int
	Records []recordView
	Total   string
}

func viewRecord(r core.Record) recordView {
	return recordView{
		ID:          r.ID,
		Date:        core.ShortDate(r.Date),
		ISODate:     r.Date.ISO(),
		Description: r.Description,
		Amount:      r.Amount.Format(),
	}
}

func viewBuckets(buckets []core.Bucket) []bucketView {
	views := make([]bucketView, 0, len(buckets))
	for _, b := range buckets {
		bv := bucketView{
			Label: b.Label,
			Year:  b.Year,
			Month: int(b.Month),
			Total: b.Total.Format(),
		}
		for _, r := range b.Records {
			bv.Records = append(bv.Records, viewRecord(r))
		}
		views = append(views, bv)
	}
	return views
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// The "/" pattern is a catch-all; anything but the root is unknown.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	subject, _ := auth.Subject(r.Context())
	data := struct {
		Subject   string
		Today     string
		MinAmount string
	}{
		Subject:   subject,
		Today:     time.Now().UTC().Format("2006-01-02"),
		MinAmount: (core.Money{Cents: s.minCents}).Format(),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleRecordList renders the grouped record list partial. Months appear
// newest first; within a month, newest records first.
func (s *Server) handleRecordList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	subject, ok := auth.Subject(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	records, err := s.records.List(r.Context(), subject)
	if err != nil {
		slog.ErrorContext(r.Context(), "Record list error", "error", err, "owner", subject)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<section id="record-list"><div class="error">Could not load records</div></section>`))
		return
	}

	data := struct {
		Buckets []bucketView
		Empty   bool
	}{
		Buckets: viewBuckets(core.GroupByMonth(records)),
	}
	data.Empty = len(data.Buckets) == 0

	if err := s.templates.ExecuteTemplate(w, "record_list.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "record_list.html")
		_, _ = w.Write([]byte(`<section id="record-list"><div class="error">Could not render records</div></section>`))
	}
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	subject, ok := auth.Subject(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Malformed request</div>`))
		return
	}

	dateStr := strings.TrimSpace(r.Form.Get("date"))
	desc := sanitizeInput(r.Form.Get("description"))
	amountStr := strings.TrimSpace(r.Form.Get("amount"))

	date, err := core.ParseDate(dateStr)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Enter a valid date</div>`))
		return
	}
	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Enter a valid amount</div>`))
		return
	}
	if cents < s.minCents {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Amount is below the minimum of ` +
			template.HTMLEscapeString((core.Money{Cents: s.minCents}).Format()) + `</div>`))
		return
	}

	id, err := s.records.Create(r.Context(), subject, date, desc, core.Money{Cents: cents})
	if err != nil {
		slog.ErrorContext(r.Context(), "Record create error", "error", err, "owner", subject, "amount", cents)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Could not save the record</div>`))
		return
	}

	w.Header().Set("HX-Trigger", `{"record:created": {"year": `+strconv.Itoa(date.Year())+`, "month": `+strconv.Itoa(date.Month())+`}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Record saved (#` + template.HTMLEscapeString(id) + `): ` +
		template.HTMLEscapeString(desc) +
		` &mdash; ` + template.HTMLEscapeString((core.Money{Cents: cents}).Format()) + `</div>`))
}

// handleExportCSV streams one month bucket as a CSV download. The bucket is
// rebuilt from the owner's records at request time so the export always
// matches what the list shows.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	subject, ok := auth.Subject(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	year, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("year")))
	if err != nil {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("month")))
	if err != nil || month < 1 || month > 12 {
		http.Error(w, "invalid month", http.StatusBadRequest)
		return
	}

	records, err := s.records.List(r.Context(), subject)
	if err != nil {
		slog.ErrorContext(r.Context(), "Record list error", "error", err, "owner", subject)
		http.Error(w, "could not load records", http.StatusInternalServerError)
		return
	}

	bucket, found := core.FindBucket(core.GroupByMonth(records), year, time.Month(month))
	if !found {
		http.Error(w, "no records for that month", http.StatusNotFound)
		return
	}

	filename := strings.ToLower(time.Month(month).String()) + "-" + strconv.Itoa(year) + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := core.WriteBucketCSV(w, bucket); err != nil {
		slog.ErrorContext(r.Context(), "CSV export error", "error", err, "owner", subject, "year", year, "month", month)
	}
}

// sanitizeInput removes potentially dangerous characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1 // remove character
		}
		return r
	}, s)
	return result
}
