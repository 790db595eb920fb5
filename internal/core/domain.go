package core

import (
	"errors"
	"time"
)

type (
	// Date is a calendar date at day granularity. Time-of-day components are
	// always zero; two records on the same day compare equal regardless of
	// how their dates were produced.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Record is a single billable job or drive entry. ID is assigned by the
	// store at creation and immutable afterwards; OwnerID comes from the
	// authenticated identity and is never client-editable.
	Record struct {
		ID          string
		OwnerID     string
		Date        Date
		Description string
		Amount      Money
	}
)

var (
	ErrMissingDate    = errors.New("date is required")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrMissingOwner   = errors.New("missing owner")
)

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO form value (2006-01-02) into a Date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, ErrMissingDate
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t.UTC()}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month (1-12)
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// ISO renders the form/storage representation (2006-01-02).
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func (r Record) Validate() error {
	if r.OwnerID == "" {
		return ErrMissingOwner
	}
	if err := r.Date.Validate(); err != nil {
		return err
	}
	// Description is optional and defaults to the empty string.
	return r.Amount.Validate()
}
