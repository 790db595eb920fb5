// Package storage implements the record store ports on SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"drivelogger/internal/core"
	"drivelogger/internal/store"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.RecordStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Create implements store.RecordWriter. The id is assigned here, never by
// the caller.
func (r *SQLiteRepository) Create(ctx context.Context, ownerID string, date core.Date, description string, amount core.Money) (string, error) {
	rec := core.Record{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Date:        date,
		Description: description,
		Amount:      amount,
	}
	if err := rec.Validate(); err != nil {
		return "", err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO records (id, owner_id, record_date, description, amount_cents) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.OwnerID, rec.Date.ISO(), rec.Description, rec.Amount.Cents)
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", rec.ID,
		"owner", rec.OwnerID,
		"date", rec.Date.ISO(),
		"amount_cents", rec.Amount.Cents)

	return rec.ID, nil
}

// Update implements store.RecordUpdater. id and owner_id are immutable.
func (r *SQLiteRepository) Update(ctx context.Context, id string, date core.Date, description string, amount core.Money) error {
	if err := date.Validate(); err != nil {
		return err
	}
	if err := amount.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET record_date = ?, description = ?, amount_cents = ? WHERE id = ?`,
		date.ISO(), description, amount.Cents, id)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete implements store.RecordDeleter.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	slog.InfoContext(ctx, "Record deleted from SQLite", "id", id)
	return nil
}

// List implements store.RecordLister: owner-scoped, newest first.
func (r *SQLiteRepository) List(ctx context.Context, ownerID string) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, record_date, description, amount_cents
		 FROM records WHERE owner_id = ?
		 ORDER BY record_date DESC, created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		var (
			rec     core.Record
			isoDate string
		)
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &isoDate, &rec.Description, &rec.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Date, err = core.ParseDate(isoDate)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", isoDate, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Owners returns the distinct owner ids that currently have records, for
// full re-export sweeps.
func (r *SQLiteRepository) Owners(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT owner_id FROM records ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("query owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owners: %w", err)
	}
	return owners, nil
}

// Get retrieves a single record by id.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Record, error) {
	var (
		rec     core.Record
		isoDate string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, record_date, description, amount_cents FROM records WHERE id = ?`, id).
		Scan(&rec.ID, &rec.OwnerID, &isoDate, &rec.Description, &rec.Amount.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, store.ErrNotFound
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get record: %w", err)
	}
	rec.Date, err = core.ParseDate(isoDate)
	if err != nil {
		return core.Record{}, fmt.Errorf("parse stored date %q: %w", isoDate, err)
	}
	return rec, nil
}
