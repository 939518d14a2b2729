// Package repo contains all database access logic for the Schengen planner.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mkarlsen/schengen-planner/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// List returns all trips ordered by start_date ascending. The engine
	// always operates on the complete set, so there is no paged variant.
	List(ctx context.Context) ([]domain.Trip, error)

	// Update overwrites the mutable fields of an existing trip and returns
	// the updated record. Returns domain.ErrNotFound if it does not exist.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// UpdateDates rewrites only the date placement of a trip — the apply
	// path for an accepted optimizer proposal. It records the pre-move dates
	// and sets the optimized flag; all other fields are left alone.
	UpdateDates(ctx context.Context, id uuid.UUID, start, end time.Time, originalStart, originalEnd *time.Time) (domain.Trip, error)

	// Delete removes a trip by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, start_date, end_date, countries, purpose, notes,
	optimized, original_start_date, original_end_date, created_at, updated_at`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (start_date, end_date, countries, purpose, notes)
		VALUES (@start_date, @end_date, @countries, @purpose, @notes)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"start_date": trip.StartDate,
		"end_date":   trip.EndDate,
		"countries":  trip.Countries,
		"purpose":    trip.Purpose,
		"notes":      trip.Notes,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns all trips ordered by start_date ascending (earliest first).
func (r *pgTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips ORDER BY start_date ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.List: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: rows: %w", err)
	}

	return trips, nil
}

// Update overwrites the mutable fields of a trip and returns the updated record.
// A manual edit clears the optimizer bookkeeping: the caller is taking over
// the placement, so the pre-optimization dates no longer describe anything.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET start_date          = @start_date,
		    end_date            = @end_date,
		    countries           = @countries,
		    purpose             = @purpose,
		    notes               = @notes,
		    optimized           = false,
		    original_start_date = NULL,
		    original_end_date   = NULL,
		    updated_at          = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":         trip.ID,
		"start_date": trip.StartDate,
		"end_date":   trip.EndDate,
		"countries":  trip.Countries,
		"purpose":    trip.Purpose,
		"notes":      trip.Notes,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// UpdateDates rewrites a trip's placement after an optimizer proposal is
// accepted, leaving every non-date field untouched.
func (r *pgTripRepo) UpdateDates(ctx context.Context, id uuid.UUID, start, end time.Time, originalStart, originalEnd *time.Time) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET start_date          = @start_date,
		    end_date            = @end_date,
		    optimized           = true,
		    original_start_date = @original_start_date,
		    original_end_date   = @original_end_date,
		    updated_at          = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":                  id,
		"start_date":          start,
		"end_date":            end,
		"original_start_date": originalStart, // nil becomes NULL
		"original_end_date":   originalEnd,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.UpdateDates: %w", err)
	}
	return result, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID, date, and nullable original-date conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		startDate pgtype.Date
		endDate   pgtype.Date
		origStart pgtype.Date
		origEnd   pgtype.Date
	)

	err := s.Scan(&id, &startDate, &endDate, &t.Countries, &t.Purpose, &t.Notes,
		&t.Optimized, &origStart, &origEnd, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.StartDate = startDate.Time
	t.EndDate = endDate.Time
	if origStart.Valid {
		d := origStart.Time
		t.OriginalStartDate = &d
	}
	if origEnd.Valid {
		d := origEnd.Time
		t.OriginalEndDate = &d
	}

	return t, nil
}
