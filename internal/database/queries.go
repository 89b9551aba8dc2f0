package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// Helper Functions
// =============================================================================

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Tries multiple formats and returns the zero time if parsing fails.
func parseTimestamp(ns sql.NullString) time.Time {
	if !ns.Valid || ns.String == "" {
		return time.Time{}
	}

	// Try RFC3339 format first (with timezone)
	t, err := time.Parse(time.RFC3339, ns.String)
	if err == nil {
		return t
	}

	// Try SQLite datetime format (no timezone)
	t, err = time.Parse("2006-01-02 15:04:05", ns.String)
	if err == nil {
		return t
	}

	return time.Time{}
}

// scanFestival reads one festivals row. The column order is fixed by
// festivalColumns.
func scanFestival(row interface{ Scan(...any) error }) (*Festival, error) {
	var f Festival
	var isHoliday int
	var notes, createdAt, updatedAt sql.NullString

	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Calendar,
		&f.Month,
		&f.Day,
		&isHoliday,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	f.IsPublicHoliday = isHoliday != 0
	if notes.Valid {
		f.Notes = &notes.String
	}
	f.CreatedAt = parseTimestamp(createdAt)
	f.UpdatedAt = parseTimestamp(updatedAt)

	return &f, nil
}

const festivalColumns = `id, name, calendar, month, day, is_public_holiday, notes, created_at, updated_at`

// =============================================================================
// Festival Queries
// =============================================================================

const upsertFestivalSQL = `
	INSERT INTO festivals (
		name, calendar, month, day, is_public_holiday, notes, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
	ON CONFLICT(name) DO UPDATE SET
		calendar = excluded.calendar,
		month = excluded.month,
		day = excluded.day,
		is_public_holiday = excluded.is_public_holiday,
		notes = excluded.notes,
		updated_at = datetime('now')
`

// execer covers DB and Tx so the write queries run in either.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertFestival(ctx context.Context, ex execer, f *Festival) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("validate festival %q: %w", f.Name, err)
	}

	_, err := ex.ExecContext(ctx, upsertFestivalSQL,
		f.Name,
		f.Calendar,
		f.Month,
		f.Day,
		f.IsPublicHoliday,
		f.Notes,
	)
	if err != nil {
		return fmt.Errorf("upsert festival %q: %w", f.Name, err)
	}

	return nil
}

// UpsertFestival inserts a festival or updates the existing one with the
// same name. Entries match on name, so re-running an import catalog
// updates rows instead of duplicating them.
func (db *DB) UpsertFestival(ctx context.Context, f *Festival) error {
	return upsertFestival(ctx, db, f)
}

// UpsertFestival is the transaction-scoped variant, used by the import
// tool to load a whole catalog atomically.
func (tx *Tx) UpsertFestival(ctx context.Context, f *Festival) error {
	return upsertFestival(ctx, tx, f)
}

// GetFestival retrieves one festival by ID.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) GetFestival(ctx context.Context, id int64) (*Festival, error) {
	query := `SELECT ` + festivalColumns + ` FROM festivals WHERE id = ?`

	f, err := scanFestival(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query festival %d: %w", id, err)
	}

	return f, nil
}

// GetFestivalByName retrieves one festival by its unique name.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) GetFestivalByName(ctx context.Context, name string) (*Festival, error) {
	query := `SELECT ` + festivalColumns + ` FROM festivals WHERE name = ?`

	f, err := scanFestival(db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query festival %q: %w", name, err)
	}

	return f, nil
}

// ListFestivals returns the whole catalog ordered by calendar position.
// Returns an empty slice when the catalog is empty.
func (db *DB) ListFestivals(ctx context.Context) ([]Festival, error) {
	query := `
		SELECT ` + festivalColumns + `
		FROM festivals
		ORDER BY calendar, month, day, name
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query festivals: %w", err)
	}
	defer rows.Close()

	var festivals []Festival
	for rows.Next() {
		f, err := scanFestival(rows)
		if err != nil {
			return nil, fmt.Errorf("scan festival row: %w", err)
		}
		festivals = append(festivals, *f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate festival rows: %w", err)
	}

	return festivals, nil
}

// ListFestivalsByCalendar returns the catalog entries fixed in one
// calendar, ordered by month and day.
func (db *DB) ListFestivalsByCalendar(ctx context.Context, cal Calendar) ([]Festival, error) {
	query := `
		SELECT ` + festivalColumns + `
		FROM festivals
		WHERE calendar = ?
		ORDER BY month, day, name
	`

	rows, err := db.QueryContext(ctx, query, cal)
	if err != nil {
		return nil, fmt.Errorf("query %s festivals: %w", cal, err)
	}
	defer rows.Close()

	var festivals []Festival
	for rows.Next() {
		f, err := scanFestival(rows)
		if err != nil {
			return nil, fmt.Errorf("scan festival row: %w", err)
		}
		festivals = append(festivals, *f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate festival rows: %w", err)
	}

	return festivals, nil
}

// DeleteFestival removes a festival by ID.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) DeleteFestival(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM festivals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete festival %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// GetFestivalStats returns catalog counts.
//
// Useful for:
// - Health check endpoint
// - Verifying an import
func (db *DB) GetFestivalStats(ctx context.Context) (*FestivalStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN calendar = 'lunar' THEN 1 ELSE 0 END), 0) AS lunar,
			COALESCE(SUM(CASE WHEN calendar = 'solar' THEN 1 ELSE 0 END), 0) AS solar,
			COALESCE(SUM(is_public_holiday), 0) AS public_holidays
		FROM festivals
	`

	var stats FestivalStats
	err := db.QueryRowContext(ctx, query).Scan(
		&stats.Total,
		&stats.Lunar,
		&stats.Solar,
		&stats.PublicHolidays,
	)
	if err != nil {
		return nil, fmt.Errorf("query festival stats: %w", err)
	}

	return &stats, nil
}
