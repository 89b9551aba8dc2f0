package database

// migrations lists every schema change in the order Migrate applies them.
// Versions are append-only; never renumber or edit an entry that has
// shipped, since schema_migrations tracks them by number.
var migrations = []struct {
	version int
	name    string
	sql     string
}{
	{1, "festival catalog", migrationV1Festivals},
	{2, "festival notes", migrationV2FestivalNotes},
}

// migrationV1Festivals creates the festival catalog.
//
// The table stores definitions, not occurrences: a festival is one row of
// (calendar, month, day), and the solar dates it falls on in a given year
// are computed at request time by the resolver. "Giỗ tổ Hùng Vương" is
// (lunar, 3, 10), never a list of Gregorian dates.
//
// There is no leap flag. Vietnamese festivals are observed in the regular
// month, not in a leap duplicate, so the position is complete without one.
const migrationV1Festivals = `
-- Migration 001: Festival catalog

CREATE TABLE IF NOT EXISTS festivals (
    id INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Display name, unique across the catalog
    name TEXT NOT NULL,

    -- Which calendar fixes the observance
    calendar TEXT NOT NULL CHECK (calendar IN ('lunar', 'solar')),

    -- Position within that calendar
    month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
    day INTEGER NOT NULL CHECK (day BETWEEN 1 AND 31),

    -- 1 for official public holidays
    is_public_holiday INTEGER NOT NULL DEFAULT 0,

    -- Timestamps for auditing
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE (name)
);

-- Resolver fetches one calendar at a time
CREATE INDEX IF NOT EXISTS idx_festivals_calendar
    ON festivals(calendar);

-- Date lookups filter on the full position
CREATE INDEX IF NOT EXISTS idx_festivals_position
    ON festivals(calendar, month, day);
`

// migrationV2FestivalNotes adds a free-form notes column.
//
// ALTER TABLE ADD COLUMN is not idempotent on its own; the
// schema_migrations table guarantees it runs exactly once.
const migrationV2FestivalNotes = `
-- Migration 002: Festival notes

ALTER TABLE festivals ADD COLUMN notes TEXT;
`
