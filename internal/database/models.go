package database

import (
	"errors"
	"fmt"
	"time"
)

// Calendar says which calendar a festival's month and day are fixed in.
type Calendar string

const (
	CalendarLunar Calendar = "lunar"
	CalendarSolar Calendar = "solar"
)

// ValidCalendars returns all valid calendar values.
func ValidCalendars() []Calendar {
	return []Calendar{CalendarLunar, CalendarSolar}
}

// IsValid checks if a calendar value is valid.
func (c Calendar) IsValid() bool {
	for _, valid := range ValidCalendars() {
		if c == valid {
			return true
		}
	}
	return false
}

// Festival is a recurring observance fixed to a month and day of either
// calendar. Lunar festivals are never celebrated in leap months, so a leap
// flag is not stored.
type Festival struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`     // e.g. "Tết Nguyên Đán"
	Calendar        Calendar  `json:"calendar"` // lunar or solar
	Month           int       `json:"month"`    // 1..12 in its calendar
	Day             int       `json:"day"`      // 1..31 solar, 1..30 lunar
	IsPublicHoliday bool      `json:"is_public_holiday"`
	Notes           *string   `json:"notes,omitempty"` // nullable
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Validate checks that the festival definition is storable.
func (f *Festival) Validate() error {
	var errs []error

	if f.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if !f.Calendar.IsValid() {
		errs = append(errs, fmt.Errorf("calendar must be lunar or solar, got %q", f.Calendar))
	}
	if f.Month < 1 || f.Month > 12 {
		errs = append(errs, fmt.Errorf("month must be 1..12, got %d", f.Month))
	}

	maxDay := 31
	if f.Calendar == CalendarLunar {
		// A lunar month never has more than 30 days.
		maxDay = 30
	}
	if f.Day < 1 || f.Day > maxDay {
		errs = append(errs, fmt.Errorf("day must be 1..%d, got %d", maxDay, f.Day))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// FestivalStats summarizes the catalog. The import tool prints these
// counts so an operator can eyeball a load against the source file.
type FestivalStats struct {
	Total          int `json:"total"`
	Lunar          int `json:"lunar"`
	Solar          int `json:"solar"`
	PublicHolidays int `json:"public_holidays"`
}

// =============================================================================
// Import Types (JSON catalog format)
// =============================================================================

// ImportData is the on-disk festival catalog read by cmd/import.
type ImportData struct {
	Metadata  ImportMetadata   `json:"metadata"`
	Festivals []ImportFestival `json:"festivals"`
}

// ImportMetadata describes where a catalog file came from.
type ImportMetadata struct {
	Source      string `json:"source"`
	GeneratedAt string `json:"generated_at"`
}

// ImportFestival is one catalog entry as it appears in the JSON file.
type ImportFestival struct {
	Name            string `json:"name"`
	Calendar        string `json:"calendar"`
	Month           int    `json:"month"`
	Day             int    `json:"day"`
	IsPublicHoliday bool   `json:"is_public_holiday"`
	Notes           string `json:"notes,omitempty"`
}

// ToFestival converts the import entry to a storable record.
func (imp ImportFestival) ToFestival() *Festival {
	f := &Festival{
		Name:            imp.Name,
		Calendar:        Calendar(imp.Calendar),
		Month:           imp.Month,
		Day:             imp.Day,
		IsPublicHoliday: imp.IsPublicHoliday,
	}
	if imp.Notes != "" {
		f.Notes = &imp.Notes
	}
	return f
}
