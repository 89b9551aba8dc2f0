// Package lunar converts between the Gregorian calendar and the Vietnamese
// lunisolar calendar.
//
// The implementation follows the astronomical method described by Hồ Ngọc
// Đức: new moon instants and the apparent longitude of the sun are computed
// from truncated series (Meeus, Astronomical Algorithms), lunar month 11 is
// the month containing the winter solstice, and in a year of thirteen lunar
// months the leap month is the first month after month 11 during which the
// sun enters no major solar term.
//
// All conversions take the time zone offset, in hours east of UTC, in which
// new moons are observed. Vietnam uses UTC+7; China uses UTC+8, which is
// why the two calendars occasionally disagree (famously at Tết 1985).
package lunar

import (
	"errors"
	"fmt"
)

// Supported year range, for both calendars.
const (
	MinYear = 1800
	MaxYear = 2199
)

// VietnamOffset is the official Vietnamese time zone, UTC+7, used by the
// *VN convenience functions.
const VietnamOffset = 7.0

// Sentinel errors returned by conversions. Match with errors.Is.
var (
	// ErrInvalidDate is returned for a malformed solar date.
	ErrInvalidDate = errors.New("invalid solar date")

	// ErrInvalidLunarDate is returned for a malformed lunar date, or one
	// that does not exist in its year (wrong leap flag, or a day past the
	// end of the month).
	ErrInvalidLunarDate = errors.New("invalid lunar date")

	// ErrYearOutOfRange is returned for dates outside MinYear..MaxYear.
	ErrYearOutOfRange = errors.New("year out of supported range")
)

// SolarDate is a civil date in the proleptic Gregorian calendar.
type SolarDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// String renders the date in ISO order, e.g. "2026-02-17".
func (d SolarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Validate checks calendar shape: month 1..12 and day within the month.
// The supported year range is checked by the conversions, not here.
func (d SolarDate) Validate() error {
	if d.Month < 1 || d.Month > 12 {
		return fmt.Errorf("%w: %s has month %d", ErrInvalidDate, d, d.Month)
	}
	if d.Day < 1 || d.Day > daysInSolarMonth(d.Year, d.Month) {
		return fmt.Errorf("%w: %s has day %d", ErrInvalidDate, d, d.Day)
	}
	return nil
}

// LunarDate is a date in the Vietnamese lunisolar calendar. Leap marks a
// day inside a leap month, which repeats the number of the month before it.
type LunarDate struct {
	Day   int  `json:"day"`
	Month int  `json:"month"`
	Year  int  `json:"year"`
	Leap  bool `json:"leap"`
}

// String renders the date as
// "LunarDate(day=1, month=1, year=2026, leap=false)".
func (ld LunarDate) String() string {
	return fmt.Sprintf("LunarDate(day=%d, month=%d, year=%d, leap=%t)",
		ld.Day, ld.Month, ld.Year, ld.Leap)
}

// Validate checks shape only: month 1..12 and day 1..30. Whether the date
// exists in its year is decided by LunarToSolar against the month table.
func (ld LunarDate) Validate() error {
	if ld.Month < 1 || ld.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidLunarDate, ld.Month)
	}
	if ld.Day < 1 || ld.Day > 30 {
		return fmt.Errorf("%w: day %d", ErrInvalidLunarDate, ld.Day)
	}
	return nil
}

// checkYear enforces the supported range shared by both calendars.
func checkYear(year int) error {
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("%w: year %d is outside %d..%d",
			ErrYearOutOfRange, year, MinYear, MaxYear)
	}
	return nil
}
