// Package festival resolves catalog entries to concrete solar dates.
package festival

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/junkeythong/amlichvietnam/internal/database"
	"github.com/junkeythong/amlichvietnam/lunar"
)

// Occurrence is one concrete celebration of a festival: the catalog entry
// together with the solar day it falls on and that day's lunar date.
type Occurrence struct {
	Festival database.Festival `json:"festival"`
	Solar    lunar.SolarDate   `json:"solar"`
	Lunar    lunar.LunarDate   `json:"lunar"`
}

// Queryable is the slice of the store the resolver needs.
// Tests supply a fixture catalog instead of a real database.
type Queryable interface {
	ListFestivals(ctx context.Context) ([]database.Festival, error)
	ListFestivalsByCalendar(ctx context.Context, cal database.Calendar) ([]database.Festival, error)
}

// Resolver turns stored festival definitions into dated occurrences.
type Resolver struct {
	db Queryable
	tz float64
}

// NewResolver creates a resolver observing lunar days in zone tz.
func NewResolver(db Queryable, tz float64) *Resolver {
	return &Resolver{db: db, tz: tz}
}

// ResolveYear returns every festival occurrence falling inside one solar
// year, in date order.
//
// A lunar festival in months 11 or 12 celebrated early in a solar year
// belongs to the previous lunar year, and in rare years the same lunar
// position recurs in late December, so both neighbouring lunar years are
// tried and every hit inside the solar year is kept.
func (r *Resolver) ResolveYear(ctx context.Context, solarYear int) ([]Occurrence, error) {
	if solarYear < lunar.MinYear || solarYear > lunar.MaxYear {
		return nil, fmt.Errorf("%w: year %d is outside %d..%d",
			lunar.ErrYearOutOfRange, solarYear, lunar.MinYear, lunar.MaxYear)
	}

	var occs []Occurrence

	solarFests, err := r.db.ListFestivalsByCalendar(ctx, database.CalendarSolar)
	if err != nil {
		return nil, fmt.Errorf("list solar festivals: %w", err)
	}
	for _, f := range solarFests {
		day := lunar.SolarDate{Year: solarYear, Month: f.Month, Day: f.Day}
		ld, err := lunar.SolarToLunar(day, r.tz)
		if err != nil {
			// A February 29 entry simply has no occurrence this year.
			if errors.Is(err, lunar.ErrInvalidDate) {
				continue
			}
			return nil, fmt.Errorf("resolve %q for %d: %w", f.Name, solarYear, err)
		}
		occs = append(occs, Occurrence{Festival: f, Solar: day, Lunar: ld})
	}

	lunarFests, err := r.db.ListFestivalsByCalendar(ctx, database.CalendarLunar)
	if err != nil {
		return nil, fmt.Errorf("list lunar festivals: %w", err)
	}
	for _, f := range lunarFests {
		for _, lunarYear := range []int{solarYear - 1, solarYear} {
			ld := lunar.LunarDate{Day: f.Day, Month: f.Month, Year: lunarYear}
			day, err := lunar.LunarToSolar(ld, r.tz)
			if err != nil {
				// Out of range at the edge of the supported span, or a
				// day-30 festival in a year where the month has 29 days:
				// no occurrence from this lunar year.
				if errors.Is(err, lunar.ErrYearOutOfRange) || errors.Is(err, lunar.ErrInvalidLunarDate) {
					continue
				}
				return nil, fmt.Errorf("resolve %q for lunar %d: %w", f.Name, lunarYear, err)
			}
			if day.Year != solarYear {
				continue
			}
			occs = append(occs, Occurrence{Festival: f, Solar: day, Lunar: ld})
		}
	}

	sort.Slice(occs, func(i, j int) bool {
		a, b := occs[i], occs[j]
		if a.Solar != b.Solar {
			if a.Solar.Month != b.Solar.Month {
				return a.Solar.Month < b.Solar.Month
			}
			return a.Solar.Day < b.Solar.Day
		}
		return a.Festival.Name < b.Festival.Name
	})

	return occs, nil
}

// ResolveDate returns the festivals celebrated on one civil day.
// Lunar festivals never match days inside a leap month.
func (r *Resolver) ResolveDate(ctx context.Context, day lunar.SolarDate) ([]Occurrence, error) {
	ld, err := lunar.SolarToLunar(day, r.tz)
	if err != nil {
		return nil, err
	}

	fests, err := r.db.ListFestivals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list festivals: %w", err)
	}

	var occs []Occurrence
	for _, f := range fests {
		switch f.Calendar {
		case database.CalendarSolar:
			if f.Month == day.Month && f.Day == day.Day {
				occs = append(occs, Occurrence{Festival: f, Solar: day, Lunar: ld})
			}
		case database.CalendarLunar:
			if !ld.Leap && f.Month == ld.Month && f.Day == ld.Day {
				occs = append(occs, Occurrence{Festival: f, Solar: day, Lunar: ld})
			}
		}
	}

	return occs, nil
}
