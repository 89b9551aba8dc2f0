package lunar

import "fmt"

// SolarToLunar converts a solar date to the lunar date of the same civil
// day, observing new moons in zone tz, hours east of UTC.
func SolarToLunar(d SolarDate, tz float64) (LunarDate, error) {
	if err := d.Validate(); err != nil {
		return LunarDate{}, err
	}
	if err := checkYear(d.Year); err != nil {
		return LunarDate{}, err
	}

	j := jdnFromDate(d.Day, d.Month, d.Year)

	// Days before month 11 of the date's solar year belong to the table
	// anchored one year earlier.
	anchor := d.Year
	if j < month11Start(d.Year, tz) {
		anchor = d.Year - 1
	}

	m := buildYear(anchor, tz).find(j)
	return LunarDate{
		Day:   int(j-m.Start) + 1,
		Month: m.Number,
		Year:  m.Year,
		Leap:  m.Leap,
	}, nil
}

// LunarToSolar converts a lunar date to the solar date of the same civil
// day, observing new moons in zone tz. The date must exist: the leap flag
// must name the year's actual leap month, and the day must not run past
// the end of the month.
func LunarToSolar(ld LunarDate, tz float64) (SolarDate, error) {
	if err := ld.Validate(); err != nil {
		return SolarDate{}, err
	}
	if err := checkYear(ld.Year); err != nil {
		return SolarDate{}, err
	}

	// Months 11 and 12 sit at the head of their own year's table; months
	// 1..10 live in the table anchored the year before.
	anchor := ld.Year
	if ld.Month < 11 {
		anchor = ld.Year - 1
	}

	m, ok := buildYear(anchor, tz).lookup(ld.Month, ld.Leap)
	if !ok {
		return SolarDate{}, fmt.Errorf("%w: year %d has no leap month %d",
			ErrInvalidLunarDate, ld.Year, ld.Month)
	}
	if ld.Day > m.Days {
		return SolarDate{}, fmt.Errorf("%w: month %d of %d has only %d days",
			ErrInvalidLunarDate, ld.Month, ld.Year, m.Days)
	}

	return (m.Start + JDN(ld.Day) - 1).Solar(), nil
}

// SolarToLunarVN converts using the official Vietnamese zone, UTC+7.
func SolarToLunarVN(d SolarDate) (LunarDate, error) {
	return SolarToLunar(d, VietnamOffset)
}

// LunarToSolarVN converts using the official Vietnamese zone, UTC+7.
func LunarToSolarVN(ld LunarDate) (SolarDate, error) {
	return LunarToSolar(ld, VietnamOffset)
}
