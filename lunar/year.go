package lunar

import "fmt"

// Month is one month of a lunar year: its number, the year it belongs to,
// whether it is a leap month, the solar day it starts on and its length.
// A lunar month is always 29 or 30 days long.
type Month struct {
	Number int
	Year   int
	Leap   bool
	Start  JDN
	Days   int
}

// monthTable lists consecutive lunar months from month 11 of an anchor
// year up to, but not including, month 11 of the next year: twelve entries
// in a regular year, thirteen when a leap month is inserted.
type monthTable []Month

// month11Start returns the start day of lunar month 11 of the given year,
// the month containing the winter solstice.
func month11Start(year int, tz float64) JDN {
	return monthStartBefore(winterSolsticeDay(year, tz), tz)
}

// buildYear builds the month table anchored at month 11 of the given year.
func buildYear(anchor int, tz float64) monthTable {
	a11 := month11Start(anchor, tz)
	b11 := month11Start(anchor+1, tz)
	k := monthIndex(a11, tz)

	// Collect month start days from a11 up to b11 exclusive.
	starts := []JDN{a11}
	for i := 1; ; i++ {
		if i > 14 {
			panic(fmt.Sprintf("lunar: runaway month table for year %d", anchor))
		}
		s := newMoonDay(k+i, tz)
		if s >= b11 {
			if s != b11 {
				panic(fmt.Sprintf("lunar: month 11 of %d is not a new moon day", anchor+1))
			}
			break
		}
		starts = append(starts, s)
	}

	n := len(starts)
	if n != 12 && n != 13 {
		panic(fmt.Sprintf("lunar: year %d has %d lunar months", anchor, n))
	}

	// In a thirteen month year the leap month is the first month after
	// month 11 during which the sun enters no major term: the term at its
	// start still holds at the start of the next month.
	leapIdx := -1
	if n == 13 {
		for i := 1; i < n; i++ {
			next := b11
			if i+1 < n {
				next = starts[i+1]
			}
			if majorTerm(starts[i], tz) == majorTerm(next, tz) {
				leapIdx = i
				break
			}
		}
		if leapIdx < 0 {
			// No termless month in the series. Fall back to the month
			// right after month 11.
			leapIdx = 1
		}
	}

	months := make(monthTable, n)
	num, year := 11, anchor
	prevNum, prevYear := 0, 0
	for i := 0; i < n; i++ {
		end := b11
		if i+1 < n {
			end = starts[i+1]
		}
		days := int(end - starts[i])
		if days != 29 && days != 30 {
			panic(fmt.Sprintf("lunar: month starting at day %d is %d days long", int(starts[i]), days))
		}

		if i == leapIdx {
			// The leap month repeats its predecessor's number and year.
			months[i] = Month{Number: prevNum, Year: prevYear, Leap: true, Start: starts[i], Days: days}
			continue
		}
		months[i] = Month{Number: num, Year: year, Start: starts[i], Days: days}
		prevNum, prevYear = num, year
		num++
		if num > 12 {
			num = 1
			year++
		}
	}

	return months
}

// find returns the month containing day j, which must fall inside the
// table's range.
func (t monthTable) find(j JDN) Month {
	for _, m := range t {
		if j >= m.Start && j < m.Start+JDN(m.Days) {
			return m
		}
	}
	panic(fmt.Sprintf("lunar: day %d outside month table", int(j)))
}

// lookup returns the month with the given number and leap flag, if the
// table has one.
func (t monthTable) lookup(number int, leap bool) (Month, bool) {
	for _, m := range t {
		if m.Number == number && m.Leap == leap {
			return m, true
		}
	}
	return Month{}, false
}

// YearMonths returns every month of the given lunar year in civil order:
// month 1 through month 12, plus the leap month if the year has one.
func YearMonths(year int, tz float64) ([]Month, error) {
	if err := checkYear(year); err != nil {
		return nil, err
	}

	// Months 1..10 of the year live in the table anchored the year
	// before; months 11 and 12 in the table anchored at the year itself.
	var months []Month
	for _, m := range buildYear(year-1, tz) {
		if m.Year == year {
			months = append(months, m)
		}
	}
	for _, m := range buildYear(year, tz) {
		if m.Year == year {
			months = append(months, m)
		}
	}
	return months, nil
}
