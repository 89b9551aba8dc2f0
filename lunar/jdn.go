package lunar

// JDN is a Julian day number, counting whole civil days. JDN 2451545 is
// 2000-01-01 in the Gregorian calendar.
type JDN int

// jdnFromDate converts a Gregorian date to its Julian day number without
// validating it. The proleptic Gregorian calendar is used for all years.
func jdnFromDate(day, month, year int) JDN {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	return JDN(day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045)
}

// JDN converts the date to a Julian day number after validating its shape.
func (d SolarDate) JDN() (JDN, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	return jdnFromDate(d.Day, d.Month, d.Year), nil
}

// Solar converts a Julian day number back to a Gregorian date. It is the
// inverse of SolarDate.JDN for every date in the supported range.
func (j JDN) Solar() SolarDate {
	a := int(j) + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	d := (4*c + 3) / 1461
	e := c - 1461*d/4
	m := (5*e + 2) / 153
	return SolarDate{
		Year:  100*b + d - 4800 + m/10,
		Month: m + 3 - 12*(m/10),
		Day:   e - (153*m+2)/5 + 1,
	}
}

// isGregorianLeap reports whether a Gregorian year has 366 days.
func isGregorianLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// daysInSolarMonth returns the length of a Gregorian month.
func daysInSolarMonth(year, month int) int {
	switch month {
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isGregorianLeap(year) {
			return 29
		}
		return 28
	default:
		return 31
	}
}
