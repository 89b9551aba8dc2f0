package lunar

import (
	"fmt"
	"math"
)

// sunLongitude returns the apparent ecliptic longitude of the sun, in
// degrees normalized to [0, 360), at the midnight in zone tz that begins
// civil day j.
//
// Truncated series from Meeus, accurate to about 0.01 degree.
func sunLongitude(j JDN, tz float64) float64 {
	t := (float64(j) - 2451545.5 - tz/24) / 36525 // Julian centuries from J2000
	t2 := t * t

	// Mean anomaly and mean longitude of the sun.
	m := 357.52910 + 35999.05030*t - 0.0001559*t2 - 0.00000048*t*t2
	l0 := 280.46645 + 36000.76983*t + 0.0003032*t2

	// Equation of center.
	dl := (1.914600 - 0.004817*t - 0.000014*t2) * math.Sin(m*degToRad)
	dl += (0.019993-0.000101*t)*math.Sin(2*m*degToRad) + 0.000290*math.Sin(3*m*degToRad)

	deg := math.Mod(l0+dl, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// majorTerm returns the index 0..11 of the major solar term in effect at
// the start of day j. Term n begins when the sun reaches n*30 degrees;
// term 0 starts at the March equinox, term 9 at the winter solstice.
func majorTerm(j JDN, tz float64) int {
	return int(sunLongitude(j, tz) / 30)
}

// solarTermStart returns the first civil day at whose start the sun has
// entered the given major term. The search begins at from, which must lie
// inside the preceding term.
func solarTermStart(term int, from JDN, tz float64) JDN {
	target := float64(term) * 30
	j := from
	for iter := 0; ; iter++ {
		if iter > 400 {
			panic(fmt.Sprintf("lunar: no crossing of %.0f degrees near day %d", target, int(j)))
		}
		if majorTerm(j, tz) == term {
			return j
		}
		// The sun advances at most 1.02 degrees per day, so a step of the
		// remaining angle over 1.02 cannot jump past the term boundary.
		remain := math.Mod(target-sunLongitude(j, tz)+360, 360)
		step := int(remain / 1.02)
		if step < 1 {
			step = 1
		}
		j += JDN(step)
	}
}

// winterSolsticeDay returns the civil day containing the December solstice
// of the given Gregorian year in zone tz: the last day that starts before
// the sun reaches 270 degrees.
func winterSolsticeDay(year int, tz float64) JDN {
	from := jdnFromDate(1, 12, year)
	return solarTermStart(9, from, tz) - 1
}
