package lunar

import (
	"fmt"
	"math"
)

const (
	// newMoonEpoch is the Julian date of the new moon of 1900-01-01, the
	// k = 0 origin of the series.
	newMoonEpoch = 2415021.076998695

	// synodicMonth is the mean length of a lunation in days.
	synodicMonth = 29.530588853

	degToRad = math.Pi / 180
)

// newMoon returns the Julian date, UTC and fractional, of the k-th new
// moon counted from the start of 1900.
//
// The series is the truncated form from Meeus, Astronomical Algorithms,
// as used by Hồ Ngọc Đức for the Vietnamese calendar. It is accurate to
// a few minutes, far inside what day-granular arithmetic needs.
func newMoon(k int) float64 {
	t := float64(k) / 1236.85 // time in Julian centuries from 1900
	t2 := t * t
	t3 := t2 * t

	// Mean phase plus the first periodic correction.
	jd := 2415020.75933 + 29.53058868*float64(k) + 0.0001178*t2 - 0.000000155*t3
	jd += 0.00033 * math.Sin((166.56+132.87*t-0.009173*t2)*degToRad)

	// Anomalies of sun and moon, and the moon's argument of latitude.
	m := 359.2242 + 29.10535608*float64(k) - 0.0000333*t2 - 0.00000347*t3
	mpr := 306.0253 + 385.81691806*float64(k) + 0.0107306*t2 + 0.00001236*t3
	f := 21.2964 + 390.67050646*float64(k) - 0.0016528*t2 - 0.00000239*t3

	c1 := (0.1734 - 0.000393*t) * math.Sin(m*degToRad)
	c1 += 0.0021 * math.Sin(2*m*degToRad)
	c1 -= 0.4068 * math.Sin(mpr*degToRad)
	c1 += 0.0161 * math.Sin(2*mpr*degToRad)
	c1 -= 0.0004 * math.Sin(3*mpr*degToRad)
	c1 += 0.0104 * math.Sin(2*f*degToRad)
	c1 -= 0.0051 * math.Sin((m+mpr)*degToRad)
	c1 -= 0.0074 * math.Sin((m-mpr)*degToRad)
	c1 += 0.0004 * math.Sin((2*f+m)*degToRad)
	c1 -= 0.0004 * math.Sin((2*f-m)*degToRad)
	c1 -= 0.0006 * math.Sin((2*f+mpr)*degToRad)
	c1 += 0.0010 * math.Sin((2*f-mpr)*degToRad)
	c1 += 0.0005 * math.Sin((2*mpr+m)*degToRad)

	var deltaT float64
	if t < -11 {
		deltaT = 0.001 + 0.000839*t + 0.0002261*t2 - 0.00000845*t3 - 0.000000081*t*t3
	} else {
		deltaT = -0.000278 + 0.000265*t + 0.000262*t2
	}

	return jd + c1 - deltaT
}

// newMoonDay returns the civil day containing the k-th new moon in zone
// tz, hours east of UTC.
func newMoonDay(k int, tz float64) JDN {
	return JDN(math.Floor(newMoon(k) + 0.5 + tz/24))
}

// monthStartBefore returns the first day of the lunar month containing j,
// the day of the last new moon at or before j in zone tz.
func monthStartBefore(j JDN, tz float64) JDN {
	k := int(math.Floor((float64(j) - newMoonEpoch) / synodicMonth))
	for probe := 0; ; probe++ {
		// The mean-month estimate is off by one at most; more means the
		// series and the estimate disagree.
		if probe > 4 {
			panic(fmt.Sprintf("lunar: new moon index diverged near day %d", int(j)))
		}
		if newMoonDay(k+1, tz) <= j {
			k++
			continue
		}
		if newMoonDay(k, tz) > j {
			k--
			continue
		}
		return newMoonDay(k, tz)
	}
}

// monthIndex returns the series index k of the new moon falling on the
// given month start day. Panics if start is not a new moon day.
func monthIndex(start JDN, tz float64) int {
	k := int(math.Floor((float64(start)-newMoonEpoch)/synodicMonth + 0.5))
	if newMoonDay(k, tz) != start {
		panic(fmt.Sprintf("lunar: day %d is not a new moon day", int(start)))
	}
	return k
}
