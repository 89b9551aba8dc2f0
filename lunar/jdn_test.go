package lunar

import (
	"errors"
	"testing"
)

func TestSolarDate_JDN(t *testing.T) {
	tests := []struct {
		name string
		date SolarDate
		want JDN
	}{
		{"J2000 epoch", SolarDate{2000, 1, 1}, 2451545},
		{"unix epoch", SolarDate{1970, 1, 1}, 2440588},
		{"range start", SolarDate{1800, 1, 1}, 2378497},
		{"range end", SolarDate{2199, 12, 31}, 2524593},
		{"tet 2026", SolarDate{2026, 2, 17}, 2461089},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.date.JDN()
			if err != nil {
				t.Fatalf("JDN() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("JDN() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestJDN_Solar_RoundTrip(t *testing.T) {
	start := jdnFromDate(1, 1, MinYear)
	end := jdnFromDate(31, 12, MaxYear)

	prev := JDN(start - 1).Solar()
	for j := start; j <= end; j++ {
		d := j.Solar()

		if err := d.Validate(); err != nil {
			t.Fatalf("Solar(%d) = %v, not a valid date", j, d)
		}
		if got := jdnFromDate(d.Day, d.Month, d.Year); got != j {
			t.Fatalf("round trip of day %d gives %d (%v)", j, got, d)
		}

		// Consecutive day numbers must give consecutive dates.
		sameMonth := d.Year == prev.Year && d.Month == prev.Month && d.Day == prev.Day+1
		monthRoll := d.Day == 1 && d.Year == prev.Year && d.Month == prev.Month+1 &&
			prev.Day == daysInSolarMonth(prev.Year, prev.Month)
		yearRoll := d.Day == 1 && d.Month == 1 && d.Year == prev.Year+1 &&
			prev.Month == 12 && prev.Day == 31
		if !sameMonth && !monthRoll && !yearRoll {
			t.Fatalf("day %d: %v does not follow %v", j, d, prev)
		}
		prev = d
	}
}

func TestSolarDate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		date    SolarDate
		wantErr bool
	}{
		{"regular day", SolarDate{2024, 2, 10}, false},
		{"leap day in leap year", SolarDate{2000, 2, 29}, false},
		{"leap day in century year", SolarDate{1900, 2, 29}, true},
		{"leap day in non-leap year", SolarDate{2023, 2, 29}, true},
		{"day 31 in april", SolarDate{2024, 4, 31}, true},
		{"day zero", SolarDate{2024, 1, 0}, true},
		{"month zero", SolarDate{2024, 0, 15}, true},
		{"month 13", SolarDate{2024, 13, 1}, true},
		{"last day of december", SolarDate{2024, 12, 31}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.date.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidDate) {
				t.Errorf("Validate() error = %v, want ErrInvalidDate", err)
			}
		})
	}
}

func TestSolarDate_String(t *testing.T) {
	got := SolarDate{2026, 2, 17}.String()
	if got != "2026-02-17" {
		t.Errorf("String() = %q, want %q", got, "2026-02-17")
	}
}
