package lunar

import "testing"

func TestSunLongitude_Range(t *testing.T) {
	start := jdnFromDate(1, 1, 1800)
	end := jdnFromDate(31, 12, 2199)

	for j := start; j <= end; j += 97 {
		deg := sunLongitude(j, VietnamOffset)
		if deg < 0 || deg >= 360 {
			t.Fatalf("sunLongitude(%d) = %f, outside [0, 360)", j, deg)
		}
	}
}

func TestWinterSolsticeDay_KnownYears(t *testing.T) {
	tests := []struct {
		year       int
		month, day int
	}{
		// Solstice instants: 2000-12-21 13:37 UTC, 2023-12-22 03:27 UTC,
		// 2024-12-21 09:20 UTC, shifted to civil days in zone +7.
		{2000, 12, 21},
		{2023, 12, 22},
		{2024, 12, 21},
	}

	for _, tt := range tests {
		got := winterSolsticeDay(tt.year, VietnamOffset)
		want := jdnFromDate(tt.day, tt.month, tt.year)
		if got != want {
			t.Errorf("winterSolsticeDay(%d) = %v, want %04d-%02d-%02d",
				tt.year, got.Solar(), tt.year, tt.month, tt.day)
		}
	}
}

func TestWinterSolsticeDay_Sweep(t *testing.T) {
	for year := MinYear; year <= MaxYear; year++ {
		ws := winterSolsticeDay(year, VietnamOffset)
		d := ws.Solar()

		if d.Year != year || d.Month != 12 || d.Day < 19 || d.Day > 24 {
			t.Fatalf("winterSolsticeDay(%d) = %v", year, d)
		}
		// The 270 degree term starts on the following day.
		if got := majorTerm(ws, VietnamOffset); got != 8 {
			t.Fatalf("majorTerm at start of solstice day %d = %d, want 8", year, got)
		}
		if got := majorTerm(ws+1, VietnamOffset); got != 9 {
			t.Fatalf("majorTerm after solstice day %d = %d, want 9", year, got)
		}
	}
}
