package festival

import (
	"context"
	"errors"
	"testing"

	"github.com/junkeythong/amlichvietnam/internal/database"
	"github.com/junkeythong/amlichvietnam/lunar"
)

// catalogStore is an in-memory Queryable with a fixed festival list.
type catalogStore struct {
	fests []database.Festival
}

func (s *catalogStore) ListFestivals(_ context.Context) ([]database.Festival, error) {
	return s.fests, nil
}

func (s *catalogStore) ListFestivalsByCalendar(_ context.Context, cal database.Calendar) ([]database.Festival, error) {
	var out []database.Festival
	for _, f := range s.fests {
		if f.Calendar == cal {
			out = append(out, f)
		}
	}
	return out, nil
}

func testResolver(fests ...database.Festival) *Resolver {
	return NewResolver(&catalogStore{fests: fests}, lunar.VietnamOffset)
}

func vietnameseHolidays() []database.Festival {
	return []database.Festival{
		{ID: 1, Name: "Tết Nguyên Đán", Calendar: database.CalendarLunar, Month: 1, Day: 1, IsPublicHoliday: true},
		{ID: 2, Name: "Giỗ tổ Hùng Vương", Calendar: database.CalendarLunar, Month: 3, Day: 10, IsPublicHoliday: true},
		{ID: 3, Name: "Tết Trung Thu", Calendar: database.CalendarLunar, Month: 8, Day: 15},
		{ID: 4, Name: "Quốc khánh", Calendar: database.CalendarSolar, Month: 9, Day: 2, IsPublicHoliday: true},
	}
}

func findOccurrence(t *testing.T, occs []Occurrence, name string) Occurrence {
	t.Helper()
	for _, o := range occs {
		if o.Festival.Name == name {
			return o
		}
	}
	t.Fatalf("no occurrence of %q in %d results", name, len(occs))
	return Occurrence{}
}

func TestResolveYear_KnownDates(t *testing.T) {
	r := testResolver(vietnameseHolidays()...)

	occs, err := r.ResolveYear(context.Background(), 2025)
	if err != nil {
		t.Fatalf("ResolveYear(2025) error = %v", err)
	}
	if len(occs) != 4 {
		t.Fatalf("ResolveYear(2025) returned %d occurrences, want 4", len(occs))
	}

	want := map[string]lunar.SolarDate{
		"Tết Nguyên Đán":    {Year: 2025, Month: 1, Day: 29},
		"Giỗ tổ Hùng Vương": {Year: 2025, Month: 4, Day: 7},
		"Quốc khánh":        {Year: 2025, Month: 9, Day: 2},
		"Tết Trung Thu":     {Year: 2025, Month: 10, Day: 6},
	}
	for name, date := range want {
		occ := findOccurrence(t, occs, name)
		if occ.Solar != date {
			t.Errorf("%s resolved to %v, want %v", name, occ.Solar, date)
		}
	}

	// Quốc khánh is solar but still carries the day's lunar date.
	qk := findOccurrence(t, occs, "Quốc khánh")
	if qk.Lunar.Year != 2025 || qk.Lunar.Leap {
		t.Errorf("Quốc khánh lunar date = %v, want a regular month of lunar 2025", qk.Lunar)
	}
}

func TestResolveYear_SortedBySolarDate(t *testing.T) {
	r := testResolver(vietnameseHolidays()...)

	occs, err := r.ResolveYear(context.Background(), 2026)
	if err != nil {
		t.Fatalf("ResolveYear(2026) error = %v", err)
	}
	for i := 1; i < len(occs); i++ {
		prev, cur := occs[i-1].Solar, occs[i].Solar
		if cur.Month < prev.Month || (cur.Month == prev.Month && cur.Day < prev.Day) {
			t.Errorf("occurrences out of order: %v before %v", prev, cur)
		}
	}

	tet := findOccurrence(t, occs, "Tết Nguyên Đán")
	if got, want := tet.Solar, (lunar.SolarDate{Year: 2026, Month: 2, Day: 17}); got != want {
		t.Errorf("Tết 2026 = %v, want %v", got, want)
	}
	if tet.Lunar.Year != 2026 {
		t.Errorf("Tết 2026 attributed to lunar year %d, want 2026", tet.Lunar.Year)
	}
}

// A festival early in lunar month 12 usually lands in January, carried over
// from the previous lunar year. When the following Tết is early enough the
// month starts in late December instead, and some solar years catch both:
// one occurrence in January and another in December. The resolver must agree
// with the engine either way.
func TestResolveYear_TwelfthMonthFestival(t *testing.T) {
	r := testResolver(database.Festival{
		ID: 1, Name: "Cúng mùng 1 tháng Chạp", Calendar: database.CalendarLunar, Month: 12, Day: 1,
	})

	sawDouble := false
	for year := 2000; year <= 2040; year++ {
		var want []lunar.SolarDate
		for _, lunarYear := range []int{year - 1, year} {
			d, err := lunar.LunarToSolarVN(lunar.LunarDate{Day: 1, Month: 12, Year: lunarYear})
			if err != nil {
				t.Fatalf("LunarToSolarVN(1/12/%d) error = %v", lunarYear, err)
			}
			if d.Year == year {
				want = append(want, d)
			}
		}

		occs, err := r.ResolveYear(context.Background(), year)
		if err != nil {
			t.Fatalf("ResolveYear(%d) error = %v", year, err)
		}
		if len(occs) != len(want) {
			t.Fatalf("ResolveYear(%d) returned %d occurrences, want %d", year, len(occs), len(want))
		}
		for i, occ := range occs {
			if occ.Solar != want[i] {
				t.Errorf("year %d occurrence %d = %v, want %v", year, i, occ.Solar, want[i])
			}
		}
		if len(occs) == 2 {
			sawDouble = true
		}
	}
	if !sawDouble {
		t.Error("no solar year in 2000..2040 held two occurrences; the previous-year scan looks dead")
	}
}

func TestResolveYear_SkipsFebruary29(t *testing.T) {
	r := testResolver(database.Festival{
		ID: 1, Name: "Ngày nhuận", Calendar: database.CalendarSolar, Month: 2, Day: 29,
	})

	occs, err := r.ResolveYear(context.Background(), 2024)
	if err != nil {
		t.Fatalf("ResolveYear(2024) error = %v", err)
	}
	if len(occs) != 1 {
		t.Fatalf("ResolveYear(2024) returned %d occurrences, want 1", len(occs))
	}

	occs, err = r.ResolveYear(context.Background(), 2025)
	if err != nil {
		t.Fatalf("ResolveYear(2025) error = %v", err)
	}
	if len(occs) != 0 {
		t.Errorf("ResolveYear(2025) returned %d occurrences for a Feb 29 festival, want 0", len(occs))
	}
}

func TestResolveYear_OutOfRange(t *testing.T) {
	r := testResolver(vietnameseHolidays()...)

	for _, year := range []int{1799, 2200} {
		if _, err := r.ResolveYear(context.Background(), year); !errors.Is(err, lunar.ErrYearOutOfRange) {
			t.Errorf("ResolveYear(%d) error = %v, want ErrYearOutOfRange", year, err)
		}
	}
}

func TestResolveDate_MatchesBothCalendars(t *testing.T) {
	r := testResolver(vietnameseHolidays()...)

	occs, err := r.ResolveDate(context.Background(), lunar.SolarDate{Year: 2026, Month: 2, Day: 17})
	if err != nil {
		t.Fatalf("ResolveDate error = %v", err)
	}
	if len(occs) != 1 || occs[0].Festival.Name != "Tết Nguyên Đán" {
		t.Fatalf("ResolveDate(2026-02-17) = %v, want Tết Nguyên Đán", occs)
	}
	if got, want := occs[0].Lunar, (lunar.LunarDate{Day: 1, Month: 1, Year: 2026}); got != want {
		t.Errorf("lunar date = %v, want %v", got, want)
	}

	occs, err = r.ResolveDate(context.Background(), lunar.SolarDate{Year: 2025, Month: 9, Day: 2})
	if err != nil {
		t.Fatalf("ResolveDate error = %v", err)
	}
	if len(occs) != 1 || occs[0].Festival.Name != "Quốc khánh" {
		t.Fatalf("ResolveDate(2025-09-02) = %v, want Quốc khánh", occs)
	}

	occs, err = r.ResolveDate(context.Background(), lunar.SolarDate{Year: 2025, Month: 9, Day: 3})
	if err != nil {
		t.Fatalf("ResolveDate error = %v", err)
	}
	if len(occs) != 0 {
		t.Errorf("ResolveDate(2025-09-03) = %v, want none", occs)
	}
}

// A leap month repeats its predecessor's number, but festivals are only
// celebrated in the regular month.
func TestResolveDate_LeapMonthNeverHosts(t *testing.T) {
	r := testResolver(database.Festival{
		ID: 1, Name: "Lễ hội tháng hai", Calendar: database.CalendarLunar, Month: 2, Day: 1,
	})

	regular, err := lunar.LunarToSolarVN(lunar.LunarDate{Day: 1, Month: 2, Year: 2004})
	if err != nil {
		t.Fatalf("LunarToSolarVN(1/2/2004) error = %v", err)
	}
	occs, err := r.ResolveDate(context.Background(), regular)
	if err != nil {
		t.Fatalf("ResolveDate(%v) error = %v", regular, err)
	}
	if len(occs) != 1 {
		t.Fatalf("regular month day %v matched %d festivals, want 1", regular, len(occs))
	}

	// 2004-03-21 is day 1 of the leap second month.
	leapDay := lunar.SolarDate{Year: 2004, Month: 3, Day: 21}
	occs, err = r.ResolveDate(context.Background(), leapDay)
	if err != nil {
		t.Fatalf("ResolveDate(%v) error = %v", leapDay, err)
	}
	if len(occs) != 0 {
		t.Errorf("leap month day %v matched %d festivals, want 0", leapDay, len(occs))
	}
}

func TestResolveDate_InvalidDate(t *testing.T) {
	r := testResolver(vietnameseHolidays()...)

	_, err := r.ResolveDate(context.Background(), lunar.SolarDate{Year: 2025, Month: 2, Day: 30})
	if !errors.Is(err, lunar.ErrInvalidDate) {
		t.Errorf("ResolveDate(2025-02-30) error = %v, want ErrInvalidDate", err)
	}
}
