// Command lunargen dumps lunar year tables for a span of years, either as
// JSON for downstream consumers or as a plain Tết table for eyeballing
// against published almanacs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/junkeythong/amlichvietnam/lunar"
)

type monthJSON struct {
	Number int    `json:"number"`
	Leap   bool   `json:"leap"`
	Days   int    `json:"days"`
	Starts string `json:"starts"`
}

type yearJSON struct {
	Year      int         `json:"year"`
	LeapMonth int         `json:"leap_month,omitempty"`
	Tet       string      `json:"tet"`
	Months    []monthJSON `json:"months"`
}

func main() {
	start := flag.Int("start", 2024, "First lunar year")
	end := flag.Int("end", 2026, "Last lunar year")
	tz := flag.Float64("tz", lunar.VietnamOffset, "Timezone offset in hours")
	out := flag.String("out", "", "Output file (default stdout)")
	tetOnly := flag.Bool("tet", false, "Print a plain table of Tết dates instead of JSON")
	flag.Parse()

	if err := run(*start, *end, *tz, *out, *tetOnly); err != nil {
		fmt.Fprintf(os.Stderr, "lunargen: %v\n", err)
		os.Exit(1)
	}
}

func run(start, end int, tz float64, out string, tetOnly bool) error {
	if start > end {
		return fmt.Errorf("start year %d is after end year %d", start, end)
	}

	years := make([]yearJSON, 0, end-start+1)
	for year := start; year <= end; year++ {
		y, err := buildYearJSON(year, tz)
		if err != nil {
			return err
		}
		years = append(years, y)
	}

	if tetOnly {
		return printTetTable(years, start, end)
	}

	data, err := json.MarshalIndent(years, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tables: %w", err)
	}
	data = append(data, '\n')

	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("wrote %d year tables to %s\n", len(years), out)
	return nil
}

func buildYearJSON(year int, tz float64) (yearJSON, error) {
	months, err := lunar.YearMonths(year, tz)
	if err != nil {
		return yearJSON{}, fmt.Errorf("year %d: %w", year, err)
	}

	tet, err := lunar.LunarToSolar(lunar.LunarDate{Day: 1, Month: 1, Year: year}, tz)
	if err != nil {
		return yearJSON{}, fmt.Errorf("tết of %d: %w", year, err)
	}

	y := yearJSON{Year: year, Tet: tet.String(), Months: make([]monthJSON, 0, len(months))}
	for _, m := range months {
		if m.Leap {
			y.LeapMonth = m.Number
		}
		y.Months = append(y.Months, monthJSON{
			Number: m.Number,
			Leap:   m.Leap,
			Days:   m.Days,
			Starts: m.Start.Solar().String(),
		})
	}
	return y, nil
}

func printTetTable(years []yearJSON, start, end int) error {
	fmt.Printf("=== Tết Nguyên Đán %d..%d ===\n\n", start, end)
	fmt.Println("Year   Tết          Leap month")

	leapCount := 0
	for _, y := range years {
		leap := "-"
		if y.LeapMonth > 0 {
			leap = fmt.Sprintf("%d", y.LeapMonth)
			leapCount++
		}
		fmt.Printf("%d   %s   %s\n", y.Year, y.Tet, leap)
	}

	fmt.Println()
	fmt.Printf("%d years, %d with a leap month\n", len(years), leapCount)
	return nil
}
