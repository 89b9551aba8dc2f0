// Command verify sweeps the whole supported span day by day, round-tripping
// every conversion and checking the structure of every lunar year table. It
// runs against the engine directly, no server needed, and exits nonzero
// when any check fails.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/junkeythong/amlichvietnam/lunar"
)

// CheckFailure records one broken day or year.
type CheckFailure struct {
	Subject string `json:"subject"` // a date or a year
	Error   string `json:"error"`
}

// YearStats tracks per-year sweep results.
type YearStats struct {
	Year       int `json:"year"`
	Days       int `json:"days"`
	FailedDays int `json:"failed_days"`
}

// Analysis holds the full sweep outcome.
type Analysis struct {
	TotalDays    int            `json:"total_days"`
	TotalFailed  int            `json:"total_failed"`
	YearsChecked int            `json:"years_checked"`
	ByYear       []YearStats    `json:"by_year,omitempty"`
	Failures     []CheckFailure `json:"failures,omitempty"`
}

func main() {
	startYear := flag.Int("start", lunar.MinYear, "First year to sweep")
	endYear := flag.Int("end", lunar.MaxYear, "Last year to sweep")
	tz := flag.Float64("tz", lunar.VietnamOffset, "Timezone offset in hours")
	verbose := flag.Bool("v", false, "Verbose output (per-year lines)")
	outputFile := flag.String("o", "", "Output results to JSON file")
	flag.Parse()

	if *startYear < lunar.MinYear || *endYear > lunar.MaxYear || *startYear > *endYear {
		fmt.Fprintf(os.Stderr, "verify: year range must lie in %d..%d\n", lunar.MinYear, lunar.MaxYear)
		os.Exit(2)
	}

	fmt.Println("================================================================")
	fmt.Println("Lunar Calendar Engine - Full Range Verification")
	fmt.Println("================================================================")
	fmt.Printf("Date Range:  %d-01-01 to %d-12-31\n", *startYear, *endYear)
	fmt.Printf("Zone Offset: %+.1f hours\n", *tz)
	fmt.Println()

	start := time.Now()
	analysis := sweep(*startYear, *endYear, *tz, *verbose)
	elapsed := time.Since(start)

	printSummary(analysis, elapsed)

	if *outputFile != "" {
		saveResults(*outputFile, analysis)
	}

	if analysis.TotalFailed > 0 {
		os.Exit(1)
	}
}

func sweep(startYear, endYear int, tz float64, verbose bool) *Analysis {
	analysis := &Analysis{}

	// The year range was validated in main, so these cannot fail.
	first := lunar.SolarDate{Year: startYear, Month: 1, Day: 1}
	last := lunar.SolarDate{Year: endYear, Month: 12, Day: 31}
	firstJ, _ := first.JDN()
	lastJ, _ := last.JDN()
	totalDays := int(lastJ-firstJ) + 1

	fmt.Printf("Sweeping %d days...\n\n", totalDays)

	lastProgress := -1
	var stats *YearStats

	for j := firstJ; j <= lastJ; j++ {
		date := j.Solar()

		if stats == nil || stats.Year != date.Year {
			if stats != nil && verbose {
				printYearLine(stats)
			}
			analysis.ByYear = append(analysis.ByYear, YearStats{Year: date.Year})
			stats = &analysis.ByYear[len(analysis.ByYear)-1]

			for _, msg := range checkYearTable(date.Year, tz) {
				analysis.TotalFailed++
				analysis.Failures = append(analysis.Failures, CheckFailure{
					Subject: fmt.Sprintf("%d", date.Year),
					Error:   msg,
				})
			}
			analysis.YearsChecked++
		}

		analysis.TotalDays++
		stats.Days++
		if err := checkDay(date, tz); err != nil {
			analysis.TotalFailed++
			stats.FailedDays++
			analysis.Failures = append(analysis.Failures, CheckFailure{
				Subject: date.String(),
				Error:   err.Error(),
			})
		}

		progress := (analysis.TotalDays * 100) / totalDays
		if progress != lastProgress && progress%10 == 0 {
			fmt.Printf("  Progress: %d%% (%d/%d) - Failures: %d\n",
				progress, analysis.TotalDays, totalDays, analysis.TotalFailed)
			lastProgress = progress
		}
	}
	if stats != nil && verbose {
		printYearLine(stats)
	}

	fmt.Println()
	return analysis
}

// checkDay round-trips one civil day through the lunar calendar.
func checkDay(date lunar.SolarDate, tz float64) error {
	ld, err := lunar.SolarToLunar(date, tz)
	if err != nil {
		return fmt.Errorf("to lunar: %w", err)
	}
	if ld.Day < 1 || ld.Day > 30 || ld.Month < 1 || ld.Month > 12 {
		return fmt.Errorf("implausible lunar date %v", ld)
	}

	// The first days of the range belong to the last lunar month of the
	// year before the supported span and cannot be converted back.
	if ld.Year < lunar.MinYear {
		return nil
	}

	back, err := lunar.LunarToSolar(ld, tz)
	if err != nil {
		return fmt.Errorf("back to solar: %w", err)
	}
	if back != date {
		return fmt.Errorf("round trip %v -> %v -> %v", date, ld, back)
	}
	return nil
}

// checkYearTable verifies the structure of one lunar year.
func checkYearTable(year int, tz float64) []string {
	var msgs []string
	fail := func(format string, args ...interface{}) {
		msgs = append(msgs, fmt.Sprintf(format, args...))
	}

	months, err := lunar.YearMonths(year, tz)
	if err != nil {
		fail("year table: %v", err)
		return msgs
	}

	if len(months) != 12 && len(months) != 13 {
		fail("year has %d months", len(months))
		return msgs
	}

	leaps := 0
	for i, m := range months {
		if m.Year != year {
			fail("month %d labeled year %d", m.Number, m.Year)
		}
		if m.Days != 29 && m.Days != 30 {
			fail("month %d has %d days", m.Number, m.Days)
		}
		if m.Leap {
			leaps++
			if i == 0 || months[i-1].Number != m.Number {
				fail("leap month %d does not repeat its predecessor", m.Number)
			}
		}
		if i > 0 {
			prev := months[i-1]
			if m.Start != prev.Start+lunar.JDN(prev.Days) {
				fail("month %d does not start where month %d ends", m.Number, prev.Number)
			}
		}
	}

	if leaps > 1 {
		fail("year has %d leap months", leaps)
	}
	if (len(months) == 13) != (leaps == 1) {
		fail("%d months but %d leap months", len(months), leaps)
	}
	if months[0].Number != 1 || months[len(months)-1].Number != 12 {
		fail("year runs %d..%d, want 1..12", months[0].Number, months[len(months)-1].Number)
	}

	// In the Vietnamese zone Tết stays inside January 20 .. February 21.
	// Other offsets shift the civil day, so the bound only holds at +7.
	if tz == lunar.VietnamOffset {
		tet := months[0].Start.Solar()
		if tet.Month == 1 && tet.Day < 20 || tet.Month == 2 && tet.Day > 21 || tet.Month > 2 {
			fail("tết on %v", tet)
		}
	}

	return msgs
}

func printYearLine(stats *YearStats) {
	status := "✓"
	if stats.FailedDays > 0 {
		status = "✗"
	}
	fmt.Printf("  %s %d: %d/%d days ok\n",
		status, stats.Year, stats.Days-stats.FailedDays, stats.Days)
}

func printSummary(analysis *Analysis, elapsed time.Duration) {
	fmt.Println("================================================================")
	fmt.Println("SUMMARY")
	fmt.Println("================================================================")
	fmt.Printf("Days Checked:   %d\n", analysis.TotalDays)
	fmt.Printf("Years Checked:  %d\n", analysis.YearsChecked)
	fmt.Printf("Failures:       %d\n", analysis.TotalFailed)
	fmt.Printf("Elapsed:        %v\n", elapsed.Round(time.Millisecond))
	fmt.Println()

	if analysis.TotalFailed == 0 {
		fmt.Println("No failures.")
		return
	}

	shown := 0
	fmt.Println("Failures (Subject | Error):")
	for _, f := range analysis.Failures {
		if shown >= 50 {
			fmt.Printf("  ... and %d more\n", analysis.TotalFailed-50)
			break
		}
		fmt.Printf("  %s | %s\n", f.Subject, f.Error)
		shown++
	}
	fmt.Println()
}

func saveResults(filename string, analysis *Analysis) {
	output := struct {
		GeneratedAt string    `json:"generated_at"`
		Analysis    *Analysis `json:"analysis"`
	}{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Analysis:    analysis,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling results: %v\n", err)
		return
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		fmt.Printf("Error writing file: %v\n", err)
		return
	}

	fmt.Printf("Results saved to: %s\n", filename)
}
