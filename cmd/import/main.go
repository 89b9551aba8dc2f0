// Command import loads a festival catalog JSON file into the SQLite database.
//
// Usage:
//
//	go run ./cmd/import -file data/festivals.json -db data/amlich.db
//
// This tool:
// 1. Parses and validates the catalog file
// 2. Creates/opens the SQLite database and runs migrations
// 3. Upserts all festivals in a single transaction
//
// The import is idempotent - entries match on name, so re-running a catalog
// file updates existing rows instead of duplicating them.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/junkeythong/amlichvietnam/internal/database"
)

func main() {
	// Parse command line flags
	filePath := flag.String("file", "data/festivals.json", "Path to festival catalog JSON file")
	dbPath := flag.String("db", "data/amlich.db", "Path to SQLite database")
	dryRun := flag.Bool("dry-run", false, "Validate the catalog without writing to the database")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Setup logger
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// Run import
	if err := run(*filePath, *dbPath, *dryRun, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import complete")
}

func run(filePath, dbPath string, dryRun bool, logger *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	// =========================================================================
	// Step 1: Read and validate the catalog
	// =========================================================================
	logger.Info("reading catalog file", slog.String("path", filePath))

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read catalog file: %w", err)
	}

	var catalog database.ImportData
	if err := json.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	logger.Info("parsed catalog",
		slog.Int("festivals", len(catalog.Festivals)),
		slog.String("source", catalog.Metadata.Source),
		slog.String("generated_at", catalog.Metadata.GeneratedAt),
	)

	var stats importStats
	fests := make([]*database.Festival, 0, len(catalog.Festivals))
	for i, entry := range catalog.Festivals {
		f := entry.ToFestival()
		if err := f.Validate(); err != nil {
			return fmt.Errorf("catalog entry %d (%s): %w", i+1, entry.Name, err)
		}
		stats.count(f)
		fests = append(fests, f)
	}

	if dryRun {
		logger.Info("dry run, skipping database write")
		printSummary(stats, time.Since(startTime))
		return nil
	}

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	logger.Info("opening database", slog.String("path", dbPath))

	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations complete", slog.Int("applied", migrated))

	// =========================================================================
	// Step 3: Import in a transaction
	// =========================================================================
	logger.Info("starting import")

	err = db.WithTx(ctx, func(tx *database.Tx) error {
		for i, f := range fests {
			if err := tx.UpsertFestival(ctx, f); err != nil {
				return fmt.Errorf("import festival %d (%s): %w", i+1, f.Name, err)
			}
			logger.Debug("imported festival",
				slog.String("name", f.Name),
				slog.String("calendar", string(f.Calendar)),
			)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}

	// =========================================================================
	// Step 4: Verify import
	// =========================================================================
	dbStats, err := db.GetFestivalStats(ctx)
	if err != nil {
		return fmt.Errorf("festival stats: %w", err)
	}

	elapsed := time.Since(startTime)

	logger.Info("import verified",
		slog.Int("total", dbStats.Total),
		slog.Int("lunar", dbStats.Lunar),
		slog.Int("solar", dbStats.Solar),
		slog.Int("public_holidays", dbStats.PublicHolidays),
		slog.Duration("elapsed", elapsed),
	)

	printSummary(stats, elapsed)
	return nil
}

// importStats tracks what the catalog file contained.
type importStats struct {
	Total          int
	Lunar          int
	Solar          int
	PublicHolidays int
}

func (s *importStats) count(f *database.Festival) {
	s.Total++
	switch f.Calendar {
	case database.CalendarLunar:
		s.Lunar++
	case database.CalendarSolar:
		s.Solar++
	}
	if f.IsPublicHoliday {
		s.PublicHolidays++
	}
}

func printSummary(stats importStats, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("Festivals:        %d\n", stats.Total)
	fmt.Printf("Lunar calendar:   %d\n", stats.Lunar)
	fmt.Printf("Solar calendar:   %d\n", stats.Solar)
	fmt.Printf("Public holidays:  %d\n", stats.PublicHolidays)
	fmt.Printf("Time elapsed:     %v\n", elapsed.Round(time.Millisecond))
}
