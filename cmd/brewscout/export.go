package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcanales/brewscout/internal/engine/storage"
)

func runExport(args []string) error {
	var dbPath, outputPath, format string

	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.StringVar(&dbPath, "db", "", "Path to .db file (required)")
	fs.StringVar(&outputPath, "output", "", "Output file path (default: same dir as db)")
	fs.StringVar(&format, "format", "csv", "Export format: csv")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: brewscout export [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  brewscout export -db ./runs/brewscout_20260830_120000.db\n")
		fmt.Fprintf(os.Stderr, "  brewscout export -db shops.db -output shops.csv\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if dbPath == "" {
		return fmt.Errorf("-db is required")
	}

	if format != "csv" {
		return fmt.Errorf("unsupported format: %s (only csv supported)", format)
	}

	// Default output path
	if outputPath == "" {
		dir := filepath.Dir(dbPath)
		base := strings.TrimSuffix(filepath.Base(dbPath), ".db")
		outputPath = filepath.Join(dir, base+".csv")
	}

	store, err := storage.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening db: %w", err)
	}
	defer store.Close()

	shops, err := store.LoadAll()
	if err != nil {
		return fmt.Errorf("loading db: %w", err)
	}

	if len(shops) == 0 {
		return fmt.Errorf("no shops found in database")
	}

	// Export
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	w.Write([]string{
		"name", "address", "lat", "lng", "rating", "review_count",
		"primary_type", "types", "business_status", "place_id",
		"source_grid", "grid_radius_m", "search_level",
	})

	for _, row := range shops {
		p := row.Place
		w.Write([]string{
			p.Name,
			p.Address,
			fmt.Sprintf("%.6f", p.Lat),
			fmt.Sprintf("%.6f", p.Lng),
			fmt.Sprintf("%.1f", p.Rating),
			fmt.Sprintf("%d", p.ReviewCount),
			p.PrimaryType,
			strings.Join(p.Types, "|"),
			string(p.BusinessStatus),
			p.PlaceID,
			row.SourceGridID,
			fmt.Sprintf("%d", row.GridRadius),
			fmt.Sprintf("%d", row.SearchLevel),
		})
	}

	fmt.Fprintf(os.Stderr, "Exported %d shops to %s\n", len(shops), outputPath)
	return nil
}
