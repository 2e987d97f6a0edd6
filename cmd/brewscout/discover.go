package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rcanales/brewscout/internal/config"
	"github.com/rcanales/brewscout/internal/engine/discovery"
	"github.com/rcanales/brewscout/internal/engine/filter"
	"github.com/rcanales/brewscout/internal/engine/grid"
	"github.com/rcanales/brewscout/internal/engine/places"
	"github.com/rcanales/brewscout/internal/engine/storage"
	"github.com/rcanales/brewscout/internal/progress"
)

func runDiscover(args []string) error {
	var (
		outputDir  string
		mode       string
		keyword    string
		budget     int
		rateMs     int
		maxDepth   int
		noFilter   bool
		configPath string
		apiKey     string
	)

	fs := flag.NewFlagSet("discover", flag.ExitOnError)
	fs.StringVar(&outputDir, "output", "", "Output directory for run files (required)")
	fs.StringVar(&mode, "mode", "test", "Grid mode: test or production")
	fs.StringVar(&keyword, "keyword", "", "Search keyword (default: from config)")
	fs.IntVar(&budget, "budget", 0, "Max API calls for the run (default: from config)")
	fs.IntVar(&rateMs, "rate-ms", 0, "Delay between searches in ms (default: from config)")
	fs.IntVar(&maxDepth, "max-depth", -1, "Max subdivision depth (default: from config)")
	fs.BoolVar(&noFilter, "no-filter", false, "Keep all raw results, skip classification")
	fs.StringVar(&configPath, "config", "", "Path to YAML config overriding defaults")
	fs.StringVar(&apiKey, "api-key", "", "Google Places API key (default: $BREWSCOUT_API_KEY)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: brewscout discover [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  brewscout discover -mode test -output ./runs\n")
		fmt.Fprintf(os.Stderr, "  brewscout discover -mode production -budget 200 -output ./runs\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Validation
	if outputDir == "" {
		return fmt.Errorf("-output is required")
	}
	if mode != "test" && mode != "production" {
		return fmt.Errorf("-mode must be test or production, got %q", mode)
	}
	if apiKey == "" {
		apiKey = apiKeyFromEnv()
	}
	if apiKey == "" {
		return fmt.Errorf("an API key is required: pass -api-key or set BREWSCOUT_API_KEY")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Flag overrides
	if keyword != "" {
		cfg.Discovery.Keyword = keyword
	}
	if budget > 0 {
		cfg.Discovery.MaxAPICalls = budget
	}
	if rateMs > 0 {
		cfg.Discovery.RateLimitMs = rateMs
	}
	if maxDepth >= 0 {
		cfg.Discovery.MaxDepth = maxDepth
	}

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	// Generate timestamped filenames
	ts := time.Now().Format("20060102_150405")
	baseName := fmt.Sprintf("brewscout_%s", ts)
	dbPath := filepath.Join(outputDir, baseName+".db")
	logPath := filepath.Join(outputDir, baseName+".log")

	// Setup log file
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.LstdFlags)
	logger.Printf("=== Session start: mode=%s keyword=%s budget=%d rate_ms=%d max_depth=%d filter=%t ===",
		mode, cfg.Discovery.Keyword, cfg.Discovery.MaxAPICalls,
		cfg.Discovery.RateLimitMs, cfg.Discovery.MaxDepth, !noFilter)

	fmt.Fprintf(os.Stderr, "Log: %s\n", logPath)

	// Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down gracefully...")
		cancel()
	}()

	// Generate the primary grid
	points := grid.Generate(grid.Mode(mode), cfg.GridConfig())
	fmt.Fprintf(os.Stderr, "Mode: %s grid (%d search points, radius=%dm)\n",
		mode, len(points), cfg.Grid.DefaultRadiusMeters)

	filterCfg, err := cfg.FilterConfig()
	if err != nil {
		return fmt.Errorf("loading filter config: %w", err)
	}

	// Open storage
	store, err := storage.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	discCfg := cfg.DiscoveryConfig()
	discCfg.DisableFiltering = noFilter

	bus := progress.New(0, logger)
	stop := bus.Subscribe(func(ev progress.Event) {
		switch ev.Type {
		case progress.EventSearchComplete:
			fmt.Fprintf(os.Stderr, "  [%s] level=%d found=%d calls=%d\n",
				ev.TaskID, ev.Level, ev.PlacesFound, ev.APICallsUsed)
		case progress.EventSubdivisionCreated:
			fmt.Fprintf(os.Stderr, "  [%s] dense area, subdividing into %d children\n",
				ev.TaskID, len(ev.ChildIDs))
		case progress.EventAbort:
			fmt.Fprintf(os.Stderr, "  run aborted: %s\n", ev.Reason)
		}
	})
	defer stop()

	scheduler := discovery.NewScheduler(
		places.NewClient(apiKey),
		store,
		filter.New(filterCfg),
		bus,
		logger,
		discCfg,
	)

	summary := scheduler.Run(ctx, points)
	stored, _ := store.Count()

	logger.Printf("Done: areas=%d found=%d unique=%d api_calls=%d subdivisions=%d aborted=%t stored=%d",
		summary.AreasSearched, summary.TotalPlacesFound, summary.UniquePlaces,
		summary.APICallsUsed, summary.Subdivisions, summary.Aborted, stored)

	// Print final summary
	status := "Complete"
	if summary.Aborted {
		status = "Aborted (partial results kept)"
	}
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  BrewScout %s\n", status)
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Keyword:      %s\n", cfg.Discovery.Keyword)
	fmt.Fprintf(os.Stderr, "  Areas:        %d (%d subdivisions)\n", summary.AreasSearched, summary.Subdivisions)
	fmt.Fprintf(os.Stderr, "  Found:        %d\n", summary.TotalPlacesFound)
	fmt.Fprintf(os.Stderr, "  Unique:       %d\n", summary.UniquePlaces)
	if !noFilter {
		fmt.Fprintf(os.Stderr, "  Filtered out: %d\n", summary.FilterStats.Original-summary.FilterStats.Final)
	}
	fmt.Fprintf(os.Stderr, "  API calls:    %d/%d\n", summary.APICallsUsed, cfg.Discovery.MaxAPICalls)
	fmt.Fprintf(os.Stderr, "  Duration:     %s\n", summary.Duration.Truncate(time.Second))
	fmt.Fprintf(os.Stderr, "  Database:     %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "  Log:          %s\n", logPath)
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")

	return nil
}
