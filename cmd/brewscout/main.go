package main

import (
	"fmt"
	"os"

	"github.com/rcanales/brewscout/internal/config"
	"github.com/rcanales/brewscout/internal/tui"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[0] != "" {
		switch os.Args[1] {
		case "discover":
			if err := runDiscover(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "export":
			if err := runExport(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "version":
			fmt.Println("brewscout " + version)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	// No subcommand → launch TUI
	apiKey := apiKeyFromEnv()
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "error: set BREWSCOUT_API_KEY (or GOOGLE_MAPS_API_KEY) to launch the interface")
		os.Exit(1)
	}
	if err := tui.Run(config.Default(), apiKey, "./runs"); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func apiKeyFromEnv() string {
	if k := os.Getenv("BREWSCOUT_API_KEY"); k != "" {
		return k
	}
	return os.Getenv("GOOGLE_MAPS_API_KEY")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `brewscout - independent coffee shop discovery

Usage:
  brewscout                  Launch interactive TUI
  brewscout discover [flags] Run headless discovery
  brewscout export [flags]   Export .db to CSV
  brewscout version          Show version

Run 'brewscout discover --help' or 'brewscout export --help' for flags.
`)
}
