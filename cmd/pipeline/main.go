// Command pipeline runs the roster enrichment pipeline end to end.
//
// Usage:
//
//	go run ./cmd/pipeline \
//	  --input data/roster.csv \
//	  --output output \
//	  --verbose
//
// Configuration beyond the flags comes from the environment or a .env
// file: LLM_API_KEY, LLM_PROVIDER, LLM_MODEL, SECTOR_TABLE, PARTY_TABLE,
// and the rate-limit knobs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lzy234/dataprocessing"
)

func main() {
	var (
		input       = flag.String("input", "", "Path to the roster CSV (default: $INPUT_CSV)")
		output      = flag.String("output", "", "Output directory (default: $OUTPUT_DIR)")
		noWikipedia = flag.Bool("no-wikipedia", false, "Skip biography fetching and enrichment")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	cfg, err := dataprocessing.LoadConfig()
	if err != nil {
		fatal(err)
	}
	if *input != "" {
		cfg.InputPath = *input
	}
	if *output != "" {
		cfg.OutputDir = *output
	}
	if *noWikipedia {
		cfg.SkipWikipedia = true
	}

	pipeline, err := dataprocessing.New(cfg)
	if err != nil {
		fatal(err)
	}
	defer pipeline.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := pipeline.Run(ctx)
	if err != nil {
		if errors.Is(err, dataprocessing.ErrValidationFailed) && summary != nil {
			fmt.Fprintf(os.Stderr, "validation failed: %d errors, %d warnings (see %s)\n",
				len(summary.Report.Errors), len(summary.Report.Warnings), summary.OutputDir)
			os.Exit(2)
		}
		fatal(err)
	}

	fmt.Printf("processed %d people into %d organizations, %d parties, %d sectors in %s\n",
		summary.People, summary.Organizations, summary.Parties, summary.Sectors,
		summary.Elapsed.Round(100*time.Millisecond))
	fmt.Printf("output written to %s\n", summary.OutputDir)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
