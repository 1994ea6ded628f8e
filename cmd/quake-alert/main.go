// Command quake-alert fetches the live feed once and prints each event with
// its severity and, when boundaries are available, its province risk tier.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/mr1hm/go-quake-risk/internal/config"
	"github.com/mr1hm/go-quake-risk/internal/ingestion"
	"github.com/mr1hm/go-quake-risk/internal/logging"
	"github.com/mr1hm/go-quake-risk/internal/overlay"
	"github.com/mr1hm/go-quake-risk/internal/risk"
	"github.com/mr1hm/go-quake-risk/internal/severity"
)

func main() {
	minMag := flag.Float64("min", 0, "only print earthquakes at or above this magnitude")
	noRegions := flag.Bool("no-regions", false, "skip loading province boundaries")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	ctx := context.Background()

	var regions *overlay.Regions
	if !*noRegions {
		regions, err = overlay.LoadRegions(ctx, cfg.Regions.Source, nil)
		if err != nil {
			slog.Warn("province boundaries unavailable", "source", cfg.Regions.Source, "error", err)
		}
	}

	events, err := ingestion.NewClient(cfg.Feed.URL, cfg.Feed.Timeout).Fetch(ctx)
	if err != nil {
		logging.Fatalf("fetch failed: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTIME\tMAG\tDEPTH\tSEVERITY\tPROVINCE\tRISK\tLOCATION")
	for _, e := range events {
		if e.Magnitude < *minMag {
			continue
		}
		province, tier := "-", "-"
		if id, name, ok := regions.Locate(e.Latitude, e.Longitude); ok {
			province = name
			tier = fmt.Sprintf("%d", risk.TierOf(id).Degree())
		}
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%g km\t%s\t%s\t%s\t%s\n",
			e.Date, e.Time, e.Magnitude, e.Depth, severity.TierOf(e.Magnitude), province, tier, e.Location)
	}
	w.Flush()
}
