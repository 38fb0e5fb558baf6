// Command compare runs a single place search and prints the hour-by-hour
// comparison against the same hours yesterday, grouped by day.
//
// Usage:
//
//	go run ./cmd/compare -q "berlin" -hours 48
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/warmer-colder-service/internal/adapter/geocoding"
	"github.com/couchcryptid/warmer-colder-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/warmer-colder-service/internal/domain"
	"github.com/couchcryptid/warmer-colder-service/internal/observability"
	"github.com/couchcryptid/warmer-colder-service/internal/search"
)

func main() {
	query := flag.String("q", "", "place to search for")
	hours := flag.Int("hours", domain.DefaultHorizonHours, "number of forecast hours to compare")
	geocodingURL := flag.String("geocoding-url", "https://geocoding-api.open-meteo.com/v1/search", "geocoding API base URL")
	forecastURL := flag.String("forecast-url", "https://api.open-meteo.com/v1/forecast", "forecast API base URL")
	language := flag.String("lang", "en", "geocoding result language")
	timeout := flag.Duration("timeout", 30*time.Second, "overall request timeout")
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "usage: compare -q <place> [-hours n]")
		os.Exit(2)
	}
	if *hours < 1 || *hours > domain.DefaultHorizonHours {
		fmt.Fprintf(os.Stderr, "hours must be between 1 and %d\n", domain.DefaultHorizonHours)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics()

	geocoder := geocoding.NewClient(*geocodingURL, *language, 5*time.Second, metrics, logger)
	forecasts := openmeteo.NewClient(*forecastURL, 10*time.Second, 1, 7, metrics, logger)
	svc := search.NewService(geocoder, forecasts, nil, *hours, metrics, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cmp, err := svc.Compare(ctx, *query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compare: %v\n", err)
		os.Exit(1)
	}

	printComparison(os.Stdout, cmp)
}

func printComparison(w io.Writer, cmp *search.Comparison) {
	fmt.Fprintf(w, "%s  (%.4f, %.4f)\n", cmp.DisplayName, cmp.Place.Latitude, cmp.Place.Longitude)
	if cmp.DroppedHours > 0 {
		fmt.Fprintf(w, "note: %d hours in the window had no data\n", cmp.DroppedHours)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range cmp.Rows {
		if row.StartsDay {
			tw.Flush()
			fmt.Fprintf(w, "\n%s\n", row.DateLabel)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n",
			row.HourLabel,
			row.TempText,
			row.TempDeltaText,
			row.RealFeel,
			row.WindDeltaText,
			row.PrecipDeltaText,
		)
	}
	tw.Flush()
}
