package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoMatch indicates the place search returned zero candidates.
	ErrNoMatch = errors.New("no matching location found")

	// ErrNoData indicates the forecast response carried no usable hourly series.
	ErrNoData = errors.New("no hourly data available")
)

// Place is one candidate returned by the place-name search.
type Place struct {
	Name      string  `json:"name"`
	Admin1    string  `json:"admin1,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DisplayName joins the non-empty name parts with commas,
// e.g. "Berlin, Land Berlin, Germany".
func (p Place) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Name, p.Admin1, p.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// RecentEntry is one remembered selection in the recents store.
type RecentEntry struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Sample holds one hour's observed values. A nil field means the value is
// unavailable for that hour.
type Sample struct {
	Temp   *float64 `json:"temp"`
	Wind   *float64 `json:"wind"`
	Precip *float64 `json:"precip"`
}

// RawSeries is the parallel hourly time series fetched from the forecast
// service: one entry per hour spanning one trailing day plus the forecast
// days. Zone is the location's own timezone as reported by the service and is
// used for display labels only; hour identity never depends on it.
type RawSeries struct {
	Times  []time.Time
	Temp   []*float64
	Wind   []*float64
	Precip []*float64
	Zone   *time.Location
}

// Validate checks the parallel-array invariant: all four sequences must have
// equal, non-zero length.
func (s RawSeries) Validate() error {
	n := len(s.Times)
	if n == 0 {
		return fmt.Errorf("empty time series: %w", ErrNoData)
	}
	if len(s.Temp) != n || len(s.Wind) != n || len(s.Precip) != n {
		return fmt.Errorf("parallel array length mismatch (time=%d temp=%d wind=%d precip=%d): %w",
			n, len(s.Temp), len(s.Wind), len(s.Precip), ErrNoData)
	}
	return nil
}

// Geocoder is the place-name search collaborator.
type Geocoder interface {
	// Search returns up to count candidate places for a free-text query,
	// best match first. An empty result is not an error.
	Search(ctx context.Context, query string, count int) ([]Place, error)
}

// ForecastSource is the coordinate-based hourly weather collaborator.
type ForecastSource interface {
	FetchHourly(ctx context.Context, lat, lon float64) (RawSeries, error)
}

// RecentsStore is the durable recent-selections collaborator. The core only
// writes to it as a side effect of a successful search and never depends on
// its contents for correctness.
type RecentsStore interface {
	Save(ctx context.Context, entry RecentEntry) error
	List(ctx context.Context) ([]RecentEntry, error)
}
