// Package search orchestrates the comparison flow: place lookup, hourly
// fetch, schedule alignment, classification, and the recents side effect.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/warmer-colder-service/internal/domain"
	"github.com/couchcryptid/warmer-colder-service/internal/observability"
)

// Row is one classified schedule entry: the core's HourRecord plus the
// verdicts and display strings derived from it. Renderers consume these
// as-is and never re-derive deltas, verdicts, or formatting.
type Row struct {
	domain.HourRecord
	TempVerdict domain.TempVerdict `json:"tempVerdict"`
	WindPhrase  string             `json:"windPhrase"`
	RealFeel    string             `json:"realFeel"`
	TempTrend   string             `json:"tempTrend"`

	TempText        string `json:"tempText"`
	WindText        string `json:"windText"`
	PrecipText      string `json:"precipText"`
	TempDeltaText   string `json:"tempDeltaText"`
	WindDeltaText   string `json:"windDeltaText"`
	PrecipDeltaText string `json:"precipDeltaText"`
	WindDeltaSign   string `json:"windDeltaSign"`
	PrecipDeltaSign string `json:"precipDeltaSign"`
}

// Comparison is the complete result of one search: the resolved place and its
// classified hourly schedule.
type Comparison struct {
	Place        domain.Place `json:"place"`
	DisplayName  string       `json:"displayName"`
	Rows         []Row        `json:"rows"`
	DroppedHours int          `json:"droppedHours"`
	BuiltAt      time.Time    `json:"builtAt"`
}

// Service wires the external collaborators into the comparison flow. Methods
// are safe for concurrent use.
type Service struct {
	geocoder  domain.Geocoder
	forecasts domain.ForecastSource
	recents   domain.RecentsStore
	horizon   int
	metrics   *observability.Metrics
	logger    *slog.Logger
	ready     atomic.Bool
}

// NewService creates a Service. recents may be nil to disable the recent-list
// side effect.
func NewService(geocoder domain.Geocoder, forecasts domain.ForecastSource, recents domain.RecentsStore, horizon int, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		geocoder:  geocoder,
		forecasts: forecasts,
		recents:   recents,
		horizon:   horizon,
		metrics:   metrics,
		logger:    logger,
	}
}

// Suggest returns up to count autosuggest candidates for a partial query.
func (s *Service) Suggest(ctx context.Context, query string, count int) ([]domain.Place, error) {
	return s.geocoder.Search(ctx, query, count)
}

// Compare resolves a free-text query to its best place match and builds the
// comparison schedule for it. Returns domain.ErrNoMatch when the place search
// has no candidates.
func (s *Service) Compare(ctx context.Context, query string) (*Comparison, error) {
	places, err := s.geocoder.Search(ctx, query, 1)
	if err != nil {
		s.metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("resolve place %q: %w", query, err)
	}
	if len(places) == 0 {
		s.metrics.SearchesTotal.WithLabelValues("no_match").Inc()
		return nil, fmt.Errorf("resolve place %q: %w", query, domain.ErrNoMatch)
	}
	return s.ComparePlace(ctx, places[0])
}

// ComparePlace builds the comparison schedule for an already-resolved place,
// the path used by recent-list shortcuts and background refreshes.
func (s *Service) ComparePlace(ctx context.Context, place domain.Place) (*Comparison, error) {
	start := time.Now()

	series, err := s.forecasts.FetchHourly(ctx, place.Latitude, place.Longitude)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			s.metrics.SearchesTotal.WithLabelValues("no_data").Inc()
		} else {
			s.metrics.SearchesTotal.WithLabelValues("error").Inc()
		}
		return nil, fmt.Errorf("fetch hourly series for %s: %w", place.DisplayName(), err)
	}

	index := domain.BuildIndex(series)
	records, dropped := domain.BuildSchedule(index, domain.Now(), s.horizon, series.Zone)
	if dropped > 0 {
		s.metrics.ScheduleHoursDropped.Add(float64(dropped))
		s.logger.Warn("schedule has hours without data",
			"place", place.DisplayName(), "dropped", dropped, "produced", len(records))
	}

	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			HourRecord:  r,
			TempVerdict: domain.ClassifyTemp(r.Delta.Temp),
			WindPhrase:  domain.ClassifyWind(r.Delta.Wind),
			RealFeel:    domain.RealFeel(r.Delta.Temp, r.Delta.Wind),
			TempTrend:   domain.TempTrend(r.Delta.Temp),

			TempText:        domain.FormatTemp(r.Today.Temp),
			WindText:        domain.FormatWhole(r.Today.Wind),
			PrecipText:      domain.FormatOneDecimal(r.Today.Precip),
			TempDeltaText:   domain.FormatTempDelta(r.Delta.Temp),
			WindDeltaText:   domain.FormatSignedDelta(r.Delta.Wind, " km/h"),
			PrecipDeltaText: domain.FormatSignedDelta(r.Delta.Precip, " mm"),
			WindDeltaSign:   domain.SignClass(r.Delta.Wind),
			PrecipDeltaSign: domain.SignClass(r.Delta.Precip),
		})
	}

	cmp := &Comparison{
		Place:        place,
		DisplayName:  place.DisplayName(),
		Rows:         rows,
		DroppedHours: dropped,
		BuiltAt:      domain.Now(),
	}

	s.saveRecent(ctx, cmp)

	s.ready.Store(true)
	s.metrics.ServiceReady.Set(1)
	s.metrics.SearchesTotal.WithLabelValues("success").Inc()
	s.metrics.ScheduleBuildDuration.Observe(time.Since(start).Seconds())
	return cmp, nil
}

// Recent returns the stored recent selections, most recent first.
func (s *Service) Recent(ctx context.Context) ([]domain.RecentEntry, error) {
	if s.recents == nil {
		return nil, nil
	}
	return s.recents.List(ctx)
}

// CheckReadiness returns nil once the service has completed at least one
// comparison, or an error describing why it is not yet ready.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no comparison has been completed yet")
	}
	return nil
}

// saveRecent records the selection as a best-effort side effect; failures are
// logged and counted but never fail the search.
func (s *Service) saveRecent(ctx context.Context, cmp *Comparison) {
	if s.recents == nil {
		return
	}
	entry := domain.RecentEntry{
		Name:      cmp.DisplayName,
		Latitude:  cmp.Place.Latitude,
		Longitude: cmp.Place.Longitude,
	}
	if err := s.recents.Save(ctx, entry); err != nil {
		s.metrics.RecentWriteFailures.Inc()
		s.logger.Warn("failed to save recent entry", "name", entry.Name, "error", err)
	}
}
