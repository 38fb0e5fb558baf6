package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/couchcryptid/warmer-colder-service/internal/domain"
	"github.com/couchcryptid/warmer-colder-service/internal/observability"
)

// hourLayout is the timestamp format Open-Meteo uses for hourly series when
// a timezone parameter is set: local wall-clock time without a zone suffix.
const hourLayout = "2006-01-02T15:04"

// hourlyVariables are the series requested from the forecast API.
var hourlyVariables = []string{"temperature_2m", "precipitation", "windspeed_10m"}

// Client implements domain.ForecastSource using the Open-Meteo forecast API.
type Client struct {
	baseURL      string
	pastDays     int
	forecastDays int
	httpCfg      HTTPClientConfig
	circuit      *gobreaker.CircuitBreaker
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewClient creates an Open-Meteo forecast client. pastDays controls how much
// trailing history is fetched so each forecast hour has a same-hour-yesterday
// counterpart.
func NewClient(baseURL string, timeout time.Duration, pastDays, forecastDays int, metrics *observability.Metrics, logger *slog.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL:      baseURL,
		pastDays:     pastDays,
		forecastDays: forecastDays,
		httpCfg: HTTPClientConfig{
			Client: &http.Client{Timeout: timeout},
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchHourly requests the hourly series for the given coordinates. The
// timezone is resolved by the service itself ("auto"), and hour timestamps
// are parsed in the UTC offset the response reports, so hour keys never
// depend on the caller's local zone.
func (c *Client) FetchHourly(ctx context.Context, lat, lon float64) (domain.RawSeries, error) {
	buildRequest := func() (*http.Request, error) {
		params := url.Values{}
		params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
		params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
		params.Set("timezone", "auto")
		params.Set("past_days", strconv.Itoa(c.pastDays))
		params.Set("forecast_days", strconv.Itoa(c.forecastDays))
		params.Set("hourly", strings.Join(hourlyVariables, ","))

		req, err := http.NewRequest(http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	start := time.Now()
	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	c.metrics.ForecastAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		return domain.RawSeries{}, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		return domain.RawSeries{}, fmt.Errorf("decode forecast response: %w", err)
	}

	series, err := payload.toSeries()
	if err != nil {
		c.metrics.ForecastRequests.WithLabelValues("error").Inc()
		return domain.RawSeries{}, err
	}

	c.metrics.ForecastRequests.WithLabelValues("success").Inc()
	c.logger.Debug("fetched hourly series",
		"hours", len(series.Times), "timezone", payload.Timezone, "lat", lat, "lon", lon)
	return series, nil
}

// Open-Meteo forecast API response types.

type forecastResponse struct {
	Timezone         string      `json:"timezone"`
	UTCOffsetSeconds int         `json:"utc_offset_seconds"`
	Hourly           hourlyBlock `json:"hourly"`
}

type hourlyBlock struct {
	Time          []string   `json:"time"`
	Temperature   []*float64 `json:"temperature_2m"`
	Precipitation []*float64 `json:"precipitation"`
	WindSpeed     []*float64 `json:"windspeed_10m"`
}

// toSeries converts the wire payload into a validated domain series, parsing
// timestamps in the zone the service itself reported.
func (r forecastResponse) toSeries() (domain.RawSeries, error) {
	if len(r.Hourly.Time) == 0 {
		return domain.RawSeries{}, fmt.Errorf("forecast response has no hourly block: %w", domain.ErrNoData)
	}

	zoneName := r.Timezone
	if zoneName == "" {
		zoneName = "UTC"
	}
	zone := time.FixedZone(zoneName, r.UTCOffsetSeconds)

	times := make([]time.Time, len(r.Hourly.Time))
	for i, raw := range r.Hourly.Time {
		t, err := time.ParseInLocation(hourLayout, raw, zone)
		if err != nil {
			return domain.RawSeries{}, fmt.Errorf("parse hourly timestamp %q: %w", raw, err)
		}
		times[i] = t
	}

	series := domain.RawSeries{
		Times:  times,
		Temp:   r.Hourly.Temperature,
		Wind:   r.Hourly.WindSpeed,
		Precip: r.Hourly.Precipitation,
		Zone:   zone,
	}
	if err := series.Validate(); err != nil {
		return domain.RawSeries{}, err
	}
	return series, nil
}
