package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/warmer-colder-service/internal/domain"
	"github.com/couchcryptid/warmer-colder-service/internal/observability"
)

// Client implements domain.Geocoder using the Open-Meteo geocoding API.
// The API needs no authentication; ranking and fuzzy matching are opaque.
type Client struct {
	httpClient *http.Client
	baseURL    string
	language   string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo geocoding client.
func NewClient(baseURL, language string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  baseURL,
		language: language,
		metrics:  metrics,
		logger:   logger,
	}
}

// Search returns up to count candidate places for a free-text query, best
// match first. Zero candidates is a normal outcome, not an error.
func (c *Client) Search(ctx context.Context, query string, count int) ([]domain.Place, error) {
	params := url.Values{
		"name":     {query},
		"count":    {strconv.Itoa(count)},
		"language": {c.language},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("place search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("geocoding API error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(payload.Results) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		c.logger.Debug("place search returned no candidates", "query", query)
		return nil, nil
	}
	c.metrics.GeocodeRequests.WithLabelValues("success").Inc()

	places := make([]domain.Place, 0, len(payload.Results))
	for _, r := range payload.Results {
		places = append(places, domain.Place{
			Name:      r.Name,
			Admin1:    r.Admin1,
			Country:   r.Country,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		})
	}
	return places, nil
}

// Open-Meteo geocoding API response types.

type response struct {
	Results []result `json:"results"`
}

type result struct {
	Name      string  `json:"name"`
	Admin1    string  `json:"admin1"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
