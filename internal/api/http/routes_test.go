package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/warmer-colder-service/internal/domain"
	"github.com/couchcryptid/warmer-colder-service/internal/observability"
	"github.com/couchcryptid/warmer-colder-service/internal/search"
)

type stubGeocoder struct {
	places []domain.Place
	err    error
}

func (g *stubGeocoder) Search(_ context.Context, _ string, _ int) ([]domain.Place, error) {
	return g.places, g.err
}

type stubForecasts struct {
	series domain.RawSeries
	err    error
}

func (f *stubForecasts) FetchHourly(_ context.Context, _, _ float64) (domain.RawSeries, error) {
	return f.series, f.err
}

func fp(v float64) *float64 { return &v }

func testSeries(start time.Time, n int) domain.RawSeries {
	s := domain.RawSeries{
		Times:  make([]time.Time, n),
		Temp:   make([]*float64, n),
		Wind:   make([]*float64, n),
		Precip: make([]*float64, n),
		Zone:   time.UTC,
	}
	for i := 0; i < n; i++ {
		s.Times[i] = start.Add(time.Duration(i) * time.Hour)
		s.Temp[i] = fp(10 + float64(i))
		s.Wind[i] = fp(float64(i))
		s.Precip[i] = fp(0)
	}
	return s
}

var berlin = domain.Place{Name: "Berlin", Country: "Germany", Latitude: 52.52, Longitude: 13.41}

func newTestServer(geo domain.Geocoder, fc domain.ForecastSource) (*Server, *search.Suggester) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := observability.NewMetricsForTesting()
	svc := search.NewService(geo, fc, nil, 24, m, logger)
	session := search.NewSession(svc, m, logger)
	suggester := search.NewSuggester(svc, time.Millisecond, 5, m, logger)
	return NewServer(":0", session, svc, suggester, logger), suggester
}

func doRequest(t *testing.T, srv *Server, target string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestSearchEndpoint(t *testing.T) {
	srv, _ := newTestServer(&stubGeocoder{places: []domain.Place{berlin}}, &stubForecasts{})

	resp := doRequest(t, srv, "/api/v1/search?q=ber")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Query  string         `json:"query"`
		Places []domain.Place `json:"places"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, "ber", body.Query)
	require.Len(t, body.Places, 1)
	assert.Equal(t, "Berlin", body.Places[0].Name)
}

func TestSearchEndpointValidation(t *testing.T) {
	srv, _ := newTestServer(&stubGeocoder{}, &stubForecasts{})

	resp := doRequest(t, srv, "/api/v1/search")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, srv, "/api/v1/search?q=ber&count=50")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchEndpointNoResultsIsEmptyList(t *testing.T) {
	srv, _ := newTestServer(&stubGeocoder{}, &stubForecasts{})

	resp := doRequest(t, srv, "/api/v1/search?q=xyzzy")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Places []domain.Place `json:"places"`
	}
	decodeBody(t, resp, &body)
	assert.NotNil(t, body.Places)
	assert.Empty(t, body.Places)
}

func TestCompareByQuery(t *testing.T) {
	now := time.Date(2024, 4, 27, 0, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(now))
	defer domain.SetClock(nil)

	geo := &stubGeocoder{places: []domain.Place{berlin}}
	fc := &stubForecasts{series: testSeries(now.Add(-24*time.Hour), 48)}
	srv, _ := newTestServer(geo, fc)

	resp := doRequest(t, srv, "/api/v1/compare?q=berlin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cmp search.Comparison
	decodeBody(t, resp, &cmp)
	assert.Equal(t, "Berlin, Germany", cmp.DisplayName)
	require.Len(t, cmp.Rows, 24)
	require.NotNil(t, cmp.Rows[0].Delta.Temp)
	assert.Equal(t, 24.0, *cmp.Rows[0].Delta.Temp)
	assert.Equal(t, domain.VerdictWarmer, cmp.Rows[0].TempVerdict)
}

func TestCompareByCoordinates(t *testing.T) {
	now := time.Date(2024, 4, 27, 0, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(now))
	defer domain.SetClock(nil)

	fc := &stubForecasts{series: testSeries(now.Add(-24*time.Hour), 48)}
	srv, _ := newTestServer(&stubGeocoder{}, fc)

	resp := doRequest(t, srv, "/api/v1/compare?lat=52.52&lon=13.41&name=Berlin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cmp search.Comparison
	decodeBody(t, resp, &cmp)
	assert.Equal(t, "Berlin", cmp.DisplayName)
	assert.Equal(t, 52.52, cmp.Place.Latitude)
}

func TestCompareValidation(t *testing.T) {
	srv, _ := newTestServer(&stubGeocoder{}, &stubForecasts{})

	cases := []struct {
		name   string
		target string
	}{
		{"no parameters", "/api/v1/compare"},
		{"latitude missing", "/api/v1/compare?lon=13.41"},
		{"latitude not a number", "/api/v1/compare?lat=abc&lon=13.41"},
		{"latitude out of range", "/api/v1/compare?lat=123&lon=13.41"},
		{"longitude out of range", "/api/v1/compare?lat=52.52&lon=999"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, srv, tc.target)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCompareNoMatchReturns404(t *testing.T) {
	srv, _ := newTestServer(&stubGeocoder{}, &stubForecasts{})

	resp := doRequest(t, srv, "/api/v1/compare?q=xyzzyplugh")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "no place matches the query", body["error"])
}

func TestCompareNoDataReturns502(t *testing.T) {
	geo := &stubGeocoder{places: []domain.Place{berlin}}
	fc := &stubForecasts{err: domain.ErrNoData}
	srv, _ := newTestServer(geo, fc)

	resp := doRequest(t, srv, "/api/v1/compare?q=berlin")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestCurrentEndpoint(t *testing.T) {
	now := time.Date(2024, 4, 27, 0, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(now))
	defer domain.SetClock(nil)

	geo := &stubGeocoder{places: []domain.Place{berlin}}
	fc := &stubForecasts{series: testSeries(now.Add(-24*time.Hour), 48)}
	srv, _ := newTestServer(geo, fc)

	// Nothing published before the first search.
	resp := doRequest(t, srv, "/api/v1/current")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, srv, "/api/v1/compare?q=berlin")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The published comparison is now served without an upstream fetch.
	resp = doRequest(t, srv, "/api/v1/current")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cmp search.Comparison
	decodeBody(t, resp, &cmp)
	assert.Equal(t, "Berlin, Germany", cmp.DisplayName)
	require.Len(t, cmp.Rows, 24)
}

func TestSuggestEndpointFeedsStream(t *testing.T) {
	geo := &stubGeocoder{places: []domain.Place{berlin}}
	srv, suggester := newTestServer(geo, &stubForecasts{})
	defer suggester.Close()

	resp := doRequest(t, srv, "/api/v1/suggest?q=ber")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case sug := <-suggester.Updates():
		assert.Equal(t, "ber", sug.Query)
		require.Len(t, sug.Places, 1)
		assert.Equal(t, "Berlin", sug.Places[0].Name)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for suggestion delivery")
	}
}

func TestSuggestEndpointShortQueryClears(t *testing.T) {
	srv, suggester := newTestServer(&stubGeocoder{}, &stubForecasts{})
	defer suggester.Close()

	resp := doRequest(t, srv, "/api/v1/suggest?q=be")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case sug := <-suggester.Updates():
		assert.Equal(t, "be", sug.Query)
		assert.Empty(t, sug.Places)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for clear delivery")
	}
}

func TestSSEEventFraming(t *testing.T) {
	event, err := sseEvent(search.Suggestions{Query: "ber", Places: []domain.Place{berlin}})
	require.NoError(t, err)
	assert.True(t, len(event) > 0)
	assert.Contains(t, string(event), `"query":"ber"`)
	assert.Contains(t, string(event), `"Berlin"`)
	assert.Equal(t, "data: ", string(event[:6]))
	assert.Equal(t, "\n\n", string(event[len(event)-2:]))

	// A clear is sent as an empty list, never null.
	event, err = sseEvent(search.Suggestions{Query: "be"})
	require.NoError(t, err)
	assert.Contains(t, string(event), `"places":[]`)
}

func TestRecentEndpoint(t *testing.T) {
	srv, _ := newTestServer(&stubGeocoder{}, &stubForecasts{})

	resp := doRequest(t, srv, "/api/v1/recent")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Entries []domain.RecentEntry `json:"entries"`
	}
	decodeBody(t, resp, &body)
	assert.NotNil(t, body.Entries)
	assert.Empty(t, body.Entries)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(&stubGeocoder{}, &stubForecasts{})

	resp := doRequest(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzFlipsAfterFirstComparison(t *testing.T) {
	now := time.Date(2024, 4, 27, 0, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(now))
	defer domain.SetClock(nil)

	geo := &stubGeocoder{places: []domain.Place{berlin}}
	fc := &stubForecasts{series: testSeries(now.Add(-24*time.Hour), 48)}
	srv, _ := newTestServer(geo, fc)

	resp := doRequest(t, srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = doRequest(t, srv, "/api/v1/compare?q=berlin")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, srv, "/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "ready", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(&stubGeocoder{}, &stubForecasts{})

	resp := doRequest(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "go_goroutines")
}
