package search

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/warmer-colder-service/internal/domain"
	"github.com/couchcryptid/warmer-colder-service/internal/observability"
)

// scriptedGeocoder echoes the query back as a single place. Queries listed in
// block park until their context is cancelled, and every call is announced on
// entered before anything else happens.
type scriptedGeocoder struct {
	entered chan string
	block   map[string]bool
}

func (g *scriptedGeocoder) Search(ctx context.Context, query string, _ int) ([]domain.Place, error) {
	if g.entered != nil {
		g.entered <- query
	}
	if g.block[query] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return []domain.Place{{Name: query}}, nil
}

func newTestSuggester(geo domain.Geocoder, debounce time.Duration) (*Suggester, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	svc := NewService(geo, &stubForecasts{}, nil, 24, m, testLogger())
	return NewSuggester(svc, debounce, 5, m, testLogger()), m
}

func receiveSuggestions(t *testing.T, s *Suggester) Suggestions {
	t.Helper()
	select {
	case sug := <-s.Updates():
		return sug
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for suggestions")
		return Suggestions{}
	}
}

func TestSuggester_DebouncedFetch(t *testing.T) {
	geo := &scriptedGeocoder{}
	s, _ := newTestSuggester(geo, 180*time.Millisecond)
	defer s.Close()

	fc := clockwork.NewFakeClock()
	s.clock = fc

	s.Update("berlin")

	// Nothing is fetched until the debounce window elapses.
	fc.BlockUntil(1)
	select {
	case sug := <-s.Updates():
		t.Fatalf("unexpected early delivery: %+v", sug)
	default:
	}

	fc.Advance(180 * time.Millisecond)
	sug := receiveSuggestions(t, s)
	assert.Equal(t, "berlin", sug.Query)
	require.Len(t, sug.Places, 1)
	assert.Equal(t, "berlin", sug.Places[0].Name)
}

func TestSuggester_ShortQueryClearsImmediately(t *testing.T) {
	geo := &scriptedGeocoder{}
	s, _ := newTestSuggester(geo, time.Hour)
	defer s.Close()

	s.Update("be")

	sug := receiveSuggestions(t, s)
	assert.Equal(t, "be", sug.Query)
	assert.Empty(t, sug.Places)
}

func TestSuggester_NewerQueryCancelsInFlight(t *testing.T) {
	geo := &scriptedGeocoder{
		entered: make(chan string, 2),
		block:   map[string]bool{"berlin": true},
	}
	s, m := newTestSuggester(geo, time.Millisecond)
	defer s.Close()

	s.Update("berlin")
	require.Equal(t, "berlin", <-geo.entered)

	// The replacement cancels the parked request; only the newer query is
	// ever delivered.
	s.Update("munich")
	require.Equal(t, "munich", <-geo.entered)

	sug := receiveSuggestions(t, s)
	assert.Equal(t, "munich", sug.Query)
	require.Len(t, sug.Places, 1)

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.StaleResultsDiscarded.WithLabelValues("suggest")) == 1.0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSuggester_UpdatesChannelKeepsOnlyLatest(t *testing.T) {
	geo := &scriptedGeocoder{}
	s, _ := newTestSuggester(geo, time.Hour)
	defer s.Close()

	// Two clears in a row without a consumer: the first is replaced.
	s.Update("ab")
	s.Update("cd")

	sug := receiveSuggestions(t, s)
	assert.Equal(t, "cd", sug.Query)

	select {
	case extra := <-s.Updates():
		t.Fatalf("unexpected second delivery: %+v", extra)
	default:
	}
}

func TestSuggester_CloseEndsConsumers(t *testing.T) {
	geo := &scriptedGeocoder{}
	s, _ := newTestSuggester(geo, time.Hour)

	s.Close()
	s.Close() // idempotent

	select {
	case _, ok := <-s.Updates():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("updates channel not closed")
	}
}

func TestSuggester_WhitespaceOnlyQueryClears(t *testing.T) {
	geo := &scriptedGeocoder{}
	s, _ := newTestSuggester(geo, time.Hour)
	defer s.Close()

	s.Update("   ")

	sug := receiveSuggestions(t, s)
	assert.Empty(t, sug.Query)
	assert.Empty(t, sug.Places)
}
