package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/warmer-colder-service/internal/domain"
	"github.com/couchcryptid/warmer-colder-service/internal/observability"
)

// minQueryRunes is the shortest query worth suggesting for; anything shorter
// clears the suggestion list instead.
const minQueryRunes = 3

// Suggestions is one delivery of autosuggest candidates. An empty Places
// slice means "clear the list".
type Suggestions struct {
	Query  string         `json:"query"`
	Places []domain.Place `json:"places"`
}

// Suggester debounces autosuggest queries and keeps at most one request in
// flight: a newer query cancels the previous request, and responses arriving
// after cancellation or supersession are discarded without ever reaching the
// consumer.
type Suggester struct {
	svc      *Service
	debounce time.Duration
	limit    int
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *slog.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	closed bool

	updates chan Suggestions
}

// NewSuggester creates a Suggester delivering at most limit candidates per
// query after the given debounce delay.
func NewSuggester(svc *Service, debounce time.Duration, limit int, metrics *observability.Metrics, logger *slog.Logger) *Suggester {
	return &Suggester{
		svc:      svc,
		debounce: debounce,
		limit:    limit,
		clock:    clockwork.NewRealClock(),
		metrics:  metrics,
		logger:   logger,
		updates:  make(chan Suggestions, 1),
	}
}

// Update registers the latest input text. It cancels any in-flight request,
// and either clears the suggestions (short query) or schedules a debounced
// fetch for the new one. Non-blocking.
func (s *Suggester) Update(query string) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	gen := s.gen

	if utf8.RuneCountInString(query) < minQueryRunes {
		s.mu.Unlock()
		s.deliver(gen, Suggestions{Query: query})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	go s.fetch(ctx, gen, query)
}

// Updates returns the channel on which suggestion deliveries arrive. Only the
// latest undelivered update is retained.
func (s *Suggester) Updates() <-chan Suggestions {
	return s.updates
}

// Close cancels any in-flight request and closes the updates channel, ending
// any consumer ranging over it. Safe to call more than once.
func (s *Suggester) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++ // invalidate anything still racing toward deliver
	close(s.updates)
}

func (s *Suggester) fetch(ctx context.Context, gen uint64, query string) {
	select {
	case <-ctx.Done():
		return
	case <-s.clock.After(s.debounce):
	}

	places, err := s.svc.Suggest(ctx, query, s.limit)
	if err != nil {
		if ctx.Err() != nil {
			s.metrics.StaleResultsDiscarded.WithLabelValues("suggest").Inc()
			return
		}
		// Autosuggest failures are cosmetic; the primary search path reports
		// its own errors.
		s.logger.Debug("autosuggest fetch failed", "query", query, "error", err)
		return
	}

	s.deliver(gen, Suggestions{Query: query, Places: places})
}

// deliver publishes an update unless a newer query has superseded it. The
// updates channel holds only the latest entry; an undelivered older one is
// replaced.
func (s *Suggester) deliver(gen uint64, sug Suggestions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if gen != s.gen {
		s.metrics.StaleResultsDiscarded.WithLabelValues("suggest").Inc()
		return
	}

	select {
	case <-s.updates:
	default:
	}
	s.updates <- sug
}
