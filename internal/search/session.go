package search

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/warmer-colder-service/internal/domain"
	"github.com/couchcryptid/warmer-colder-service/internal/observability"
)

// Session owns the currently displayed comparison. Search submissions are
// tagged with a monotonic sequence number so that when searches overlap, the
// last completed one wins and completions superseded by a newer publication
// are discarded rather than flashing stale results.
type Session struct {
	svc     *Service
	metrics *observability.Metrics
	logger  *slog.Logger

	seq atomic.Uint64

	mu         sync.Mutex
	current    *Comparison
	currentSeq uint64
}

// NewSession creates a Session around the given service.
func NewSession(svc *Service, metrics *observability.Metrics, logger *slog.Logger) *Session {
	return &Session{
		svc:     svc,
		metrics: metrics,
		logger:  logger,
	}
}

// Submit runs a free-text search and publishes its result unless a
// later-submitted search already published. The caller always receives its
// own result or error; Current reflects only the winning one.
func (s *Session) Submit(ctx context.Context, query string) (*Comparison, error) {
	id := s.seq.Add(1)
	cmp, err := s.svc.Compare(ctx, query)
	if err != nil {
		return nil, err
	}
	s.publish(id, cmp)
	return cmp, nil
}

// SubmitPlace runs a coordinate search (recent-chip or suggestion selection)
// under the same sequence discipline as Submit.
func (s *Session) SubmitPlace(ctx context.Context, place domain.Place) (*Comparison, error) {
	id := s.seq.Add(1)
	cmp, err := s.svc.ComparePlace(ctx, place)
	if err != nil {
		return nil, err
	}
	s.publish(id, cmp)
	return cmp, nil
}

// Current returns the most recently published comparison, or nil before the
// first successful search.
func (s *Session) Current() *Comparison {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) publish(id uint64, cmp *Comparison) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id <= s.currentSeq {
		s.metrics.StaleResultsDiscarded.WithLabelValues("search").Inc()
		s.logger.Debug("discarding stale search result",
			"seq", id, "current_seq", s.currentSeq, "place", cmp.DisplayName)
		return
	}
	s.current = cmp
	s.currentSeq = id
}
