// Package scheduler periodically rebuilds the comparison for the most recent
// selection so the published schedule tracks fresh forecast data.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/couchcryptid/warmer-colder-service/internal/domain"
	"github.com/couchcryptid/warmer-colder-service/internal/search"
)

// refreshTimeout bounds one background refresh, geocoding excluded since the
// place is already resolved.
const refreshTimeout = 30 * time.Second

// Scheduler re-runs the latest comparison on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	session   *search.Session
	recents   domain.RecentsStore
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a Scheduler. A zero interval disables scheduling entirely.
func New(session *search.Session, recents domain.RecentsStore, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		session:   session,
		recents:   recents,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic refresh job and starts the underlying
// scheduler. Returns immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("background refresh disabled")
		return nil
	}

	if _, err := s.scheduler.Every(s.interval).Do(s.refresh); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("background refresh started", "interval", s.interval)
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// refresh rebuilds the comparison for the most recently selected place. The
// session's sequence discipline keeps a refresh from clobbering a newer
// interactive search that finishes after it.
func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	entries, err := s.recents.List(ctx)
	if err != nil {
		s.logger.Warn("refresh skipped, recents unavailable", "error", err)
		return
	}
	if len(entries) == 0 {
		return
	}

	latest := entries[0]
	place := domain.Place{
		Name:      latest.Name,
		Latitude:  latest.Latitude,
		Longitude: latest.Longitude,
	}

	if _, err := s.session.SubmitPlace(ctx, place); err != nil {
		s.logger.Warn("background refresh failed", "place", place.Name, "error", err)
		return
	}
	s.logger.Debug("background refresh completed", "place", place.Name)
}
