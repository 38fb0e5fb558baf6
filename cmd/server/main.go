package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/warmer-colder-service/internal/adapter/geocoding"
	"github.com/couchcryptid/warmer-colder-service/internal/adapter/openmeteo"
	httpapi "github.com/couchcryptid/warmer-colder-service/internal/api/http"
	"github.com/couchcryptid/warmer-colder-service/internal/config"
	"github.com/couchcryptid/warmer-colder-service/internal/domain"
	"github.com/couchcryptid/warmer-colder-service/internal/observability"
	"github.com/couchcryptid/warmer-colder-service/internal/scheduler"
	"github.com/couchcryptid/warmer-colder-service/internal/search"
	"github.com/couchcryptid/warmer-colder-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	geocoderClient := geocoding.NewClient(cfg.GeocodingBaseURL, cfg.GeocodingLanguage, cfg.GeocodingTimeout, metrics, logger)
	geocoder := geocoding.NewCachedGeocoder(geocoderClient, cfg.GeocodingCacheSize, metrics)

	forecasts := openmeteo.NewClient(cfg.ForecastBaseURL, cfg.ForecastTimeout, cfg.PastDays, cfg.ForecastDays, metrics, logger)

	// Recents persistence is optional; an empty path disables it.
	var recents domain.RecentsStore
	var sqliteStore *store.SQLiteStore
	if cfg.RecentDBPath != "" {
		sqliteStore, err = store.NewSQLite(cfg.RecentDBPath, cfg.RecentMaxEntries)
		if err != nil {
			logger.Error("failed to open recents store", "path", cfg.RecentDBPath, "error", err)
			os.Exit(1)
		}
		recents = sqliteStore
	} else {
		logger.Info("recents store disabled")
	}

	svc := search.NewService(geocoder, forecasts, recents, cfg.HorizonHours, metrics, logger)
	session := search.NewSession(svc, metrics, logger)
	suggester := search.NewSuggester(svc, cfg.SuggestDebounce, cfg.SuggestLimit, metrics, logger)

	srv := httpapi.NewServer(cfg.HTTPAddr, session, svc, suggester, logger)

	refresher := scheduler.New(session, recents, cfg.RefreshInterval, logger)
	if recents != nil {
		if err := refresher.Start(); err != nil {
			logger.Error("failed to start background refresh", "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Fiber returns nil from Listen after a graceful Shutdown.
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	refresher.Stop()
	suggester.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if sqliteStore != nil {
		if err := sqliteStore.Close(); err != nil {
			logger.Error("recents store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
