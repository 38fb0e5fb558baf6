package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// comparison service.
type Metrics struct {
	SearchesTotal         *prometheus.CounterVec // labels: outcome={success,no_match,no_data,error}
	ScheduleBuildDuration prometheus.Histogram
	ScheduleHoursDropped  prometheus.Counter
	StaleResultsDiscarded *prometheus.CounterVec // labels: path={search,suggest}
	RecentWriteFailures   prometheus.Counter
	ServiceReady          prometheus.Gauge

	// Place-search metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram

	// Forecast-fetch metrics.
	ForecastRequests    *prometheus.CounterVec // labels: outcome={success,error}
	ForecastAPIDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SearchesTotal,
		m.ScheduleBuildDuration,
		m.ScheduleHoursDropped,
		m.StaleResultsDiscarded,
		m.RecentWriteFailures,
		m.ServiceReady,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.ForecastRequests,
		m.ForecastAPIDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SearchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warmer_colder",
			Name:      "searches_total",
			Help:      "Completed search flows by outcome.",
		}, []string{"outcome"}),
		ScheduleBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "warmer_colder",
			Name:      "schedule_build_duration_seconds",
			Help:      "Duration of a full geocode-fetch-align-classify cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ScheduleHoursDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "warmer_colder",
			Name:      "schedule_hours_dropped_total",
			Help:      "Horizon hours skipped because the fetched series had no data.",
		}),
		StaleResultsDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warmer_colder",
			Name:      "stale_results_discarded_total",
			Help:      "Async results discarded because a newer request superseded them.",
		}, []string{"path"}),
		RecentWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "warmer_colder",
			Name:      "recent_write_failures_total",
			Help:      "Failed writes to the recent-selections store.",
		}),
		ServiceReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "warmer_colder",
			Name:      "service_ready",
			Help:      "1 once the service has completed an upstream fetch, 0 before.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warmer_colder",
			Name:      "geocode_requests_total",
			Help:      "Place-search API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warmer_colder",
			Name:      "geocode_cache_total",
			Help:      "Place-search cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "warmer_colder",
			Name:      "geocode_api_duration_seconds",
			Help:      "Place-search API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warmer_colder",
			Name:      "forecast_requests_total",
			Help:      "Hourly forecast API requests by outcome.",
		}, []string{"outcome"}),
		ForecastAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "warmer_colder",
			Name:      "forecast_api_duration_seconds",
			Help:      "Hourly forecast API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}
