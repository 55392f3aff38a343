// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Business metrics track aggregation pipeline operations
var (
	// EventsTotal tracks the number of events in the current snapshot
	EventsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "events_total",
			Help: "Number of events in the current snapshot",
		},
	)

	// SourcesTotal tracks the number of active sources in the catalog
	SourcesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sources_total",
			Help: "Number of active sources in the catalog",
		},
	)

	// EventsFetchedTotal counts events fetched from each source
	EventsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_fetched_total",
			Help: "Total number of events fetched from sources",
		},
		[]string{"source"},
	)

	// SourceCrawlDuration measures time to crawl a single source
	SourceCrawlDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_crawl_duration_seconds",
			Help:    "Time taken to crawl a single source",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source"},
	)

	// SourceCrawlErrors counts errors during source crawling
	SourceCrawlErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_crawl_errors_total",
			Help: "Total number of source crawl errors",
		},
		[]string{"source", "error_type"},
	)

	// EventsDeduplicatedTotal counts events dropped by the deduplicator
	EventsDeduplicatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_deduplicated_total",
			Help: "Total number of duplicate events dropped during merge",
		},
	)

	// AggregationDuration measures wall-clock time of a full aggregation run
	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aggregation_run_duration_seconds",
			Help:    "Wall-clock duration of a full aggregation run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// RefreshRunsTotal counts refresh jobs by terminal status
	RefreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_runs_total",
			Help: "Total number of refresh runs by terminal status",
		},
		[]string{"status"},
	)

	// ExportsTotal counts export requests by format
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Total number of export requests by format",
		},
		[]string{"format"},
	)

	// GeocodeLookupsTotal counts geocoder lookups by result
	GeocodeLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocode_lookups_total",
			Help: "Total number of geocode lookups by result",
		},
		[]string{"result"}, // result: cache_hit, static_hit, remote, failure
	)

	// ConfigFallbacksTotal counts environment values rejected at startup
	ConfigFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_fallbacks_total",
			Help: "Total number of config values that fell back to defaults",
		},
		[]string{"field"},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
