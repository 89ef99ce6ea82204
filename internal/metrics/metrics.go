package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are registered with the default registry through promauto and
// exposed on /metrics by the server.

// Outcome labels for EventsTotal.
const (
	OutcomeCounted      = "counted"
	OutcomeDeduplicated = "deduplicated"
	OutcomeInvalid      = "invalid"
	OutcomeError        = "error"
)

// Dedup sources for DedupHitsTotal.
const (
	DedupSourceCache  = "cache"
	DedupSourceLedger = "ledger"
	DedupSourceGate   = "gate"
)

var (
	// ==================== HTTP METRICS ====================

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// ==================== INGESTION METRICS ====================

	// EventsTotal counts ingestion events by action and outcome
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_events_total",
			Help: "Total number of tracking events by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	// DedupHitsTotal counts deduplicated events by where the duplicate was detected
	DedupHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_dedup_hits_total",
			Help: "Total number of deduplicated events by detection source",
		},
		[]string{"source"},
	)

	// UnknownClientEventsTotal counts events whose client could not be resolved
	UnknownClientEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_unknown_client_events_total",
			Help: "Total number of tracking events without a resolvable client address",
		},
	)

	// IngestDuration tracks the storage part of ingestion
	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analytics_ingest_duration_seconds",
			Help:    "Duration of the dedup check and counter update in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// ==================== CLEANUP METRICS ====================

	CleanupRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_cleanup_runs_total",
			Help: "Total number of ledger purges by trigger and result",
		},
		[]string{"trigger", "result"},
	)

	CleanupRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_cleanup_removed_total",
			Help: "Total number of ledger entries removed by purges",
		},
	)

	CleanupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analytics_cleanup_duration_seconds",
			Help:    "Duration of ledger purges in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// ==================== CACHE METRICS ====================

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of dedup cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of dedup cache misses",
		},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05},
		},
		[]string{"operation"}, // get, set
	)

	// ==================== RATE LIMITING METRICS ====================

	RateLimitedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Total number of rate-limited requests",
		},
	)

	RateLimitAllowedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_allowed_requests_total",
			Help: "Total number of requests allowed by rate limiter",
		},
	)
)

// RecordEvent increments the event counter for action and outcome
func RecordEvent(action, outcome string) {
	EventsTotal.WithLabelValues(action, outcome).Inc()
}

// RecordDedupHit increments the dedup counter for source
func RecordDedupHit(source string) {
	DedupHitsTotal.WithLabelValues(source).Inc()
}

// RecordUnknownClient increments the unresolved client counter
func RecordUnknownClient() {
	UnknownClientEventsTotal.Inc()
}

// RecordCleanup records one purge attempt
func RecordCleanup(trigger string, removed int64, seconds float64, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	CleanupRunsTotal.WithLabelValues(trigger, result).Inc()
	CleanupDuration.Observe(seconds)
	if removed > 0 {
		CleanupRemovedTotal.Add(float64(removed))
	}
}

// RecordCacheHit increments cache hit counter
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss increments cache miss counter
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordRateLimited increments rate-limited requests counter
func RecordRateLimited() {
	RateLimitedRequestsTotal.Inc()
}

// RecordRateLimitAllowed increments allowed requests counter
func RecordRateLimitAllowed() {
	RateLimitAllowedRequestsTotal.Inc()
}
