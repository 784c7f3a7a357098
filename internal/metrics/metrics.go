// Package metrics exposes Prometheus instrumentation for the merge
// pipeline and the HTTP surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration observes end-to-end handler latency.
	// Labels: handler (article/proxy), status (HTTP status code).
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wikimirror_request_duration_seconds",
			Help:    "HTTP request duration in seconds by handler",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"handler", "status"},
	)

	// MergesTotal counts per-candidate merge outcomes.
	// Labels: outcome (merged/timeout/size_skip/fetch_skip/error).
	MergesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikimirror_merges_total",
			Help: "Total candidate merges by outcome",
		},
		[]string{"outcome"},
	)

	// SectionsAbandonedTotal counts sections abandoned after consecutive
	// merge timeouts.
	SectionsAbandonedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wikimirror_sections_abandoned_total",
			Help: "Total sections abandoned after consecutive merge timeouts",
		},
	)

	// CacheRequestsTotal counts API response cache lookups.
	// Labels: result (hit/miss).
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wikimirror_cache_requests_total",
			Help: "Total API response cache lookups by result",
		},
		[]string{"result"},
	)
)

// Merge outcome label values.
const (
	MergeOutcomeMerged    = "merged"
	MergeOutcomeTimeout   = "timeout"
	MergeOutcomeSizeSkip  = "size_skip"
	MergeOutcomeFetchSkip = "fetch_skip"
	MergeOutcomeError     = "error"
)

// RecordMerge counts one candidate merge with the given outcome.
func RecordMerge(outcome string) {
	MergesTotal.WithLabelValues(outcome).Inc()
}

// RecordAbandon counts one abandoned section.
func RecordAbandon() {
	SectionsAbandonedTotal.Inc()
}

// RecordCache counts one cache lookup.
func RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheRequestsTotal.WithLabelValues(result).Inc()
}
