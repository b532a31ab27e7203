// Package observability registers the Prometheus metrics every other
// package in this repository reports against: one CounterVec/HistogramVec
// per concern, grouped under the "aprz" namespace the way the teacher's
// cache manager groups its own metrics under a Namespace/Subsystem pair.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aprz"

// CacheHits and CacheMisses count document-cache lookups, labeled by the
// same context string every cache.Load/LoadWithTTL caller already passes
// (e.g. "docs", "advisories").
var (
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of document cache hits.",
		},
		[]string{"context"},
	)
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of document cache misses.",
		},
		[]string{"context"},
	)
)

// ThrottlerPauses counts how often a provider's throttler actually enters a
// new pause (PauseFor returning true, i.e. not superseded by a longer,
// already-active pause).
var ThrottlerPauses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "throttler",
		Name:      "pauses_total",
		Help:      "Total number of throttler pauses entered.",
	},
	[]string{"provider"},
)

// CollectorSpecsQueried counts how many crate specs the collector dispatched
// to the secondary providers in one Collect call.
var CollectorSpecsQueried = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "collector",
		Name:      "specs_queried_total",
		Help:      "Total number of crate specs dispatched to secondary providers.",
	},
)

// ProviderRequests and ProviderLatency cover one secondary provider's fetch
// calls, labeled by provider name and, for requests, outcome ("found",
// "not_found", "unavailable", "error").
var (
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Total number of per-spec provider fetches, labeled by outcome.",
		},
		[]string{"provider", "outcome"},
	)
	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Duration of one provider's full batch fetch for a set of specs.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)
)

// ObserveProviderBatch records one provider's end-to-end batch duration and
// the per-outcome count across the specs it was asked to resolve.
func ObserveProviderBatch(provider string, start time.Time, outcomes map[string]int) {
	ProviderLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	for outcome, n := range outcomes {
		ProviderRequests.WithLabelValues(provider, outcome).Add(float64(n))
	}
}
