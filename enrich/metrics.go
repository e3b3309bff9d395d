package enrich

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the enrichment phase.
type Metrics struct {
	Registry       *prometheus.Registry
	FetchesTotal   prometheus.Counter
	FetchDuration  prometheus.Histogram
	CacheHitsTotal prometheus.Counter
	CacheMissTotal prometheus.Counter
	RetriesTotal   prometheus.Counter
	ResolvedTotal  prometheus.Counter
	SkippedTotal   prometheus.Counter
	ErrorsTotal    *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	fetches := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enrich_fetches_total",
			Help: "Total lookup requests issued to the fetcher.",
		},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "enrich_fetch_duration_seconds",
			Help:    "Lookup request latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enrich_cache_hits_total",
			Help: "Lookups answered from the durable cache.",
		},
	)
	cacheMisses := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enrich_cache_misses_total",
			Help: "Lookups that required a fetch.",
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enrich_retries_total",
			Help: "Total retry attempts scheduled.",
		},
	)
	resolved := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enrich_resolved_total",
			Help: "Keys resolved to a standardized record.",
		},
	)
	skipped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enrich_skipped_total",
			Help: "Keys skipped after exhausting their retry budget.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrich_errors_total",
			Help: "Total lookup errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(fetches, fetchDuration, cacheHits, cacheMisses, retries, resolved, skipped, errorsTotal)

	return &Metrics{
		Registry:       registry,
		FetchesTotal:   fetches,
		FetchDuration:  fetchDuration,
		CacheHitsTotal: cacheHits,
		CacheMissTotal: cacheMisses,
		RetriesTotal:   retries,
		ResolvedTotal:  resolved,
		SkippedTotal:   skipped,
		ErrorsTotal:    errorsTotal,
	}
}

// IncFetch increments the fetches counter.
func (m *Metrics) IncFetch() {
	if m == nil {
		return
	}
	m.FetchesTotal.Inc()
}

// ObserveDuration records a lookup duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncCacheHit increments the cache hit counter.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// IncCacheMiss increments the cache miss counter.
func (m *Metrics) IncCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissTotal.Inc()
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncResolved increments the resolved counter.
func (m *Metrics) IncResolved() {
	if m == nil {
		return
	}
	m.ResolvedTotal.Inc()
}

// IncSkipped increments the skipped counter.
func (m *Metrics) IncSkipped() {
	if m == nil {
		return
	}
	m.SkippedTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
