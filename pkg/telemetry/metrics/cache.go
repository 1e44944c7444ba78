package metrics

import (
	"mercator-hq/ganymede/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics tracks response cache effectiveness.
//
// Metrics:
//   - ganymede_cache_hits_total
//   - ganymede_cache_misses_total
//   - ganymede_cache_entries
type CacheMetrics struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	entries prometheus.Gauge
}

// NewCacheMetrics creates and registers cache metrics.
func NewCacheMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *CacheMetrics {
	cm := &CacheMetrics{
		hits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "cache_hits_total",
				Help:      "Generate calls served from the response cache",
			},
		),

		misses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "cache_misses_total",
				Help:      "Generate calls that reached a provider",
			},
		),

		entries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "cache_entries",
				Help:      "Current number of cached responses",
			},
		),
	}

	registry.MustRegister(
		cm.hits,
		cm.misses,
		cm.entries,
	)

	return cm
}

// RecordHit counts one cache hit.
func (cm *CacheMetrics) RecordHit() {
	cm.hits.Inc()
}

// RecordMiss counts one cache miss.
func (cm *CacheMetrics) RecordMiss() {
	cm.misses.Inc()
}

// UpdateSize sets the entry gauge.
func (cm *CacheMetrics) UpdateSize(size int) {
	cm.entries.Set(float64(size))
}
