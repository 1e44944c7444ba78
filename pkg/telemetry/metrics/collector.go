package metrics

import (
	"time"

	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/providers"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every Prometheus metric Ganymede exposes. It implements
// the orchestrator's Observer interface, so registering it as an observer
// is all the wiring the request path needs.
//
// Updates are plain prometheus vector operations; there is no lock beyond
// what the client library does internally.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	orchestrator *OrchestratorMetrics
	provider     *ProviderMetrics
	cache        *CacheMetrics
}

// NewCollector creates a metrics collector and registers all metrics with
// the given registry. A nil registry gets a fresh private one.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "ganymede"
	}

	return &Collector{
		config:       cfg,
		registry:     registry,
		orchestrator: NewOrchestratorMetrics(cfg, registry),
		provider:     NewProviderMetrics(cfg, registry),
		cache:        NewCacheMetrics(cfg, registry),
	}
}

// RecordAttempt implements orchestrator.Observer: one candidate provider's
// retry cycle completed.
func (c *Collector) RecordAttempt(providerID string, resp *providers.Response, elapsed time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.provider.RecordAttempt(providerID, resp, elapsed)
}

// RecordOutcome implements orchestrator.Observer: one generate call
// finished, from cache or upstream.
func (c *Collector) RecordOutcome(resp *providers.Response, elapsed time.Duration, cacheHit bool) {
	if !c.config.Enabled {
		return
	}
	c.orchestrator.RecordOutcome(resp, elapsed)
	if cacheHit {
		c.cache.RecordHit()
	} else {
		c.cache.RecordMiss()
	}
}

// RecordFallback counts one fallback transition to a further candidate.
func (c *Collector) RecordFallback(providerID string) {
	if !c.config.Enabled {
		return
	}
	c.orchestrator.RecordFallback(providerID)
}

// UpdateProviderHealth sets the health gauge for one provider
// (1=healthy, 0=unhealthy).
func (c *Collector) UpdateProviderHealth(providerID string, healthy bool) {
	if !c.config.Enabled {
		return
	}
	c.provider.UpdateHealth(providerID, healthy)
}

// UpdateCacheSize sets the cache entry gauge.
func (c *Collector) UpdateCacheSize(size int) {
	if !c.config.Enabled {
		return
	}
	c.cache.UpdateSize(size)
}

// Registry returns the Prometheus registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
