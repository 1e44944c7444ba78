package metrics

import (
	"time"

	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/providers"

	"github.com/prometheus/client_golang/prometheus"
)

// attemptDurationBuckets covers single-candidate latencies including the
// retry backoff (100ms - 60s).
var attemptDurationBuckets = []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0}

// ProviderMetrics tracks per-provider attempt outcomes and health.
//
// Metrics:
//   - ganymede_provider_attempts_total{provider,status}
//   - ganymede_provider_attempt_duration_seconds{provider}
//   - ganymede_provider_health{provider}
type ProviderMetrics struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
	health   *prometheus.GaugeVec
}

// NewProviderMetrics creates and registers provider metrics.
func NewProviderMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_attempts_total",
				Help:      "Candidate provider attempts by outcome status",
			},
			[]string{"provider", "status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_attempt_duration_seconds",
				Help:      "Per-candidate attempt duration in seconds, retry backoff included",
				Buckets:   attemptDurationBuckets,
			},
			[]string{"provider"},
		),

		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "provider_health",
				Help:      "Provider health status (1=healthy, 0=unhealthy)",
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		pm.attempts,
		pm.duration,
		pm.health,
	)

	return pm
}

// RecordAttempt records one candidate provider's completed retry cycle.
func (pm *ProviderMetrics) RecordAttempt(providerID string, resp *providers.Response, elapsed time.Duration) {
	pm.attempts.WithLabelValues(providerID, string(resp.Status)).Inc()
	pm.duration.WithLabelValues(providerID).Observe(elapsed.Seconds())
}

// UpdateHealth sets the health gauge for one provider.
func (pm *ProviderMetrics) UpdateHealth(providerID string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	pm.health.WithLabelValues(providerID).Set(value)
}
