package metrics

import (
	"time"

	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/providers"

	"github.com/prometheus/client_golang/prometheus"
)

// requestDurationBuckets covers end-to-end generation latencies, retries
// and fallback included (100ms - 2m).
var requestDurationBuckets = []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0}

// tokenBuckets covers typical completion sizes.
var tokenBuckets = []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000}

// OrchestratorMetrics tracks the request path end to end.
//
// Metrics:
//   - ganymede_requests_total{provider,status}
//   - ganymede_request_duration_seconds{status}
//   - ganymede_tokens_used
//   - ganymede_fallbacks_total{provider}
type OrchestratorMetrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	tokens    prometheus.Histogram
	fallbacks *prometheus.CounterVec
}

// NewOrchestratorMetrics creates and registers orchestrator metrics.
func NewOrchestratorMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *OrchestratorMetrics {
	om := &OrchestratorMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "requests_total",
				Help:      "Total generate calls by final provider and status",
			},
			[]string{"provider", "status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "request_duration_seconds",
				Help:      "End-to-end generate latency in seconds, retries and fallback included",
				Buckets:   requestDurationBuckets,
			},
			[]string{"status"},
		),

		tokens: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "tokens_used",
				Help:      "Tokens consumed per successful generation",
				Buckets:   tokenBuckets,
			},
		),

		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "fallbacks_total",
				Help:      "Fallback transitions by the provider fallen back to",
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		om.requests,
		om.duration,
		om.tokens,
		om.fallbacks,
	)

	return om
}

// RecordOutcome records one finished generate call.
func (om *OrchestratorMetrics) RecordOutcome(resp *providers.Response, elapsed time.Duration) {
	status := string(resp.Status)
	om.requests.WithLabelValues(resp.ProviderID, status).Inc()
	om.duration.WithLabelValues(status).Observe(elapsed.Seconds())
	if resp.Succeeded() && resp.TokensUsed > 0 {
		om.tokens.Observe(float64(resp.TokensUsed))
	}
}

// RecordFallback records one fallback transition.
func (om *OrchestratorMetrics) RecordFallback(providerID string) {
	om.fallbacks.WithLabelValues(providerID).Inc()
}
