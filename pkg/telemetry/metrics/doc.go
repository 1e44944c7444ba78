// Package metrics exposes Prometheus metrics for Ganymede.
//
// The Collector owns a private registry and three metric groups:
//
//   - orchestrator: requests_total, request_duration_seconds,
//     tokens_used, fallbacks_total
//   - provider: provider_attempts_total,
//     provider_attempt_duration_seconds, provider_health
//   - cache: cache_hits_total, cache_misses_total, cache_entries
//
// The Collector implements the orchestrator's Observer interface, so the
// request path needs no metrics-specific wiring:
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	orchCfg.Observers = append(orchCfg.Observers, collector)
//
// Serve the exposition endpoint with Collector.Handler.
package metrics
