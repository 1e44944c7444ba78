// Package telemetry groups Ganymede's observability packages: structured
// logging (telemetry/logging), Prometheus metrics (telemetry/metrics),
// and health endpoints (telemetry/health).
package telemetry
