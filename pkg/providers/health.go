package providers

import (
	"context"
	"log/slog"
	"time"
)

// StartConnectionChecker starts a background goroutine that periodically
// probes the backend with the given validate function, normally the
// adapter's own ValidateConnection. Probe outcomes feed the adapter's
// ConnectionState for readiness reporting; they never participate in
// request routing decisions.
//
// The checker runs until the adapter is closed or the context is cancelled.
// It backs off exponentially while the backend is unreachable.
func (a *HTTPAdapter) StartConnectionChecker(ctx context.Context, validate func(context.Context) bool) {
	a.checkStarted = true
	go a.runConnectionChecker(ctx, validate)
}

// runConnectionChecker is the main probe loop.
func (a *HTTPAdapter) runConnectionChecker(ctx context.Context, validate func(context.Context) bool) {
	defer close(a.checkStopped)

	interval := a.config.CheckInterval
	if interval == 0 {
		interval = 30 * time.Second // Default to 30 seconds
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("connection checker started",
		"provider", a.config.Name,
		"interval", interval,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("connection checker stopped (context cancelled)", "provider", a.config.Name)
			return

		case <-a.stopCheck:
			slog.Debug("connection checker stopped (adapter closed)", "provider", a.config.Name)
			return

		case <-ticker.C:
			a.performProbe(ctx, validate)

			// Back off while the backend is unreachable
			state := a.Connection()
			if !state.Reachable {
				backoffInterval := calculateProbeBackoff(state.ConsecutiveFailures, interval)
				ticker.Reset(backoffInterval)

				slog.Debug("connection probe backoff",
					"provider", a.config.Name,
					"consecutive_failures", state.ConsecutiveFailures,
					"next_check_in", backoffInterval,
				)
			} else {
				// Reset to normal interval when reachable
				ticker.Reset(interval)
			}
		}
	}
}

// performProbe executes a single connection probe with a bounded timeout.
func (a *HTTPAdapter) performProbe(ctx context.Context, validate func(context.Context) bool) {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	ok := validate(checkCtx)
	latency := time.Since(start)

	if ok {
		slog.Debug("connection probe passed",
			"provider", a.config.Name,
			"latency", latency,
		)
	} else {
		slog.Warn("connection probe failed",
			"provider", a.config.Name,
			"latency", latency,
		)
	}
}

// calculateProbeBackoff calculates the probe interval after consecutive
// failures. Exponential, capped at 10x the base interval and 5 minutes.
func calculateProbeBackoff(consecutiveFailures int, baseInterval time.Duration) time.Duration {
	if consecutiveFailures <= 0 {
		return baseInterval
	}

	multiplier := 1 << uint(consecutiveFailures) // 2^failures
	if multiplier > 10 {
		multiplier = 10
	}

	backoff := baseInterval * time.Duration(multiplier)

	maxBackoff := 5 * time.Minute
	if backoff > maxBackoff {
		backoff = maxBackoff
	}

	return backoff
}
