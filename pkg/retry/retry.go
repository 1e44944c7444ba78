package retry

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"mercator-hq/ganymede/pkg/providers"
)

// Policy configures bounded retrying with exponential backoff.
type Policy struct {
	// MaxRetries is the number of retries after the initial attempt.
	// Zero means exactly one attempt. Default: 3.
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	// BaseDelay is the delay before the first retry. Default: 1s.
	BaseDelay time.Duration `yaml:"base_delay" json:"base_delay"`

	// MaxDelay caps the computed delay. Default: 60s.
	MaxDelay time.Duration `yaml:"max_delay" json:"max_delay"`

	// ExponentialBase is the backoff multiplier per attempt. Default: 2.0.
	ExponentialBase float64 `yaml:"exponential_base" json:"exponential_base"`

	// Jitter randomizes each delay by a factor in [0.5, 1.5) to avoid
	// thundering-herd retries. Default: true (via DefaultPolicy).
	Jitter bool `yaml:"jitter" json:"jitter"`
}

// DefaultPolicy returns the standard retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      3,
		BaseDelay:       time.Second,
		MaxDelay:        60 * time.Second,
		ExponentialBase: 2.0,
		Jitter:          true,
	}
}

// withDefaults fills unset fields so a zero-valued policy behaves sanely.
func (p Policy) withDefaults() Policy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 60 * time.Second
	}
	if p.ExponentialBase < 1 {
		p.ExponentialBase = 2.0
	}
	return p
}

// Delay returns the sleep before retry number attempt (0-based: attempt 0
// is the delay after the first failure).
//
//	delay = min(MaxDelay, BaseDelay * ExponentialBase^attempt)
//
// With Jitter the result is scaled by a random factor in [0.5, 1.5).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := time.Duration(float64(p.BaseDelay) * math.Pow(p.ExponentialBase, float64(attempt)))
	if delay > p.MaxDelay || delay <= 0 {
		// The power term overflows for large attempts; treat that as capped.
		delay = p.MaxDelay
	}

	if p.Jitter {
		delay = time.Duration(float64(delay) * (0.5 + rand.Float64()))
	}

	return delay
}

// Execute runs fn until it succeeds, returns a non-retryable failure, or
// the policy's attempt budget is exhausted. fn is invoked at most
// MaxRetries+1 times.
//
// Retryable statuses are rate_limited, timeout, and error. Invalid requests
// return immediately: resending an unchanged malformed request cannot
// succeed. On exhaustion the last failing response is returned unchanged.
//
// The backoff sleep honors ctx; when the context expires mid-backoff the
// last response is returned without further attempts.
func Execute(ctx context.Context, policy Policy, fn func(ctx context.Context) *providers.Response) *providers.Response {
	policy = policy.withDefaults()

	var resp *providers.Response
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		resp = fn(ctx)
		if resp == nil {
			// Adapters always return a response; guard anyway so a broken
			// implementation surfaces as a failure, not a panic upstream.
			resp = providers.NewFailure("", "", providers.StatusError, "attempt returned no response")
		}

		if resp.Status == providers.StatusSuccess {
			return resp
		}
		if !resp.Status.Retryable() {
			return resp
		}
		if attempt == policy.MaxRetries {
			break
		}

		delay := policy.Delay(attempt)
		slog.Debug("retrying request",
			"provider", resp.ProviderID,
			"status", resp.Status,
			"attempt", attempt+1,
			"max_retries", policy.MaxRetries,
			"delay", delay,
		)

		if !sleep(ctx, delay) {
			slog.Debug("retry abandoned, context expired",
				"provider", resp.ProviderID,
				"attempt", attempt+1,
			)
			return resp
		}
	}

	return resp
}

// sleep blocks for d or until ctx expires. It reports whether the full
// delay elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
