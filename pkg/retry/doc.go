// Package retry provides bounded retrying with exponential backoff.
//
// Retrying lives outside the provider adapters: adapters perform exactly
// one upstream call per Generate, and Execute wraps that call with the
// attempt loop. This keeps the retry policy composable; the same wrapper
// applies to any function returning a *providers.Response.
//
// # Usage
//
//	policy := retry.DefaultPolicy()
//	resp := retry.Execute(ctx, policy, func(ctx context.Context) *providers.Response {
//	    return adapter.Generate(ctx, req)
//	})
//
// # Backoff
//
// The delay before retry n (0-based) is
//
//	min(MaxDelay, BaseDelay * ExponentialBase^n)
//
// optionally scaled by a jitter factor in [0.5, 1.5). Only transient
// statuses (rate_limited, timeout, error) are retried; invalid requests
// return immediately. MaxRetries bounds the loop: a policy with
// MaxRetries=N invokes the function at most N+1 times.
package retry
