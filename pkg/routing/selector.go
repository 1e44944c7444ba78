package routing

import (
	"log/slog"
)

// DefaultUnhealthyThreshold is the consecutive-failure count at which a
// provider is skipped during selection.
const DefaultUnhealthyThreshold = 3

// Selector builds the ordered list of candidate providers for one request.
// It filters unhealthy providers and ranks the rest by tracked statistics.
type Selector struct {
	tracker   *HealthTracker
	threshold int
}

// NewSelector creates a selector over the given tracker.
// If unhealthyThreshold is not positive, DefaultUnhealthyThreshold is used.
func NewSelector(tracker *HealthTracker, unhealthyThreshold int) *Selector {
	if unhealthyThreshold <= 0 {
		unhealthyThreshold = DefaultUnhealthyThreshold
	}
	return &Selector{
		tracker:   tracker,
		threshold: unhealthyThreshold,
	}
}

// Threshold returns the consecutive-failure threshold in effect.
func (s *Selector) Threshold() int {
	return s.threshold
}

// Candidates returns the providers to try, in order.
//
// An explicit provider is validated against the registry and always tried
// first, even when unhealthy: an explicit choice is a caller decision, not
// a routing one. Otherwise the preferred provider leads, but only while it
// is healthy; a preference is routing advice, not an override. The
// remainder is the health-ranked list of registered providers, excluding
// unhealthy ones unless every provider is unhealthy, in which case all are
// tried healthiest-first rather than refusing outright.
func (s *Selector) Candidates(explicit, preferred string) ([]string, error) {
	all := s.tracker.Registered()
	if len(all) == 0 {
		return nil, ErrNoProvidersConfigured
	}

	if explicit != "" && !containsID(all, explicit) {
		return nil, &ProviderNotFoundError{
			ProviderID:         explicit,
			AvailableProviders: all,
		}
	}

	healthy := make([]string, 0, len(all))
	for _, id := range all {
		if s.tracker.IsHealthy(id, s.threshold) {
			healthy = append(healthy, id)
		} else {
			slog.Debug("provider excluded due to health",
				"provider", id,
				"threshold", s.threshold,
			)
		}
	}

	allUnhealthy := len(healthy) == 0
	if allUnhealthy {
		slog.Warn("all providers unhealthy, considering every provider",
			"providers", len(all),
		)
		healthy = all
	}

	ranked := s.tracker.Rank(healthy)

	pin := explicit
	if pin == "" && !allUnhealthy && preferred != "" && containsID(healthy, preferred) {
		pin = preferred
	}
	if pin != "" {
		ranked = frontload(ranked, pin)
	}

	return ranked, nil
}

// frontload moves pin to the head of ids, prepending it if absent.
func frontload(ids []string, pin string) []string {
	out := make([]string, 0, len(ids)+1)
	out = append(out, pin)
	for _, id := range ids {
		if id != pin {
			out = append(out, id)
		}
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
