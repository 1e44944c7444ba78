package routing

import (
	"errors"
	"fmt"
	"strings"
)

// Common routing errors that can be checked with errors.Is().
var (
	// ErrNoProvidersConfigured is returned when no providers are registered.
	ErrNoProvidersConfigured = errors.New("no providers configured")

	// ErrProviderNotFound is returned when an explicitly requested provider
	// does not exist.
	ErrProviderNotFound = errors.New("provider not found")
)

// ProviderNotFoundError is returned when an explicitly requested provider
// is not registered.
type ProviderNotFoundError struct {
	// ProviderID is the requested provider that was not found.
	ProviderID string

	// AvailableProviders contains the IDs of registered providers.
	AvailableProviders []string
}

// Error implements the error interface.
func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("provider %q not found (available providers: %s)",
		e.ProviderID, strings.Join(e.AvailableProviders, ", "))
}

// Is implements error matching for errors.Is().
func (e *ProviderNotFoundError) Is(target error) bool {
	return target == ErrProviderNotFound
}
