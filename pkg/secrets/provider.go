// Package secrets resolves provider credentials from pluggable sources.
//
// Configuration values of the form ${secret:name} are resolved through a
// Manager that tries each configured source in order: environment
// variables first, then an optional secrets file. The file source can
// watch for changes and reload without a restart.
package secrets

import "context"

// Provider retrieves secrets from one backend.
type Provider interface {
	// GetSecret retrieves a secret by name. Returns an error if the
	// secret is not found or cannot be read.
	GetSecret(ctx context.Context, name string) (string, error)

	// ListSecrets returns the secret names available from this provider.
	// Values are never included.
	ListSecrets(ctx context.Context) ([]string, error)

	// Source returns the provider name ("env", "file").
	Source() string

	// Supports reports whether this provider can resolve the given name.
	// Used to pick a provider when several are configured.
	Supports(name string) bool
}

// RefreshableProvider can reload its secrets without a restart, e.g. a
// file source reacting to file changes.
type RefreshableProvider interface {
	Provider

	// Refresh reloads all secrets from the backend.
	Refresh(ctx context.Context) error
}
