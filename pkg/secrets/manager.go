package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// secretRefRegex matches ${secret:name} patterns in configuration values.
var secretRefRegex = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// IsReference reports whether a configuration value is a secret
// reference.
func IsReference(value string) bool {
	return secretRefRegex.MatchString(value)
}

// Manager chains secret providers with priority-based fallback: the
// first provider that supports a name and returns a value wins.
type Manager struct {
	providers []Provider
	logger    *slog.Logger
}

// NewManager creates a secret manager over the given providers, tried in
// order.
func NewManager(providers ...Provider) *Manager {
	return &Manager{
		providers: providers,
		logger:    slog.Default().With("component", "secrets"),
	}
}

// GetSecret retrieves a secret from the first provider that resolves it.
func (m *Manager) GetSecret(ctx context.Context, name string) (string, error) {
	var lastErr error
	for _, provider := range m.providers {
		if !provider.Supports(name) {
			continue
		}

		value, err := provider.GetSecret(ctx, name)
		if err != nil {
			lastErr = err
			m.logger.Debug("provider failed to resolve secret",
				"source", provider.Source(),
				"name", redactSecretName(name),
				"error", err,
			)
			continue
		}

		m.logger.Debug("secret resolved",
			"source", provider.Source(),
			"name", redactSecretName(name),
		)
		return value, nil
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to get secret %q: %w", name, lastErr)
	}
	return "", fmt.Errorf("secret not found: %q (no provider supports this secret)", name)
}

// Resolve replaces ${secret:name} patterns in the input with the secret
// values. Values without a reference pass through unchanged. Unresolvable
// references keep their original text and are reported in the returned
// error.
func (m *Manager) Resolve(ctx context.Context, input string) (string, error) {
	var failures []string

	output := secretRefRegex.ReplaceAllStringFunc(input, func(match string) string {
		name := secretRefRegex.FindStringSubmatch(match)[1]

		value, err := m.GetSecret(ctx, name)
		if err != nil {
			failures = append(failures, fmt.Sprintf("failed to resolve secret %q: %v", name, err))
			return match
		}
		return value
	})

	if len(failures) > 0 {
		return output, fmt.Errorf("failed to resolve secret references: %s", strings.Join(failures, "; "))
	}
	return output, nil
}

// Refresh reloads every refreshable provider.
func (m *Manager) Refresh(ctx context.Context) error {
	var failures []string
	for _, provider := range m.providers {
		refreshable, ok := provider.(RefreshableProvider)
		if !ok {
			continue
		}
		if err := refreshable.Refresh(ctx); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", provider.Source(), err))
			m.logger.Error("failed to refresh secret provider",
				"source", provider.Source(),
				"error", err,
			)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("failed to refresh some providers: %s", strings.Join(failures, "; "))
	}
	return nil
}

// ListSecrets returns the union of secret names across all providers.
// Values are never included.
func (m *Manager) ListSecrets(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)

	for _, provider := range m.providers {
		names, err := provider.ListSecrets(ctx)
		if err != nil {
			m.logger.Warn("failed to list secrets from provider",
				"source", provider.Source(),
				"error", err,
			)
			continue
		}
		for _, name := range names {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	return names, nil
}

// Close closes providers that hold resources, such as file watchers.
func (m *Manager) Close() error {
	var lastErr error
	for _, provider := range m.providers {
		if closer, ok := provider.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				lastErr = err
			}
		}
	}
	return lastErr
}

// redactSecretName keeps secret names out of logs while leaving enough to
// debug with.
func redactSecretName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
