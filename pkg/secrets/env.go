package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider loads secrets from environment variables.
//
// Secret names are uppercased with hyphens replaced by underscores, and
// an optional prefix namespaces the variables. With prefix "GANYMEDE_",
// the secret "openai-api-key" resolves from GANYMEDE_OPENAI_API_KEY; with
// no prefix it resolves from OPENAI_API_KEY, which keeps the plain
// <NAME>_API_KEY convention working.
type EnvProvider struct {
	Prefix string
}

// NewEnvProvider creates an environment variable secret provider.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{Prefix: prefix}
}

// GetSecret retrieves a secret from its environment variable.
func (p *EnvProvider) GetSecret(ctx context.Context, name string) (string, error) {
	envVar := p.secretNameToEnvVar(name)

	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("secret not found in environment: %s (env var: %s)", name, envVar)
	}
	return value, nil
}

// ListSecrets returns secret names derived from environment variables
// carrying the configured prefix. Without a prefix nothing is listed;
// enumerating the whole environment would mostly return noise.
func (p *EnvProvider) ListSecrets(ctx context.Context) ([]string, error) {
	if p.Prefix == "" {
		return nil, nil
	}

	var secrets []string
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, p.Prefix) {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		secrets = append(secrets, p.envVarToSecretName(parts[0]))
	}
	return secrets, nil
}

// Source returns the provider name.
func (p *EnvProvider) Source() string {
	return "env"
}

// Supports always returns true: any secret can potentially come from the
// environment, which also makes this provider a natural fallback.
func (p *EnvProvider) Supports(name string) bool {
	return true
}

func (p *EnvProvider) secretNameToEnvVar(name string) string {
	return p.Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func (p *EnvProvider) envVarToSecretName(envVar string) string {
	name := strings.TrimPrefix(envVar, p.Prefix)
	return strings.ToLower(strings.ReplaceAll(name, "_", "-"))
}
