package config

import (
	"time"

	"mercator-hq/ganymede/pkg/providers"
)

// TestConfigBuilder provides a fluent API for building Config instances in
// tests without going through file loading.
type TestConfigBuilder struct {
	cfg *Config
}

// NewTestConfig returns a builder seeded with defaults and one openai
// provider.
func NewTestConfig() *TestConfigBuilder {
	cfg := New()
	cfg.Providers = map[string]providers.Config{
		"openai": {
			Name:    "openai",
			Type:    "openai",
			Model:   "gpt-4o-mini",
			BaseURL: "https://api.openai.com/v1",
			APIKey:  "test-key",
			Timeout: 30 * time.Second,
		},
	}
	ApplyDefaults(cfg)
	return &TestConfigBuilder{cfg: cfg}
}

// WithListenAddress sets the server listen address.
func (b *TestConfigBuilder) WithListenAddress(addr string) *TestConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}

// WithProvider adds or replaces a provider.
func (b *TestConfigBuilder) WithProvider(name string, provider providers.Config) *TestConfigBuilder {
	if b.cfg.Providers == nil {
		b.cfg.Providers = make(map[string]providers.Config)
	}
	b.cfg.Providers[name] = provider
	return b
}

// WithDefaultProvider sets the orchestrator default provider.
func (b *TestConfigBuilder) WithDefaultProvider(name string) *TestConfigBuilder {
	b.cfg.Orchestrator.DefaultProvider = name
	return b
}

// WithCacheBackend selects the cache backend.
func (b *TestConfigBuilder) WithCacheBackend(backend string) *TestConfigBuilder {
	b.cfg.Cache.Backend = backend
	return b
}

// WithCacheDisabled turns response caching off.
func (b *TestConfigBuilder) WithCacheDisabled() *TestConfigBuilder {
	b.cfg.Cache.Enabled = false
	return b
}

// Build finalizes and returns the configuration.
func (b *TestConfigBuilder) Build() *Config {
	ApplyDefaults(b.cfg)
	return b.cfg
}
