package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// Values absent from the file keep their defaults; the result is validated
// before it is returned. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Fill zero values a file-supplied section may have left behind.
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. An empty path starts from the
// built-in defaults, so a fully environment-driven deployment needs no
// file at all.
//
// The loading sequence is:
//  1. Built-in defaults
//  2. Values from the YAML file (when a path is given)
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// Recognized variables are the orchestration settings (AI_PROVIDER,
// AI_TEMPERATURE, AI_MAX_TOKENS, AI_TIMEOUT, ENABLE_CACHING, CACHE_TTL),
// per-provider credentials (<NAME>_API_KEY, <NAME>_BASE_URL, <NAME>_MODEL),
// and GANYMEDE_-prefixed service settings.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = New()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Orchestration settings use the bare names the layer has
// always been configured with; service-level settings use the GANYMEDE_
// prefix.
func applyEnvOverrides(cfg *Config) {
	// Orchestration overrides
	if val := os.Getenv("AI_PROVIDER"); val != "" {
		cfg.Orchestrator.DefaultProvider = val
	}
	if val := os.Getenv("AI_TEMPERATURE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Orchestrator.Temperature = f
		}
	}
	if val := os.Getenv("AI_MAX_TOKENS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Orchestrator.MaxTokens = i
		}
	}
	if val := os.Getenv("AI_TIMEOUT"); val != "" {
		if d, ok := parseSecondsOrDuration(val); ok {
			cfg.Orchestrator.Timeout = d
		}
	}

	// Cache overrides
	if val := os.Getenv("ENABLE_CACHING"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Cache.Enabled = b
		}
	}
	if val := os.Getenv("CACHE_TTL"); val != "" {
		if d, ok := parseSecondsOrDuration(val); ok {
			cfg.Cache.TTL = d
		}
	}
	if val := os.Getenv("GANYMEDE_CACHE_BACKEND"); val != "" {
		cfg.Cache.Backend = val
	}
	if val := os.Getenv("GANYMEDE_REDIS_ADDR"); val != "" {
		cfg.Cache.Redis.Addr = val
	}
	if val := os.Getenv("GANYMEDE_REDIS_PASSWORD"); val != "" {
		cfg.Cache.Redis.Password = val
	}

	// Provider credential overrides for every configured provider
	for name := range cfg.Providers {
		applyProviderEnvOverrides(cfg, name)
	}

	// Service overrides
	if val := os.Getenv("GANYMEDE_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("GANYMEDE_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("GANYMEDE_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("GANYMEDE_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_USAGE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Usage.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_USAGE_SQLITE_PATH"); val != "" {
		cfg.Usage.SQLite.Path = val
	}
}

// applyProviderEnvOverrides applies <NAME>_API_KEY, <NAME>_BASE_URL and
// <NAME>_MODEL for one provider. Names are uppercased with dashes mapped
// to underscores: a provider "my-ollama" reads MY_OLLAMA_API_KEY.
func applyProviderEnvOverrides(cfg *Config, name string) {
	provider, ok := cfg.Providers[name]
	if !ok {
		return
	}

	prefix := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	if val := os.Getenv(prefix + "_API_KEY"); val != "" {
		provider.APIKey = val
	}
	if val := os.Getenv(prefix + "_BASE_URL"); val != "" {
		provider.BaseURL = val
	}
	if val := os.Getenv(prefix + "_MODEL"); val != "" {
		provider.Model = val
	}

	cfg.Providers[name] = provider
}

// parseSecondsOrDuration accepts either a bare number of seconds ("30",
// "3600") or a Go duration string ("30s", "1h").
func parseSecondsOrDuration(val string) (time.Duration, bool) {
	if secs, err := strconv.Atoi(val); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if d, err := time.ParseDuration(val); err == nil && d >= 0 {
		return d, true
	}
	return 0, false
}
