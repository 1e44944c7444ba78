// Package config provides configuration management for Ganymede.
//
// This package handles loading, validating, and managing configuration
// from YAML files with environment variable overrides. It provides a
// type-safe configuration system with comprehensive validation and
// sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// Passing an empty path to LoadConfigWithEnvOverrides starts from the
// built-in defaults, so a deployment can be configured entirely through
// the environment.
//
// # Environment Variable Overrides
//
// The orchestration settings keep the bare names the layer has always
// been configured with:
//
//   - AI_PROVIDER overrides orchestrator.default_provider
//   - AI_TEMPERATURE overrides orchestrator.temperature
//   - AI_MAX_TOKENS overrides orchestrator.max_tokens
//   - AI_TIMEOUT overrides orchestrator.timeout (seconds or a Go duration)
//   - ENABLE_CACHING overrides cache.enabled
//   - CACHE_TTL overrides cache.ttl (seconds or a Go duration)
//
// Per-provider credentials use the provider name uppercased:
//
//   - OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL
//   - ANTHROPIC_API_KEY, and so on for every configured provider
//
// Service-level settings use the GANYMEDE_ prefix, for example
// GANYMEDE_LISTEN_ADDRESS and GANYMEDE_LOG_LEVEL. Environment variables
// always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later
// overrides earlier):
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.MustGetConfig()
//
// Configuration is read once at startup; there is no hot reload of
// orchestrator settings.
package config
