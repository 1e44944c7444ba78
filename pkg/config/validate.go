package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "orchestrator.temperature").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access to
// all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a
// ValidationError if any validation rules fail. All validation errors are
// collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateOrchestrator(cfg)...)
	errs = append(errs, validateProviders(cfg)...)
	errs = append(errs, validateCache(&cfg.Cache)...)
	errs = append(errs, validateUsage(&cfg.Usage)...)
	errs = append(errs, validateSecrets(&cfg.Secrets)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateServer(&cfg.Server)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateOrchestrator(cfg *Config) []FieldError {
	var errs []FieldError
	o := &cfg.Orchestrator

	if o.DefaultProvider != "" {
		if _, ok := cfg.Providers[o.DefaultProvider]; !ok {
			errs = append(errs, FieldError{
				Field:   "orchestrator.default_provider",
				Message: fmt.Sprintf("provider %q is not configured", o.DefaultProvider),
			})
		}
	}
	if o.Temperature < 0 || o.Temperature > 2 {
		errs = append(errs, FieldError{
			Field:   "orchestrator.temperature",
			Message: fmt.Sprintf("must be in [0.0, 2.0], got %.2f", o.Temperature),
		})
	}
	if o.MaxTokens < 0 {
		errs = append(errs, FieldError{
			Field:   "orchestrator.max_tokens",
			Message: "must not be negative",
		})
	}
	if o.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "orchestrator.timeout",
			Message: "must be positive",
		})
	}
	if o.Fallback.UnhealthyThreshold <= 0 {
		errs = append(errs, FieldError{
			Field:   "orchestrator.fallback.unhealthy_threshold",
			Message: "must be positive",
		})
	}
	if o.Retry.MaxRetries < 0 {
		errs = append(errs, FieldError{
			Field:   "orchestrator.retry.max_retries",
			Message: "must not be negative",
		})
	}
	if o.Retry.BaseDelay < 0 {
		errs = append(errs, FieldError{
			Field:   "orchestrator.retry.base_delay",
			Message: "must not be negative",
		})
	}
	if o.Retry.MaxDelay < 0 {
		errs = append(errs, FieldError{
			Field:   "orchestrator.retry.max_delay",
			Message: "must not be negative",
		})
	}
	if o.Retry.MaxDelay > 0 && o.Retry.BaseDelay > o.Retry.MaxDelay {
		errs = append(errs, FieldError{
			Field:   "orchestrator.retry.base_delay",
			Message: "must not exceed max_delay",
		})
	}
	if o.Retry.ExponentialBase != 0 && o.Retry.ExponentialBase < 1 {
		errs = append(errs, FieldError{
			Field:   "orchestrator.retry.exponential_base",
			Message: "must be at least 1.0",
		})
	}

	return errs
}

// knownProviderTypes enumerates the adapter implementations.
var knownProviderTypes = map[string]bool{
	"anthropic": true,
	"openai":    true,
	"generic":   true,
}

func validateProviders(cfg *Config) []FieldError {
	var errs []FieldError

	for name, provider := range cfg.Providers {
		field := func(f string) string { return fmt.Sprintf("providers.%s.%s", name, f) }

		if name == "" {
			errs = append(errs, FieldError{
				Field:   "providers",
				Message: "provider name must not be empty",
			})
			continue
		}
		if provider.Type != "" && !knownProviderTypes[provider.Type] {
			errs = append(errs, FieldError{
				Field:   field("type"),
				Message: fmt.Sprintf("unknown type %q (expected anthropic, openai, or generic)", provider.Type),
			})
		}
		if provider.BaseURL != "" {
			if u, err := url.Parse(provider.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, FieldError{
					Field:   field("base_url"),
					Message: fmt.Sprintf("invalid URL %q", provider.BaseURL),
				})
			}
		}
		if provider.Timeout < 0 {
			errs = append(errs, FieldError{
				Field:   field("timeout"),
				Message: "must not be negative",
			})
		}
	}

	return errs
}

func validateCache(c *CacheConfig) []FieldError {
	var errs []FieldError

	switch c.Backend {
	case "memory", "redis":
	default:
		errs = append(errs, FieldError{
			Field:   "cache.backend",
			Message: fmt.Sprintf("unknown backend %q (expected memory or redis)", c.Backend),
		})
	}
	if c.TTL <= 0 {
		errs = append(errs, FieldError{
			Field:   "cache.ttl",
			Message: "must be positive",
		})
	}
	if c.MaxEntries <= 0 {
		errs = append(errs, FieldError{
			Field:   "cache.max_entries",
			Message: "must be positive",
		})
	}
	if c.Backend == "redis" && c.Redis.Addr == "" {
		errs = append(errs, FieldError{
			Field:   "cache.redis.addr",
			Message: "required when backend is redis",
		})
	}

	return errs
}

func validateUsage(u *UsageConfig) []FieldError {
	var errs []FieldError

	switch u.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "usage.backend",
			Message: fmt.Sprintf("unknown backend %q (expected memory or sqlite)", u.Backend),
		})
	}
	switch u.SQLite.Driver {
	case "sqlite", "sqlite3":
	default:
		errs = append(errs, FieldError{
			Field:   "usage.sqlite.driver",
			Message: fmt.Sprintf("unknown driver %q (expected sqlite or sqlite3)", u.SQLite.Driver),
		})
	}
	if u.Backend == "sqlite" && u.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "usage.sqlite.path",
			Message: "required when backend is sqlite",
		})
	}
	if u.Recorder.AsyncBuffer <= 0 {
		errs = append(errs, FieldError{
			Field:   "usage.recorder.async_buffer",
			Message: "must be positive",
		})
	}
	if u.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "usage.retention.days",
			Message: "must not be negative",
		})
	}
	if u.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "usage.retention.max_records",
			Message: "must not be negative",
		})
	}
	if u.Export.MaxExportSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "usage.export.max_export_size",
			Message: "must be positive",
		})
	}

	return errs
}

func validateSecrets(s *SecretsConfig) []FieldError {
	var errs []FieldError

	if s.File.Enabled && s.File.Path == "" {
		errs = append(errs, FieldError{
			Field:   "secrets.file.path",
			Message: "required when the file source is enabled",
		})
	}

	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch t.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q (expected debug, info, warn, or error)", t.Logging.Level),
		})
	}
	switch t.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q (expected json or text)", t.Logging.Format),
		})
	}
	if t.Metrics.Enabled && !strings.HasPrefix(t.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "must start with /",
		})
	}
	if t.Health.CheckInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.check_interval",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateServer(s *ServerConfig) []FieldError {
	var errs []FieldError

	if _, _, err := net.SplitHostPort(s.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid address %q: expected host:port", s.ListenAddress),
		})
	}
	if s.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "must not be negative",
		})
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "must not be negative",
		})
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "must be positive",
		})
	}
	if s.RequestTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.request_timeout",
			Message: "must not be negative",
		})
	}
	if s.MaxHeaderBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "must be positive",
		})
	}

	return errs
}
