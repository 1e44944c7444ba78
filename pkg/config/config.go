package config

import (
	"time"

	"mercator-hq/ganymede/pkg/providers"
	"mercator-hq/ganymede/pkg/retry"
)

// Config is the root configuration structure for Ganymede.
// It contains all configuration sections for the orchestrator, providers,
// response cache, usage log, secrets, telemetry, and the HTTP service.
type Config struct {
	// Orchestrator contains request-handling configuration: default
	// provider, generation defaults, fallback, and retry policy.
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`

	// Providers contains configuration for all AI backend adapters.
	// Keys are provider names (e.g., "openai", "anthropic", "ollama").
	Providers map[string]providers.Config `yaml:"providers"`

	// Cache contains response cache configuration including backend
	// selection and TTL.
	Cache CacheConfig `yaml:"cache"`

	// Usage contains configuration for the usage log: storage backend,
	// recorder buffering, retention, and export settings.
	Usage UsageConfig `yaml:"usage"`

	// Secrets contains configuration for API key resolution sources.
	Secrets SecretsConfig `yaml:"secrets"`

	// Telemetry contains observability configuration: logging, metrics,
	// and health endpoints.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Server contains HTTP service configuration: listen address,
	// timeouts, and CORS.
	Server ServerConfig `yaml:"server"`
}

// OrchestratorConfig contains request-handling configuration.
type OrchestratorConfig struct {
	// DefaultProvider is tried first when the caller does not name a
	// provider. Must reference a configured provider when set.
	// Overridden by the AI_PROVIDER environment variable.
	// Default: "" (pure health-ranked selection)
	DefaultProvider string `yaml:"default_provider"`

	// Temperature is applied to requests that leave temperature unset.
	// Must be in [0.0, 2.0]. Overridden by AI_TEMPERATURE.
	// Default: 0.7
	Temperature float64 `yaml:"temperature"`

	// MaxTokens is applied to requests that leave max_tokens unset.
	// Overridden by AI_MAX_TOKENS.
	// Default: 1024
	MaxTokens int `yaml:"max_tokens"`

	// Timeout bounds each upstream provider call. Providers without their
	// own timeout inherit it. Overridden by AI_TIMEOUT (seconds or a Go
	// duration string).
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// Fallback configures trying further providers after a failure.
	Fallback FallbackConfig `yaml:"fallback"`

	// Retry is the backoff policy applied around every provider call.
	Retry retry.Policy `yaml:"retry"`
}

// FallbackConfig configures provider fallback.
type FallbackConfig struct {
	// Enabled allows trying the next-best provider after a failure.
	// When false only the first candidate is attempted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// UnhealthyThreshold is the consecutive-failure count at which a
	// provider is skipped during selection.
	// Default: 3
	UnhealthyThreshold int `yaml:"unhealthy_threshold"`
}

// CacheConfig contains response cache configuration.
type CacheConfig struct {
	// Enabled turns on response caching. Overridden by ENABLE_CACHING.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// TTL is how long cached responses stay valid. Overridden by
	// CACHE_TTL (seconds or a Go duration string).
	// Default: 1h
	TTL time.Duration `yaml:"ttl"`

	// Backend selects the cache store.
	// Options: "memory", "redis"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// MaxEntries bounds the in-memory store. Ignored for Redis.
	// Default: 10000
	MaxEntries int `yaml:"max_entries"`

	// SweepInterval is the cadence of the in-memory expiry sweeper.
	// Zero derives it from the TTL. Ignored for Redis (native TTL).
	// Default: 0
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// Redis contains Redis-specific configuration.
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig contains Redis connection configuration for the cache.
type RedisConfig struct {
	// Addr is the Redis server address.
	// Default: "127.0.0.1:6379"
	Addr string `yaml:"addr"`

	// Password authenticates the connection. Empty for no auth.
	Password string `yaml:"password"`

	// DB is the Redis logical database number.
	// Default: 0
	DB int `yaml:"db"`

	// KeyPrefix namespaces all cache keys.
	// Default: "ganymede:cache:"
	KeyPrefix string `yaml:"key_prefix"`
}

// UsageConfig contains configuration for the usage log.
type UsageConfig struct {
	// Enabled controls whether usage records are written.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the usage storage.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder contains usage recorder configuration.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains retention policy configuration.
	Retention RetentionConfig `yaml:"retention"`

	// Export contains export configuration.
	Export ExportConfig `yaml:"export"`
}

// SQLiteConfig contains SQLite-specific configuration for usage storage.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/usage.db"
	Path string `yaml:"path"`

	// Driver selects the SQL driver.
	// Options: "sqlite" (pure Go, modernc.org), "sqlite3" (CGO, mattn)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// MaxOpenConns bounds open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns bounds idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long a writer waits for a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains usage recorder configuration.
type RecorderConfig struct {
	// AsyncBuffer is the size of the asynchronous write buffer. Records
	// are dropped (and counted) when the buffer is full rather than
	// blocking the request path.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds each storage write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig contains usage retention configuration.
type RetentionConfig struct {
	// Days is how long usage records are kept. Zero disables age-based
	// pruning.
	// Default: 90
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for the pruning job.
	// Default: "0 3 * * *" (daily at 03:00)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords caps the total record count; the oldest records are
	// pruned first. Zero means unlimited.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// ExportConfig contains usage export configuration.
type ExportConfig struct {
	// JSONPretty controls indented JSON export output.
	// Default: true
	JSONPretty bool `yaml:"json_pretty"`

	// CSVIncludeHeader controls the CSV header row.
	// Default: true
	CSVIncludeHeader bool `yaml:"csv_include_header"`

	// MaxExportSize caps the number of records per export.
	// Default: 1000000
	MaxExportSize int `yaml:"max_export_size"`
}

// SecretsConfig contains configuration for API key resolution.
// Provider api_key values of the form ${secret:name} are resolved through
// the configured sources, environment first.
type SecretsConfig struct {
	// EnvPrefix is prepended to secret names when resolving from the
	// environment (e.g., prefix "GANYMEDE_" resolves ${secret:openai_key}
	// from GANYMEDE_OPENAI_KEY).
	// Default: "" (no prefix)
	EnvPrefix string `yaml:"env_prefix"`

	// File contains file-based secret source configuration.
	File FileSecretsConfig `yaml:"file"`
}

// FileSecretsConfig configures the file-based secret source.
type FileSecretsConfig struct {
	// Enabled activates the file source.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the secrets file location (YAML map of name to value).
	// The file must not be readable by group or other (0600 or 0400).
	Path string `yaml:"path"`

	// Watch reloads the file on change.
	// Default: false
	Watch bool `yaml:"watch"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Health contains health endpoint configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format selects the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// RedactSecrets scrubs API keys and bearer tokens from log output.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the Prometheus metric namespace.
	// Default: "ganymede"
	Namespace string `yaml:"namespace"`
}

// HealthConfig contains health endpoint configuration.
type HealthConfig struct {
	// Enabled controls the /healthz and /readyz endpoints.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// CheckInterval is the cadence of background provider connectivity
	// checks feeding readiness. Zero disables background checking and
	// readiness reports ready once startup completes.
	// Default: 0
	CheckInterval time.Duration `yaml:"check_interval"`
}

// ServerConfig contains HTTP service configuration.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes. Must exceed the orchestrator timeout budget or long
	// generations are cut off mid-write.
	// Default: 5m
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle limit.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are abandoned.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds each API request end to end, covering every
	// retry and fallback attempt. Zero disables the per-request deadline.
	// Default: 2m
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration for the HTTP service.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins.
	// Use ["*"] to allow all origins (not recommended for production).
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed request headers.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the preflight cache duration in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}
