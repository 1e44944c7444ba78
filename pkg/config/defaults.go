package config

import "time"

// Default values for configuration fields.
const (
	// Orchestrator defaults
	DefaultTemperature        = 0.7
	DefaultMaxTokens          = 1024
	DefaultTimeout            = 30 * time.Second
	DefaultFallbackEnabled    = true
	DefaultUnhealthyThreshold = 3

	// Retry defaults
	DefaultRetryMaxRetries      = 3
	DefaultRetryBaseDelay       = time.Second
	DefaultRetryMaxDelay        = 60 * time.Second
	DefaultRetryExponentialBase = 2.0
	DefaultRetryJitter          = true

	// Cache defaults
	DefaultCacheEnabled    = true
	DefaultCacheTTL        = time.Hour
	DefaultCacheBackend    = "memory"
	DefaultCacheMaxEntries = 10000
	DefaultRedisAddr       = "127.0.0.1:6379"
	DefaultRedisKeyPrefix  = "ganymede:cache:"

	// Usage defaults
	DefaultUsageEnabled             = true
	DefaultUsageBackend             = "sqlite"
	DefaultUsageSQLitePath          = "data/usage.db"
	DefaultUsageSQLiteDriver        = "sqlite"
	DefaultUsageSQLiteMaxOpenConns  = 10
	DefaultUsageSQLiteMaxIdleConns  = 5
	DefaultUsageSQLiteWALMode       = true
	DefaultUsageSQLiteBusyTimeout   = 5 * time.Second
	DefaultUsageRecorderAsyncBuffer = 1000
	DefaultUsageRecorderWriteTO     = 5 * time.Second
	DefaultUsageRetentionDays       = 90
	DefaultUsageRetentionSchedule   = "0 3 * * *"
	DefaultUsageRetentionMaxRecords = int64(0)
	DefaultUsageExportJSONPretty    = true
	DefaultUsageExportCSVHeader     = true
	DefaultUsageExportMaxSize       = 1000000

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultLoggingRedact    = true
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "ganymede"
	DefaultHealthEnabled    = true

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 5 * time.Minute
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 2 * time.Minute
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600 // 1 hour
)

// New returns a Config with every enabled-by-default toggle switched on.
// Loading unmarshals YAML over this value, so a toggle absent from the
// file keeps its default while an explicit "enabled: false" sticks
// (distinguishing "not set" from "set to false", which a post-unmarshal
// pass over bool zero values cannot do).
func New() *Config {
	cfg := &Config{}
	cfg.Orchestrator.Fallback.Enabled = DefaultFallbackEnabled
	cfg.Orchestrator.Retry.Jitter = DefaultRetryJitter
	cfg.Cache.Enabled = DefaultCacheEnabled
	cfg.Usage.Enabled = DefaultUsageEnabled
	cfg.Usage.SQLite.WALMode = DefaultUsageSQLiteWALMode
	cfg.Usage.Export.JSONPretty = DefaultUsageExportJSONPretty
	cfg.Usage.Export.CSVIncludeHeader = DefaultUsageExportCSVHeader
	cfg.Telemetry.Logging.RedactSecrets = DefaultLoggingRedact
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Health.Enabled = DefaultHealthEnabled
	cfg.Server.CORS.Enabled = DefaultCORSEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to zero-valued fields of a Config.
// It is idempotent and safe to call multiple times. Boolean toggles are
// not touched here; see New.
func ApplyDefaults(cfg *Config) {
	// Orchestrator defaults
	if cfg.Orchestrator.Temperature == 0 {
		cfg.Orchestrator.Temperature = DefaultTemperature
	}
	if cfg.Orchestrator.MaxTokens == 0 {
		cfg.Orchestrator.MaxTokens = DefaultMaxTokens
	}
	if cfg.Orchestrator.Timeout == 0 {
		cfg.Orchestrator.Timeout = DefaultTimeout
	}
	if cfg.Orchestrator.Fallback.UnhealthyThreshold == 0 {
		cfg.Orchestrator.Fallback.UnhealthyThreshold = DefaultUnhealthyThreshold
	}

	// Retry defaults
	if cfg.Orchestrator.Retry.MaxRetries == 0 {
		cfg.Orchestrator.Retry.MaxRetries = DefaultRetryMaxRetries
	}
	if cfg.Orchestrator.Retry.BaseDelay == 0 {
		cfg.Orchestrator.Retry.BaseDelay = DefaultRetryBaseDelay
	}
	if cfg.Orchestrator.Retry.MaxDelay == 0 {
		cfg.Orchestrator.Retry.MaxDelay = DefaultRetryMaxDelay
	}
	if cfg.Orchestrator.Retry.ExponentialBase == 0 {
		cfg.Orchestrator.Retry.ExponentialBase = DefaultRetryExponentialBase
	}

	// Provider defaults - applied to each provider
	for name, provider := range cfg.Providers {
		if provider.Name == "" {
			provider.Name = name
		}
		if provider.Timeout == 0 {
			provider.Timeout = cfg.Orchestrator.Timeout
		}
		cfg.Providers[name] = provider
	}

	// Cache defaults
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = DefaultCacheMaxEntries
	}
	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Cache.Redis.KeyPrefix == "" {
		cfg.Cache.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// Usage defaults
	if cfg.Usage.Backend == "" {
		cfg.Usage.Backend = DefaultUsageBackend
	}
	if cfg.Usage.SQLite.Path == "" {
		cfg.Usage.SQLite.Path = DefaultUsageSQLitePath
	}
	if cfg.Usage.SQLite.Driver == "" {
		cfg.Usage.SQLite.Driver = DefaultUsageSQLiteDriver
	}
	if cfg.Usage.SQLite.MaxOpenConns == 0 {
		cfg.Usage.SQLite.MaxOpenConns = DefaultUsageSQLiteMaxOpenConns
	}
	if cfg.Usage.SQLite.MaxIdleConns == 0 {
		cfg.Usage.SQLite.MaxIdleConns = DefaultUsageSQLiteMaxIdleConns
	}
	if cfg.Usage.SQLite.BusyTimeout == 0 {
		cfg.Usage.SQLite.BusyTimeout = DefaultUsageSQLiteBusyTimeout
	}
	if cfg.Usage.Recorder.AsyncBuffer == 0 {
		cfg.Usage.Recorder.AsyncBuffer = DefaultUsageRecorderAsyncBuffer
	}
	if cfg.Usage.Recorder.WriteTimeout == 0 {
		cfg.Usage.Recorder.WriteTimeout = DefaultUsageRecorderWriteTO
	}
	if cfg.Usage.Retention.Days == 0 {
		cfg.Usage.Retention.Days = DefaultUsageRetentionDays
	}
	if cfg.Usage.Retention.PruneSchedule == "" {
		cfg.Usage.Retention.PruneSchedule = DefaultUsageRetentionSchedule
	}
	if cfg.Usage.Retention.MaxRecords == 0 {
		cfg.Usage.Retention.MaxRecords = DefaultUsageRetentionMaxRecords
	}
	if cfg.Usage.Export.MaxExportSize == 0 {
		cfg.Usage.Export.MaxExportSize = DefaultUsageExportMaxSize
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if len(cfg.Server.CORS.AllowedOrigins) == 0 {
		cfg.Server.CORS.AllowedOrigins = []string{"*"}
	}
	if len(cfg.Server.CORS.AllowedMethods) == 0 {
		cfg.Server.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.Server.CORS.AllowedHeaders) == 0 {
		cfg.Server.CORS.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
	if cfg.Server.CORS.MaxAge == 0 {
		cfg.Server.CORS.MaxAge = DefaultCORSMaxAge
	}
}
