package main

import (
	"fmt"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/secrets"
	"mercator-hq/ganymede/pkg/usage"
	"mercator-hq/ganymede/pkg/usage/storage"
)

// loadConfig loads the configuration named by the global --config flag,
// with environment overrides applied on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg, nil
}

// buildSecretsManager assembles the secret resolution chain: environment
// first, then the file source when enabled.
func buildSecretsManager(cfg config.SecretsConfig) (*secrets.Manager, error) {
	providers := []secrets.Provider{secrets.NewEnvProvider(cfg.EnvPrefix)}

	if cfg.File.Enabled {
		fileProvider, err := secrets.NewFileProvider(cfg.File.Path, cfg.File.Watch)
		if err != nil {
			return nil, cli.NewConfigError("secrets.file", err.Error())
		}
		// Environment wins; the file source fills in the rest.
		providers = append(providers, fileProvider)
	}

	return secrets.NewManager(providers...), nil
}

// openUsageStorage opens the configured usage backend.
func openUsageStorage(cfg config.UsageConfig) (usage.Storage, error) {
	switch cfg.Backend {
	case "sqlite", "":
		return storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.SQLite.Path,
			Driver:       cfg.SQLite.Driver,
			MaxOpenConns: cfg.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.SQLite.MaxIdleConns,
			WALMode:      cfg.SQLite.WALMode,
			BusyTimeout:  cfg.SQLite.BusyTimeout,
		})
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, cli.NewConfigError("usage.backend", fmt.Sprintf("unsupported backend %q", cfg.Backend))
	}
}
