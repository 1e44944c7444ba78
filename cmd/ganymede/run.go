package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/api"
	"mercator-hq/ganymede/pkg/cache"
	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/orchestrator"
	"mercator-hq/ganymede/pkg/providerfactory"
	"mercator-hq/ganymede/pkg/routing"
	"mercator-hq/ganymede/pkg/server"
	"mercator-hq/ganymede/pkg/telemetry/health"
	"mercator-hq/ganymede/pkg/telemetry/logging"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
	"mercator-hq/ganymede/pkg/usage/recorder"
	"mercator-hq/ganymede/pkg/usage/retention"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Ganymede HTTP service",
	Long: `Start the Ganymede HTTP service with the specified configuration.

The service listens on the configured address and routes generation
requests through the cache, provider selection, retry, and fallback
pipeline.

Examples:
  # Start with default config
  ganymede run

  # Start with custom config
  ganymede run --config /etc/ganymede/config.yaml

  # Override listen address
  ganymede run --listen 0.0.0.0:8080

  # Validate config without starting the service
  ganymede run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the service")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("Configuration valid")
		return nil
	}

	fmt.Printf("Ganymede v%s\n", Version)

	ctx, stop := cli.SignalContext()
	defer stop()

	secretsMgr, err := buildSecretsManager(cfg.Secrets)
	if err != nil {
		return err
	}
	defer secretsMgr.Close()

	adapters, err := providerfactory.BuildAdapters(ctx, cfg, secretsMgr)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Printf("Providers initialized (%d)\n", len(adapters))

	var cacheStore cache.Store
	if cfg.Cache.Enabled && cfg.Cache.Backend == "redis" {
		cacheStore, err = cache.NewRedisStore(cache.RedisOptions{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.KeyPrefix,
		})
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("connecting to redis: %w", err))
		}
	}

	var observers []orchestrator.Observer

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics, nil)
		observers = append(observers, collector)
	}

	var usageRecorder *recorder.Recorder
	var pruner *retention.Pruner
	if cfg.Usage.Enabled {
		usageStorage, err := openUsageStorage(cfg.Usage)
		if err != nil {
			return err
		}
		defer usageStorage.Close()

		usageRecorder = recorder.NewRecorder(usageStorage, &recorder.Config{
			Enabled:      true,
			AsyncBuffer:  cfg.Usage.Recorder.AsyncBuffer,
			WriteTimeout: cfg.Usage.Recorder.WriteTimeout,
		})
		defer usageRecorder.Close()
		observers = append(observers, usageRecorder)

		if cfg.Usage.Retention.PruneSchedule != "" {
			pruner = retention.NewPruner(usageStorage, &retention.Config{
				RetentionDays: cfg.Usage.Retention.Days,
				PruneSchedule: cfg.Usage.Retention.PruneSchedule,
				MaxRecords:    cfg.Usage.Retention.MaxRecords,
			})
			if err := pruner.Start(ctx); err != nil {
				slog.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
				if next := pruner.NextPruning(); next != nil {
					slog.Debug("usage retention scheduler started", "next_pruning", next)
				}
			}
		}
		fmt.Println("Usage log initialized")
	}

	orch, err := orchestrator.New(orchestrator.Config{
		DefaultProvider:    cfg.Orchestrator.DefaultProvider,
		Temperature:        cfg.Orchestrator.Temperature,
		MaxTokens:          cfg.Orchestrator.MaxTokens,
		FallbackEnabled:    cfg.Orchestrator.Fallback.Enabled,
		UnhealthyThreshold: cfg.Orchestrator.Fallback.UnhealthyThreshold,
		CacheEnabled:       cfg.Cache.Enabled,
		CacheTTL:           cfg.Cache.TTL,
		CacheMaxEntries:    cfg.Cache.MaxEntries,
		CacheStore:         cacheStore,
		Retry:              cfg.Orchestrator.Retry,
		Observers:          observers,
	}, adapters)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer orch.Close()

	var checker *health.Checker
	if cfg.Telemetry.Health.Enabled {
		checker = health.New(5 * time.Second)
		threshold := cfg.Orchestrator.Fallback.UnhealthyThreshold
		checker.RegisterCheck("providers", func(ctx context.Context) error {
			return providersReady(orch, threshold)
		})
	}

	opts := api.RouterOptions{
		Logger:        logger,
		HealthChecker: checker,
		Version:       Version,
		Commit:        GitCommit,
		BuildTime:     BuildDate,
	}
	if collector != nil {
		opts.Metrics = collector.Handler()
	}
	router := api.NewRouter(orch, cfg.Server, opts)

	srv := server.New(cfg.Server, router, logger)

	fmt.Printf("Listening on %s\n", cfg.Server.ListenAddress)
	fmt.Println("Press Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Println("Server stopped")
	return nil
}

// providersReady reports readiness: at least one provider must be under
// the unhealthy threshold.
func providersReady(orch *orchestrator.Orchestrator, threshold int) error {
	if threshold <= 0 {
		threshold = routing.DefaultUnhealthyThreshold
	}
	records := orch.Health()
	for _, rec := range records {
		if rec.ConsecutiveFailures < threshold {
			return nil
		}
	}
	return fmt.Errorf("all %d providers unhealthy", len(records))
}
