package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/providerfactory"
)

var validateFlags struct {
	checkProviders bool
	timeout        time.Duration
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Load and validate the configuration file.

With --check-providers, each configured provider adapter is constructed
and its connectivity probed with a lightweight validation call. This
requires the provider API keys to be resolvable.

Examples:
  # Validate the config file only
  ganymede validate --config /etc/ganymede/config.yaml

  # Also probe provider connectivity
  ganymede validate --check-providers`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.checkProviders, "check-providers", false, "probe provider connectivity")
	validateCmd.Flags().DurationVar(&validateFlags.timeout, "timeout", 10*time.Second, "connectivity probe timeout")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("Configuration valid")
	fmt.Printf("  providers: %d\n", len(cfg.Providers))
	fmt.Printf("  cache: %s (enabled: %t)\n", cfg.Cache.Backend, cfg.Cache.Enabled)
	fmt.Printf("  usage: %s (enabled: %t)\n", cfg.Usage.Backend, cfg.Usage.Enabled)
	fmt.Printf("  listen: %s\n", cfg.Server.ListenAddress)

	if !validateFlags.checkProviders {
		return nil
	}

	secretsMgr, err := buildSecretsManager(cfg.Secrets)
	if err != nil {
		return err
	}
	defer secretsMgr.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), validateFlags.timeout)
	defer cancel()

	adapters, err := providerfactory.BuildAdapters(ctx, cfg, secretsMgr)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}
	defer func() {
		for _, a := range adapters {
			a.Close()
		}
	}()

	fmt.Println()
	fmt.Println("Probing provider connectivity...")

	names := make([]string, 0, len(adapters))
	results := make(map[string]bool, len(adapters))
	for _, a := range adapters {
		names = append(names, a.GetName())
		results[a.GetName()] = a.ValidateConnection(ctx)
	}
	sort.Strings(names)

	failures := 0
	for _, name := range names {
		if results[name] {
			fmt.Printf("  %-20s ok\n", name)
		} else {
			fmt.Printf("  %-20s UNREACHABLE\n", name)
			failures++
		}
	}

	if failures > 0 {
		return cli.NewCommandError("validate",
			fmt.Errorf("%d of %d providers unreachable", failures, len(adapters)))
	}
	fmt.Println("All providers reachable")
	return nil
}
