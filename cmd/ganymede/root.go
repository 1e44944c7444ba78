package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ganymede",
	Short: "Ganymede - AI provider orchestration layer",
	Long: `Ganymede is an orchestration layer for AI text generation.

It fronts multiple AI backends behind a single generate operation,
providing:
  - Uniform adapters for Anthropic, OpenAI, and OpenAI-compatible servers
  - Response caching with deterministic request fingerprints
  - Health-ranked provider selection with automatic fallback
  - Retries with exponential backoff and jitter
  - A usage log with SQLite storage, retention, and export`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a code derived from the
// error type.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
