package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/providerfactory"
)

var providersFlags struct {
	check  bool
	format string
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured providers",
	Long: `List the configured provider adapters with their type, model, and
capabilities.

With --check, each provider's connectivity is probed. This requires the
provider API keys to be resolvable.

Examples:
  ganymede providers
  ganymede providers --check
  ganymede providers --format json`,
	RunE: listProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)

	providersCmd.Flags().BoolVar(&providersFlags.check, "check", false, "probe provider connectivity")
	providersCmd.Flags().StringVar(&providersFlags.format, "format", "text", "output format: text, json, csv")
}

// providerListing is one row of the providers command output.
type providerListing struct {
	Name                  string `json:"name"`
	Type                  string `json:"type"`
	Model                 string `json:"model"`
	SupportsSystemMessage bool   `json:"supports_system_message"`
	SupportsContext       bool   `json:"supports_context"`
	Reachable             *bool  `json:"reachable,omitempty"`
}

// providerTable renders listings for the text and CSV formatters.
type providerTable struct {
	listings []providerListing
	checked  bool
}

func (t providerTable) Headers() []string {
	headers := []string{"NAME", "TYPE", "MODEL", "SYSTEM_MSG", "CONTEXT"}
	if t.checked {
		headers = append(headers, "REACHABLE")
	}
	return headers
}

func (t providerTable) Rows() [][]string {
	rows := make([][]string, 0, len(t.listings))
	for _, l := range t.listings {
		row := []string{
			l.Name,
			l.Type,
			l.Model,
			strconv.FormatBool(l.SupportsSystemMessage),
			strconv.FormatBool(l.SupportsContext),
		}
		if t.checked {
			row = append(row, strconv.FormatBool(l.Reachable != nil && *l.Reachable))
		}
		rows = append(rows, row)
	}
	return rows
}

func listProviders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Providers) == 0 {
		fmt.Println("No providers configured.")
		return nil
	}

	secretsMgr, err := buildSecretsManager(cfg.Secrets)
	if err != nil {
		return err
	}
	defer secretsMgr.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	adapters, err := providerfactory.BuildAdapters(ctx, cfg, secretsMgr)
	if err != nil {
		return cli.NewCommandError("providers", err)
	}
	defer func() {
		for _, a := range adapters {
			a.Close()
		}
	}()

	listings := make([]providerListing, 0, len(adapters))
	for _, a := range adapters {
		info := a.Describe()
		listing := providerListing{
			Name:                  info.Name,
			Type:                  info.Type,
			Model:                 info.Model,
			SupportsSystemMessage: info.SupportsSystemMessage,
			SupportsContext:       info.SupportsContext,
		}
		if providersFlags.check {
			ok := a.ValidateConnection(ctx)
			listing.Reachable = &ok
		}
		listings = append(listings, listing)
	}

	return outputProviders(listings)
}

func outputProviders(listings []providerListing) error {
	format := cli.OutputFormat(providersFlags.format)
	formatter := cli.NewFormatter(format)

	if format == cli.FormatJSON {
		return formatter.FormatTo(os.Stdout, listings)
	}
	return formatter.FormatTo(os.Stdout, providerTable{
		listings: listings,
		checked:  providersFlags.check,
	})
}
