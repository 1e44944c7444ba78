package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/usage"
	"mercator-hq/ganymede/pkg/usage/export"
	"mercator-hq/ganymede/pkg/usage/retention"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Manage the usage log",
	Long:  `Export and prune the usage log backing store.`,
}

var usageExportFlags struct {
	format    string
	output    string
	timeRange string
	provider  string
	model     string
	status    string
	scope     string
	limit     int
}

var usageExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export usage records",
	Long: `Export usage records to JSON or CSV.

Records stream from the configured backend, so exports of large logs run
in constant memory.

Examples:
  # Export everything as JSON to stdout
  ganymede usage export

  # Export one provider's records to CSV
  ganymede usage export --format csv --provider openai --output usage.csv

  # Export a time range
  ganymede usage export --time-range "2026-08-01T00:00:00Z/2026-09-01T00:00:00Z"`,
	RunE: exportUsage,
}

var usagePruneFlags struct {
	days       int
	maxRecords int64
	archive    bool
	archiveDir string
}

var usagePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Prune old usage records",
	Long: `Delete usage records past the retention window.

Flags override the configured retention policy. With --archive, pruned
records are exported to JSON before deletion.

Examples:
  # Prune with the configured policy
  ganymede usage prune

  # Keep only the last 30 days
  ganymede usage prune --days 30

  # Cap the log at one million records, archiving the overflow
  ganymede usage prune --max-records 1000000 --archive`,
	RunE: pruneUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)
	usageCmd.AddCommand(usageExportCmd)
	usageCmd.AddCommand(usagePruneCmd)

	usageExportCmd.Flags().StringVar(&usageExportFlags.format, "format", "json", "export format: json, csv")
	usageExportCmd.Flags().StringVarP(&usageExportFlags.output, "output", "o", "", "output file (default: stdout)")
	usageExportCmd.Flags().StringVar(&usageExportFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	usageExportCmd.Flags().StringVar(&usageExportFlags.provider, "provider", "", "filter by provider")
	usageExportCmd.Flags().StringVar(&usageExportFlags.model, "model", "", "filter by model")
	usageExportCmd.Flags().StringVar(&usageExportFlags.status, "status", "", "filter by status")
	usageExportCmd.Flags().StringVar(&usageExportFlags.scope, "scope", "", "filter by scope")
	usageExportCmd.Flags().IntVar(&usageExportFlags.limit, "limit", 0, "max records (default: configured export cap)")

	usagePruneCmd.Flags().IntVar(&usagePruneFlags.days, "days", 0, "override retention days")
	usagePruneCmd.Flags().Int64Var(&usagePruneFlags.maxRecords, "max-records", 0, "override record cap")
	usagePruneCmd.Flags().BoolVar(&usagePruneFlags.archive, "archive", false, "archive records before deletion")
	usagePruneCmd.Flags().StringVar(&usagePruneFlags.archiveDir, "archive-dir", "", "archive directory")
}

func exportUsage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openUsageStorage(cfg.Usage)
	if err != nil {
		return err
	}
	defer store.Close()

	query, err := buildExportQuery(cfg.Usage.Export.MaxExportSize)
	if err != nil {
		return err
	}

	var exporter usage.Exporter
	switch usageExportFlags.format {
	case "json":
		exporter = export.NewJSONExporter(cfg.Usage.Export.JSONPretty)
	case "csv":
		exporter = export.NewCSVExporter(cfg.Usage.Export.CSVIncludeHeader)
	default:
		return fmt.Errorf("unsupported export format: %s", usageExportFlags.format)
	}

	out := io.Writer(os.Stdout)
	var progress cli.ProgressReporter
	if usageExportFlags.output != "" {
		f, err := os.Create(usageExportFlags.output)
		if err != nil {
			return cli.NewCommandError("usage export", err)
		}
		defer f.Close()
		out = f
		progress = cli.NewProgressReporter(nil)
	}

	ctx := cmd.Context()

	if progress != nil {
		total, err := store.Count(ctx, query)
		if err != nil {
			return cli.NewCommandError("usage export", err)
		}
		progress.Start(total)
	}

	records, errChan, err := store.QueryStream(ctx, query)
	if err != nil {
		return cli.NewCommandError("usage export", err)
	}

	counted := records
	if progress != nil {
		counted = countRecords(records, progress)
	}

	if err := exporter.ExportStream(ctx, counted, out); err != nil {
		return cli.NewCommandError("usage export", err)
	}
	if err := <-errChan; err != nil {
		return cli.NewCommandError("usage export", err)
	}

	if progress != nil {
		progress.Finish()
		fmt.Fprintf(os.Stderr, "Exported to %s\n", usageExportFlags.output)
	}
	return nil
}

// countRecords relays records while updating the progress reporter.
func countRecords(in <-chan *usage.Record, progress cli.ProgressReporter) <-chan *usage.Record {
	out := make(chan *usage.Record)
	go func() {
		defer close(out)
		var n int64
		for rec := range in {
			out <- rec
			n++
			progress.Update(n)
		}
	}()
	return out
}

func buildExportQuery(maxExport int) (*usage.Query, error) {
	query := &usage.Query{
		Provider: usageExportFlags.provider,
		Model:    usageExportFlags.model,
		Status:   usageExportFlags.status,
		Scope:    usageExportFlags.scope,
	}

	if usageExportFlags.timeRange != "" {
		parts := strings.Split(usageExportFlags.timeRange, "/")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid time range format (expected: start/end)")
		}
		start, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid start time: %w", err)
		}
		end, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid end time: %w", err)
		}
		query.StartTime = &start
		query.EndTime = &end
	}

	query.Limit = usageExportFlags.limit
	if query.Limit <= 0 || (maxExport > 0 && query.Limit > maxExport) {
		query.Limit = maxExport
	}
	return query, nil
}

func pruneUsage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openUsageStorage(cfg.Usage)
	if err != nil {
		return err
	}
	defer store.Close()

	retCfg := &retention.Config{
		RetentionDays:       cfg.Usage.Retention.Days,
		MaxRecords:          cfg.Usage.Retention.MaxRecords,
		ArchiveBeforeDelete: usagePruneFlags.archive,
		ArchivePath:         usagePruneFlags.archiveDir,
	}
	if retCfg.ArchivePath == "" {
		retCfg.ArchivePath = retention.DefaultConfig().ArchivePath
	}
	if usagePruneFlags.days > 0 {
		retCfg.RetentionDays = usagePruneFlags.days
	}
	if usagePruneFlags.maxRecords > 0 {
		retCfg.MaxRecords = usagePruneFlags.maxRecords
	}
	if retCfg.RetentionDays <= 0 && retCfg.MaxRecords <= 0 {
		return fmt.Errorf("no retention policy: set --days or --max-records, or configure usage.retention")
	}

	pruner := retention.NewPruner(store, retCfg)
	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("usage prune", err)
	}

	fmt.Printf("Pruned %d usage records\n", deleted)
	if usagePruneFlags.archive && deleted > 0 {
		fmt.Printf("Archived to %s\n", retCfg.ArchivePath)
	}
	return nil
}
