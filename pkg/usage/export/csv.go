package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"mercator-hq/ganymede/pkg/usage"
)

// CSVExporter exports usage records to CSV.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export writes usage records to w in CSV format.
func (e *CSVExporter) Export(ctx context.Context, records []*usage.Record, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return usage.NewExportError("csv", len(records), err)
		}
	}

	for _, record := range records {
		if err := writer.Write(recordToRow(record)); err != nil {
			return usage.NewExportError("csv", len(records), err)
		}
	}

	return nil
}

// ExportStream writes records from a channel to w in CSV format. The
// writer flushes every 100 records so long exports make visible progress.
func (e *CSVExporter) ExportStream(ctx context.Context, records <-chan *usage.Record, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return usage.NewExportError("csv", 0, err)
		}
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-records:
			if !ok {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return usage.NewExportError("csv", count, err)
				}
				return nil
			}

			if err := writer.Write(recordToRow(record)); err != nil {
				return usage.NewExportError("csv", count, err)
			}
			count++

			if count%100 == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return usage.NewExportError("csv", count, err)
				}
			}
		}
	}
}

func headerRow() []string {
	return []string{
		"id", "time", "fingerprint", "provider", "model", "status",
		"tokens_used", "response_time_ms", "cached", "scope", "attempts",
		"error_message",
	}
}

func recordToRow(record *usage.Record) []string {
	return []string{
		record.ID,
		record.Time.Format(time.RFC3339),
		record.Fingerprint,
		record.Provider,
		record.Model,
		record.Status,
		fmt.Sprintf("%d", record.TokensUsed),
		fmt.Sprintf("%d", record.ResponseTime.Milliseconds()),
		fmt.Sprintf("%t", record.Cached),
		record.Scope,
		fmt.Sprintf("%d", record.Attempts),
		record.ErrorMessage,
	}
}
