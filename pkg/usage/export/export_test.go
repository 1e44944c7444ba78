package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/usage"
)

func sampleRecords() []*usage.Record {
	at := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	return []*usage.Record{
		{
			ID:           "rec-1",
			Time:         at,
			Fingerprint:  "fp-1",
			Provider:     "anthropic",
			Model:        "claude-3",
			Status:       "success",
			TokensUsed:   200,
			ResponseTime: 900 * time.Millisecond,
			Attempts:     1,
		},
		{
			ID:           "rec-2",
			Time:         at.Add(time.Minute),
			Provider:     "openai",
			Model:        "gpt-4",
			Status:       "timeout",
			Attempts:     2,
			ErrorMessage: "deadline exceeded",
		},
	}
}

func TestJSONExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewJSONExporter(false)

	if err := exporter.Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	var decoded []*usage.Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(decoded))
	}
	if decoded[0].ID != "rec-1" || decoded[1].ErrorMessage != "deadline exceeded" {
		t.Errorf("Round-trip mismatch: %+v", decoded)
	}
}

func TestJSONExporter_ExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewJSONExporter(true)

	if err := exporter.Export(context.Background(), nil, &buf); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	if buf.String() != "[]" {
		t.Errorf("Expected empty array, got %q", buf.String())
	}
}

func TestJSONExporter_ExportStream(t *testing.T) {
	records := sampleRecords()
	ch := make(chan *usage.Record, len(records))
	for _, r := range records {
		ch <- r
	}
	close(ch)

	var buf bytes.Buffer
	exporter := NewJSONExporter(false)
	if err := exporter.ExportStream(context.Background(), ch, &buf); err != nil {
		t.Fatalf("ExportStream() failed: %v", err)
	}

	var decoded []*usage.Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Streamed output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Errorf("Expected 2 records, got %d", len(decoded))
	}
}

func TestJSONExporter_ExportStreamEmpty(t *testing.T) {
	ch := make(chan *usage.Record)
	close(ch)

	var buf bytes.Buffer
	if err := NewJSONExporter(false).ExportStream(context.Background(), ch, &buf); err != nil {
		t.Fatalf("ExportStream() failed: %v", err)
	}
	if buf.String() != "[]" {
		t.Errorf("Expected empty array, got %q", buf.String())
	}
}

func TestCSVExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewCSVExporter(true)

	if err := exporter.Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "id" {
		t.Errorf("Expected header row, got %v", rows[0])
	}
	if rows[1][0] != "rec-1" || rows[1][3] != "anthropic" {
		t.Errorf("Unexpected first row: %v", rows[1])
	}
	if rows[2][11] != "deadline exceeded" {
		t.Errorf("Expected error message in last column, got %v", rows[2])
	}
}

func TestCSVExporter_NoHeader(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewCSVExporter(false)

	if err := exporter.Export(context.Background(), sampleRecords(), &buf); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if strings.HasPrefix(first, "id,") {
		t.Errorf("Header written despite IncludeHeader=false: %q", first)
	}
}

func TestCSVExporter_ExportStream(t *testing.T) {
	ch := make(chan *usage.Record, 2)
	for _, r := range sampleRecords() {
		ch <- r
	}
	close(ch)

	var buf bytes.Buffer
	exporter := NewCSVExporter(true)
	if err := exporter.ExportStream(context.Background(), ch, &buf); err != nil {
		t.Fatalf("ExportStream() failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Streamed output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("Expected header plus 2 rows, got %d", len(rows))
	}
}

func TestExporters_ImplementInterface(t *testing.T) {
	var _ usage.Exporter = NewJSONExporter(false)
	var _ usage.Exporter = NewCSVExporter(false)
}
