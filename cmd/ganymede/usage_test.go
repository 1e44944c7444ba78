package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/usage"
	"mercator-hq/ganymede/pkg/usage/storage"
)

// writeTestConfig writes a minimal config pointing the usage log at a
// temp SQLite file and returns the config path.
func writeTestConfig(t *testing.T, dir string) (cfgPath, dbPath string) {
	t.Helper()
	dbPath = filepath.Join(dir, "usage.db")
	cfgPath = filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
usage:
  enabled: true
  backend: sqlite
  sqlite:
    path: %s
    driver: sqlite
`, dbPath)
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return cfgPath, dbPath
}

func seedRecords(t *testing.T, dbPath string, times []time.Time) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{Path: dbPath, Driver: "sqlite"})
	if err != nil {
		t.Fatalf("opening storage: %v", err)
	}
	defer store.Close()

	for i, ts := range times {
		rec := &usage.Record{
			ID:         fmt.Sprintf("rec-%d", i),
			Time:       ts,
			Provider:   "openai",
			Model:      "gpt-4o",
			Status:     "success",
			TokensUsed: 10 + i,
		}
		if err := store.Store(context.Background(), rec); err != nil {
			t.Fatalf("seeding record %d: %v", i, err)
		}
	}
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestUsageExportCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath, dbPath := writeTestConfig(t, dir)
	now := time.Now().UTC()
	seedRecords(t, dbPath, []time.Time{now.Add(-2 * time.Hour), now.Add(-time.Hour), now})

	outPath := filepath.Join(dir, "export.json")
	if err := execute(t, "usage", "export", "--config", cfgPath, "--output", outPath, "--format", "json"); err != nil {
		t.Fatalf("usage export: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	var records []*usage.Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("export is not a JSON array: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("exported %d records, want 3", len(records))
	}
}

func TestUsageExportCommand_ProviderFilter(t *testing.T) {
	dir := t.TempDir()
	cfgPath, dbPath := writeTestConfig(t, dir)
	seedRecords(t, dbPath, []time.Time{time.Now().UTC()})

	outPath := filepath.Join(dir, "export.json")
	if err := execute(t, "usage", "export", "--config", cfgPath, "--output", outPath,
		"--format", "json", "--provider", "anthropic"); err != nil {
		t.Fatalf("usage export: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	var records []*usage.Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("decoding export: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("exported %d records for unmatched provider, want 0", len(records))
	}
}

func TestUsagePruneCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath, dbPath := writeTestConfig(t, dir)
	now := time.Now().UTC()
	seedRecords(t, dbPath, []time.Time{
		now.AddDate(0, 0, -60), // past the window
		now.AddDate(0, 0, -1),
		now,
	})

	if err := execute(t, "usage", "prune", "--config", cfgPath, "--days", "30"); err != nil {
		t.Fatalf("usage prune: %v", err)
	}

	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{Path: dbPath, Driver: "sqlite"})
	if err != nil {
		t.Fatalf("reopening storage: %v", err)
	}
	defer store.Close()

	count, err := store.Count(context.Background(), &usage.Query{})
	if err != nil {
		t.Fatalf("counting records: %v", err)
	}
	if count != 2 {
		t.Errorf("remaining records = %d, want 2", count)
	}
}
