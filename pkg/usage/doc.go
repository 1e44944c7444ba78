// Package usage defines the usage log: a record of every orchestrated
// generation, written asynchronously so recording never slows down the
// request path.
//
// The package holds the shared types: Record, Query, and the Storage and
// Exporter interfaces. Concrete pieces live in subpackages:
//
//   - recorder: async buffered recorder that observes the orchestrator
//   - storage:  memory and SQLite backends
//   - retention: scheduled pruning of old records
//   - export:   JSON and CSV exporters
package usage
