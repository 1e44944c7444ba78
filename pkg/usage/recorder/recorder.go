// Package recorder turns orchestrator request outcomes into usage records
// and writes them to storage asynchronously.
package recorder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"mercator-hq/ganymede/pkg/orchestrator"
	"mercator-hq/ganymede/pkg/providers"
	"mercator-hq/ganymede/pkg/usage"
)

// Config contains configuration for the usage recorder.
type Config struct {
	// Enabled enables usage recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder writes usage records to a storage backend through a buffered
// channel drained by a background worker. When the buffer is full records
// are dropped and counted rather than blocking the caller.
//
// Recorder implements the orchestrator observer interfaces, so it can be
// passed directly in the orchestrator's observer list.
type Recorder struct {
	storage    usage.Storage
	config     *Config
	recordChan chan *usage.Record
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	dropped    atomic.Uint64
	logger     *slog.Logger
}

// NewRecorder creates a usage recorder over the provided storage backend
// and starts its background writer.
func NewRecorder(storage usage.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = DefaultConfig().AsyncBuffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *usage.Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "usage.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("usage recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// RecordAttempt implements orchestrator.Observer. Per-attempt data is not
// logged; only the final outcome produces a record.
func (r *Recorder) RecordAttempt(providerID string, resp *providers.Response, elapsed time.Duration) {
}

// RecordOutcome implements orchestrator.Observer. The record itself is
// built in RecordRequest, which carries the fuller request details.
func (r *Recorder) RecordOutcome(resp *providers.Response, elapsed time.Duration, cacheHit bool) {
}

// RecordRequest implements orchestrator.RequestObserver. It builds a usage
// record from the completed call and enqueues it without blocking.
func (r *Recorder) RecordRequest(info orchestrator.RequestInfo) {
	if !r.config.Enabled {
		return
	}

	r.Enqueue(&usage.Record{
		ID:           uuid.New().String(),
		Time:         time.Now(),
		Fingerprint:  info.Fingerprint,
		Provider:     info.Provider,
		Model:        info.Model,
		Status:       string(info.Status),
		TokensUsed:   info.TokensUsed,
		ResponseTime: info.Elapsed,
		Cached:       info.Cached,
		Scope:        info.Scope,
		Attempts:     info.Attempts,
		ErrorMessage: info.ErrorMessage,
	})
}

// Enqueue hands a record to the background writer. It never blocks: when
// the buffer is full or the recorder is shutting down, the record is
// dropped and the drop counter incremented.
func (r *Recorder) Enqueue(record *usage.Record) {
	select {
	case <-r.done:
		r.dropped.Add(1)
		return
	default:
	}

	select {
	case r.recordChan <- record:
	default:
		dropped := r.dropped.Add(1)
		r.logger.Warn("usage record buffer full, dropping record",
			"record_id", record.ID,
			"dropped_total", dropped,
			"buffer_capacity", r.config.AsyncBuffer,
		)
	}
}

// Dropped returns the number of records dropped because the buffer was
// full.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Close shuts down the recorder, draining buffered records to storage
// before returning.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
	return nil
}

// worker drains the record channel and writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			// Drain remaining records before exit
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) writeRecord(record *usage.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store usage record",
			"record_id", record.ID,
			"provider", record.Provider,
			"error", err,
		)
		return
	}

	if elapsed := time.Since(start); elapsed > r.config.WriteTimeout/2 {
		r.logger.Warn("slow usage write",
			"record_id", record.ID,
			"duration_ms", elapsed.Milliseconds(),
		)
	}
}
