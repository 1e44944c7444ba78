package usage

import (
	"context"
	"io"
	"time"
)

// Record captures one orchestrated generation for auditing and cost
// analysis. Records are written asynchronously, off the request path.
type Record struct {
	// ID is a unique record identifier (UUID).
	ID string `json:"id"`

	// Time is when the request completed.
	Time time.Time `json:"time"`

	// Fingerprint is the canonical request fingerprint. Requests with the
	// same fingerprint would share a cache entry.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Provider and Model identify what served (or last attempted) the
	// request.
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`

	// Status classifies the outcome ("success", "error", "timeout",
	// "rate_limited", "invalid_request").
	Status string `json:"status"`

	// TokensUsed is the total token count reported by the provider.
	TokensUsed int `json:"tokens_used,omitempty"`

	// ResponseTime is the total wall time for the call.
	ResponseTime time.Duration `json:"response_time"`

	// Cached reports whether the response was served from cache.
	Cached bool `json:"cached"`

	// Scope is the cache scope the request ran under.
	Scope string `json:"scope,omitempty"`

	// Attempts is the number of providers tried. Zero for cache hits.
	Attempts int `json:"attempts"`

	// ErrorMessage is the final failure description, empty on success.
	ErrorMessage string `json:"error_message,omitempty"`
}

// Query selects usage records. Zero-valued fields match everything.
type Query struct {
	// Time range (inclusive on both ends)
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Filters
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	Status   string `json:"status,omitempty"`
	Scope    string `json:"scope,omitempty"`
	Cached   *bool  `json:"cached,omitempty"`

	// Thresholds
	MinTokens *int `json:"min_tokens,omitempty"`
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Sorting. SortBy is one of "time", "tokens", "response_time";
	// SortOrder is "asc" or "desc".
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
}

// Storage defines the interface for usage storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a usage record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves records matching the query filters. Returns an
	// empty slice when nothing matches.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// QueryStream returns matching records over a channel for
	// memory-efficient iteration of large result sets. Both channels are
	// closed when the query completes or fails.
	QueryStream(ctx context.Context, query *Query) (<-chan *Record, <-chan error, error)

	// Count returns the number of records matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the query filters and returns how
	// many were removed.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases resources held by the backend.
	Close() error
}

// Exporter writes usage records to an output stream in some format.
type Exporter interface {
	// Export writes the given records to w.
	Export(ctx context.Context, records []*Record, w io.Writer) error

	// ExportStream writes records from a channel to w as they arrive.
	ExportStream(ctx context.Context, records <-chan *Record, w io.Writer) error
}
