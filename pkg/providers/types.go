package providers

import (
	"encoding/json"
	"time"
)

// Status classifies the outcome of a generation attempt.
type Status string

const (
	// StatusSuccess indicates the backend produced usable content.
	StatusSuccess Status = "success"

	// StatusError indicates a generic backend or transport fault,
	// including authentication failures.
	StatusError Status = "error"

	// StatusTimeout indicates the backend did not answer within the
	// configured timeout.
	StatusTimeout Status = "timeout"

	// StatusRateLimited indicates upstream throttling (HTTP 429).
	StatusRateLimited Status = "rate_limited"

	// StatusInvalidRequest indicates the request was malformed or rejected
	// by request validation (empty prompt, backend 4xx).
	StatusInvalidRequest Status = "invalid_request"
)

// Retryable reports whether the status denotes a transient failure that a
// retry may resolve. Invalid requests and successes are never retried.
func (s Status) Retryable() bool {
	switch s {
	case StatusError, StatusTimeout, StatusRateLimited:
		return true
	default:
		return false
	}
}

// Request is a caller-supplied generation request. It is treated as
// immutable: the orchestration layer copies it before applying configured
// defaults and never writes through the caller's maps.
type Request struct {
	// Prompt is the text body for the AI call. Required, non-empty.
	Prompt string `json:"prompt"`

	// Context is an optional structured mapping of auxiliary data injected
	// for personalization. Values must be JSON-serializable. Adapters that
	// support context forward it to the backend; it participates in the
	// cache fingerprint.
	Context map[string]interface{} `json:"context,omitempty"`

	// SystemMessage optionally instructs the assistant persona/behavior.
	SystemMessage string `json:"system_message,omitempty"`

	// Temperature controls response randomness, in [0.0, 2.0].
	// Zero means unset; the orchestrator applies its configured default.
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens bounds the response length. Zero means unset.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Metadata is free-form caller bookkeeping. It is never interpreted by
	// the orchestration layer and never participates in the cache
	// fingerprint.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Clone returns a copy of the request with its own map headers. Context
// values and metadata entries are shared; both are treated as immutable by
// convention.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	out := *r
	if r.Context != nil {
		out.Context = make(map[string]interface{}, len(r.Context))
		for k, v := range r.Context {
			out.Context[k] = v
		}
	}
	if r.Metadata != nil {
		out.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// Validate checks the request fields that are enforceable before any
// backend is involved.
func (r *Request) Validate() error {
	if r == nil {
		return &ValidationError{Field: "request", Message: "request is nil"}
	}
	if !hasText(r.Prompt) {
		return &ValidationError{Field: "prompt", Message: "prompt must not be empty"}
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return &ValidationError{Field: "temperature", Message: "temperature must be in [0.0, 2.0]"}
	}
	if r.MaxTokens < 0 {
		return &ValidationError{Field: "max_tokens", Message: "max_tokens must be positive"}
	}
	return nil
}

// hasText reports whether s contains at least one non-whitespace byte.
func hasText(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
		default:
			return true
		}
	}
	return false
}

// Response is the result of a generation attempt, successful or not.
// Responses are immutable once constructed.
//
// Invariant: Status == StatusSuccess exactly when Content is non-empty and
// ErrorMessage is empty. NewSuccess and NewFailure enforce this; construct
// responses through them.
type Response struct {
	// Content is the generated text. Empty on failure.
	Content string `json:"content"`

	// ProviderID identifies the adapter that produced (or last attempted to
	// produce) the result.
	ProviderID string `json:"provider_id"`

	// Model identifies the underlying model used.
	Model string `json:"model"`

	// Status classifies the outcome.
	Status Status `json:"status"`

	// TokensUsed is the total token count. Populated only on success.
	TokensUsed int `json:"tokens_used,omitempty"`

	// ResponseTime is the upstream call duration. Populated only on success.
	ResponseTime time.Duration `json:"response_time,omitempty"`

	// ErrorMessage is a human-readable failure description, present only
	// when Status != StatusSuccess. Credential material is scrubbed before
	// it is stored here.
	ErrorMessage string `json:"error_message,omitempty"`

	// Timestamp is the response creation time.
	Timestamp time.Time `json:"timestamp"`
}

// Succeeded reports whether the response carries usable content.
func (r *Response) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}

// NewSuccess constructs a successful response. Content must be non-empty;
// adapters that receive an empty completion from their backend must report
// a failure instead.
func NewSuccess(providerID, model, content string, tokensUsed int, elapsed time.Duration) *Response {
	return &Response{
		Content:      content,
		ProviderID:   providerID,
		Model:        model,
		Status:       StatusSuccess,
		TokensUsed:   tokensUsed,
		ResponseTime: elapsed,
		Timestamp:    time.Now(),
	}
}

// NewFailure constructs a failure response for the given status kind.
// The message is credential-scrubbed and truncated. A success status is
// normalized to StatusError so the response invariant cannot be violated.
func NewFailure(providerID, model string, status Status, message string) *Response {
	if status == StatusSuccess || status == "" {
		status = StatusError
	}
	if message == "" {
		message = "request failed"
	}
	return &Response{
		ProviderID:   providerID,
		Model:        model,
		Status:       status,
		ErrorMessage: SanitizeMessage(message),
		Timestamp:    time.Now(),
	}
}

// ProviderInfo is static capability metadata reported by an adapter.
// Describe must be side-effect free.
type ProviderInfo struct {
	// Name is the adapter's registered identifier.
	Name string `json:"name"`

	// Type is the adapter kind ("anthropic", "openai", "generic").
	Type string `json:"type"`

	// Model is the configured model identifier.
	Model string `json:"model"`

	// SupportsSystemMessage reports whether the backend accepts a separate
	// system message.
	SupportsSystemMessage bool `json:"supports_system_message"`

	// SupportsContext reports whether the adapter forwards the structured
	// request context to the backend.
	SupportsContext bool `json:"supports_context"`
}

// Config holds the construction-time settings for one adapter.
type Config struct {
	// Name is the unique adapter identifier used for routing and health
	// tracking. Required.
	Name string `yaml:"name" json:"name"`

	// Type selects the adapter implementation ("anthropic", "openai",
	// "generic"). Inferred from Name when empty.
	Type string `yaml:"type" json:"type"`

	// Model is the model identifier sent to the backend.
	// Default: adapter-specific.
	Model string `yaml:"model" json:"model"`

	// BaseURL overrides the backend endpoint. Default: adapter-specific.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// APIKey authenticates requests. Required by hosted backends, optional
	// for local OpenAI-compatible servers.
	APIKey string `yaml:"api_key" json:"-"`

	// Timeout bounds each upstream call. A call exceeding it resolves to a
	// timeout response, never a hang. Default: 30s.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// CheckInterval is the cadence of the background connection checker.
	// Zero disables background checking. Default: 0.
	CheckInterval time.Duration `yaml:"check_interval" json:"check_interval"`

	// MaxIdleConns bounds pooled idle connections. Default: 10.
	MaxIdleConns int `yaml:"max_idle_conns" json:"max_idle_conns"`

	// MaxIdleConnsPerHost bounds pooled idle connections per host.
	// Default: 5.
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host" json:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long idle connections are kept. Default: 90s.
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout" json:"idle_conn_timeout"`
}

// ContextBlock renders the request context as a deterministic JSON block
// suitable for embedding in a prompt. encoding/json marshals map keys in
// sorted order, so equal contexts render identically. Returns "" when the
// context is empty or not serializable.
func ContextBlock(context map[string]interface{}) string {
	if len(context) == 0 {
		return ""
	}
	data, err := json.MarshalIndent(context, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
