package providers

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ProviderError represents a general backend error.
// It includes the provider name, HTTP status code, and underlying error.
type ProviderError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Message is the error message
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// AuthError represents an authentication failure.
// This occurs when the provider rejects the API key (HTTP 401 or 403).
type AuthError struct {
	// Provider is the name of the provider that rejected authentication
	Provider string

	// Message is the error message from the provider
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q authentication failed: %s", e.Provider, e.Message)
}

// RateLimitError represents a rate limit exceeded error (HTTP 429).
// It includes the retry-after duration if provided by the provider.
type RateLimitError struct {
	// Provider is the name of the provider that rate limited the request
	Provider string

	// RetryAfter is the duration to wait before retrying (if provided)
	RetryAfter time.Duration

	// Message is the error message from the provider
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limit exceeded (retry after %s): %s",
			e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q rate limit exceeded: %s", e.Provider, e.Message)
}

// TimeoutError represents a request timeout.
// This occurs when a call exceeds the configured timeout duration or the
// caller's context expires mid-request.
type TimeoutError struct {
	// Provider is the name of the provider where the timeout occurred
	Provider string

	// Timeout is the configured timeout duration
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}

// ParseError represents a response parsing failure.
// This occurs when the provider returns a malformed response.
type ParseError struct {
	// Provider is the name of the provider that returned the malformed response
	Provider string

	// RawResponse is the raw response body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError represents a request validation failure.
// This occurs when the request has invalid fields before sending to the provider.
type ValidationError struct {
	// Field is the name of the invalid field
	Field string

	// Message describes what is invalid about the field
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// ConfigError represents an adapter configuration error.
// This occurs when the adapter configuration is invalid.
type ConfigError struct {
	// Provider is the name of the provider with invalid configuration
	Provider string

	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Provider, e.Field, e.Message)
}

// StatusFromError maps an adapter-internal error to the Status kind the
// failure surfaces as. This is the single translation point between the
// error types above and the response taxonomy:
//
//   - RateLimitError            -> rate_limited
//   - TimeoutError              -> timeout
//   - ValidationError           -> invalid_request
//   - ProviderError (other 4xx) -> invalid_request
//   - everything else           -> error (auth failures are modeled
//     generically, so AuthError lands here too)
func StatusFromError(err error) Status {
	if err == nil {
		return StatusSuccess
	}

	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		return StatusRateLimited
	}

	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return StatusTimeout
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return StatusInvalidRequest
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		code := provErr.StatusCode
		if code >= 400 && code < 500 &&
			code != 401 && code != 403 && code != 408 && code != 429 {
			return StatusInvalidRequest
		}
	}

	return StatusError
}

// FailureFromError builds the failure response for an adapter-internal
// error: status via StatusFromError, message scrubbed by NewFailure.
func FailureFromError(providerID, model string, err error) *Response {
	return NewFailure(providerID, model, StatusFromError(err), err.Error())
}

// Credential patterns scrubbed from user-visible failure messages.
// Kept deliberately narrow: API key shapes used by the supported backends
// plus generic bearer/header forms.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-[A-Za-z0-9_-]{8,}`),
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]{8,}`),
	regexp.MustCompile(`(?i)(x-api-key|api[-_]?key|authorization)["']?\s*[:=]\s*["']?[A-Za-z0-9._~+/=-]{8,}`),
}

// maxMessageLen bounds failure messages stored on responses and in the
// usage log. Backend error bodies can be arbitrarily large.
const maxMessageLen = 500

// SanitizeMessage scrubs credential material from a failure message and
// truncates it to a storable length. Every message that crosses the
// adapter boundary passes through here (via NewFailure).
func SanitizeMessage(msg string) string {
	for _, pattern := range sensitivePatterns {
		msg = pattern.ReplaceAllString(msg, "[REDACTED]")
	}
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen] + "..."
	}
	return msg
}
