package api

import (
	"encoding/json"
	"net/http"

	"mercator-hq/ganymede/pkg/providers"
)

// ErrorResponse is the JSON envelope for all API errors.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a single API error.
type ErrorDetail struct {
	// Message is a human-readable description, safe to show to callers.
	Message string `json:"message"`

	// Type classifies the error ("invalid_request", "rate_limited",
	// "timeout", "upstream_error", "internal_error").
	Type string `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{
		Message: message,
		Type:    errType,
	}})
}

// statusCode maps a generation outcome to the HTTP status for the caller.
// A cache hit or upstream success is 200 regardless of which provider
// ultimately answered.
func statusCode(s providers.Status) int {
	switch s {
	case providers.StatusSuccess:
		return http.StatusOK
	case providers.StatusInvalidRequest:
		return http.StatusBadRequest
	case providers.StatusRateLimited:
		return http.StatusTooManyRequests
	case providers.StatusTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
