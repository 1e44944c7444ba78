package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"mercator-hq/ganymede/pkg/providers"
	"mercator-hq/ganymede/pkg/routing"
)

// maxRequestBody bounds the accepted request body size.
const maxRequestBody = 1 << 20 // 1MB

// Service is the orchestrator surface the API exposes.
type Service interface {
	Generate(ctx context.Context, req *providers.Request) *providers.Response
	GenerateWithProvider(ctx context.Context, req *providers.Request, providerID string) *providers.Response
	DescribeAll() []providers.ProviderInfo
	Health() []routing.HealthRecord
	ClearCache(ctx context.Context) error
	ClearCacheScope(ctx context.Context, scope string) error
}

// Handlers serves the /v1 API routes.
type Handlers struct {
	orch   Service
	logger *slog.Logger
}

// NewHandlers creates the API handler set.
func NewHandlers(orch Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{orch: orch, logger: logger}
}

// GenerateRequest is the body of POST /v1/generate. It mirrors the library
// request with one addition, an optional provider pin.
type GenerateRequest struct {
	Prompt        string                 `json:"prompt"`
	Context       map[string]interface{} `json:"context,omitempty"`
	SystemMessage string                 `json:"system_message,omitempty"`
	Temperature   float64                `json:"temperature,omitempty"`
	MaxTokens     int                    `json:"max_tokens,omitempty"`
	Metadata      map[string]string      `json:"metadata,omitempty"`

	// Provider pins the request to a named adapter. The pinned provider is
	// tried first; fallback order applies after it.
	Provider string `json:"provider,omitempty"`
}

// Generate handles POST /v1/generate.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "invalid_request", "method not allowed")
		return
	}

	var body GenerateRequest
	if err := decodeBody(r, &body); err != nil {
		msg := err.Error()
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		writeError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	req := &providers.Request{
		Prompt:        body.Prompt,
		Context:       body.Context,
		SystemMessage: body.SystemMessage,
		Temperature:   body.Temperature,
		MaxTokens:     body.MaxTokens,
		Metadata:      body.Metadata,
	}

	var resp *providers.Response
	if body.Provider != "" {
		resp = h.orch.GenerateWithProvider(r.Context(), req, body.Provider)
	} else {
		resp = h.orch.Generate(r.Context(), req)
	}

	writeJSON(w, statusCode(resp.Status), resp)
}

// ProviderStatus pairs an adapter's static description with its current
// health record.
type ProviderStatus struct {
	providers.ProviderInfo
	Health *routing.HealthRecord `json:"health,omitempty"`
}

// ProvidersResponse is the body of GET /v1/providers.
type ProvidersResponse struct {
	Providers []ProviderStatus `json:"providers"`
}

// Providers handles GET /v1/providers.
func (h *Handlers) Providers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "invalid_request", "method not allowed")
		return
	}

	health := make(map[string]routing.HealthRecord)
	for _, rec := range h.orch.Health() {
		health[rec.ProviderID] = rec
	}

	infos := h.orch.DescribeAll()
	out := ProvidersResponse{Providers: make([]ProviderStatus, 0, len(infos))}
	for _, info := range infos {
		status := ProviderStatus{ProviderInfo: info}
		if rec, ok := health[info.Name]; ok {
			recCopy := rec
			status.Health = &recCopy
		}
		out.Providers = append(out.Providers, status)
	}

	writeJSON(w, http.StatusOK, out)
}

// CacheClearRequest is the optional body of POST /v1/cache/clear.
type CacheClearRequest struct {
	// Scope limits the clear to entries tagged with this scope. Empty
	// clears everything.
	Scope string `json:"scope,omitempty"`
}

// CacheClearResponse is the body of a successful cache clear.
type CacheClearResponse struct {
	Status string `json:"status"`
	Scope  string `json:"scope,omitempty"`
}

// ClearCache handles POST /v1/cache/clear.
func (h *Handlers) ClearCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "invalid_request", "method not allowed")
		return
	}

	var body CacheClearRequest
	if err := decodeBody(r, &body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var err error
	if body.Scope != "" {
		err = h.orch.ClearCacheScope(r.Context(), body.Scope)
	} else {
		err = h.orch.ClearCache(r.Context())
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "cache clear failed", "error", err, "scope", body.Scope)
		writeError(w, http.StatusInternalServerError, "internal_error", "cache clear failed")
		return
	}

	writeJSON(w, http.StatusOK, CacheClearResponse{Status: "ok", Scope: body.Scope})
}

// decodeBody decodes a JSON request body, rejecting unknown fields and
// oversized payloads. io.EOF is returned for an empty body so callers with
// optional bodies can treat it as the zero value.
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
