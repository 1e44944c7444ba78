package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/ganymede/pkg/providers"
)

// Adapter is the Anthropic adapter.
// It implements the providers.Adapter interface for Anthropic's Messages API.
type Adapter struct {
	*providers.HTTPAdapter
}

const (
	// DefaultVersion is the Messages API version to use
	DefaultVersion = "2023-06-01"

	// DefaultModel is used when no model is configured
	DefaultModel = "claude-3-5-sonnet-20241022"

	// defaultMaxTokens applies when the request does not set a limit.
	// Anthropic rejects requests without max_tokens.
	defaultMaxTokens = 4096
)

// NewAdapter creates a new Anthropic adapter instance.
func NewAdapter(config providers.Config) (*Adapter, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: "anthropic",
			Field:    "name",
			Message:  "provider name is required",
		}
	}

	if config.Type == "" {
		config.Type = "anthropic"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.anthropic.com"
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "API key is required for Anthropic",
		}
	}

	a := &Adapter{
		HTTPAdapter: providers.NewHTTPAdapter(config),
	}

	slog.Info("anthropic adapter initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
		"model", config.Model,
	)

	return a, nil
}

// Generate sends a single completion request to Anthropic and translates
// the outcome into a Response. It performs exactly one upstream call and
// never retries.
func (a *Adapter) Generate(ctx context.Context, req *providers.Request) *providers.Response {
	model := a.GetConfig().Model

	if err := req.Validate(); err != nil {
		return providers.FailureFromError(a.GetName(), model, err)
	}

	wireReq := buildRequest(req, model)

	url := fmt.Sprintf("%s/v1/messages", a.GetConfig().BaseURL)
	headers := map[string]string{
		"x-api-key":         a.GetConfig().APIKey,
		"anthropic-version": DefaultVersion,
		"Content-Type":      "application/json",
	}

	start := time.Now()
	var wireResp messagesResponse
	if err := a.DoJSON(ctx, "POST", url, wireReq, &wireResp, headers); err != nil {
		return providers.FailureFromError(a.GetName(), model, err)
	}
	elapsed := time.Since(start)

	content := textContent(&wireResp)
	if content == "" {
		return providers.NewFailure(a.GetName(), model, providers.StatusError,
			"provider returned empty content")
	}

	if wireResp.Model != "" {
		model = wireResp.Model
	}
	tokens := wireResp.Usage.InputTokens + wireResp.Usage.OutputTokens

	slog.Debug("completion request succeeded",
		"provider", a.GetName(),
		"model", model,
		"tokens", tokens,
		"elapsed", elapsed,
	)

	return providers.NewSuccess(a.GetName(), model, content, tokens, elapsed)
}

// ValidateConnection probes the models endpoint. It reports false on any
// failure and never raises.
func (a *Adapter) ValidateConnection(ctx context.Context) bool {
	url := fmt.Sprintf("%s/v1/models", a.GetConfig().BaseURL)
	headers := map[string]string{
		"x-api-key":         a.GetConfig().APIKey,
		"anthropic-version": DefaultVersion,
	}
	return a.ProbeURL(ctx, "GET", url, headers)
}

// Describe returns the adapter's capabilities.
func (a *Adapter) Describe() providers.ProviderInfo {
	return providers.ProviderInfo{
		Name:                  a.GetName(),
		Type:                  a.GetType(),
		Model:                 a.GetConfig().Model,
		SupportsSystemMessage: true,
		SupportsContext:       true,
	}
}
