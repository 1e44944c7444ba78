package openai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/ganymede/pkg/providers"
)

// Adapter is the OpenAI adapter.
// It implements the providers.Adapter interface for OpenAI's Chat
// Completions API and API-compatible backends.
type Adapter struct {
	*providers.HTTPAdapter
}

// DefaultModel is used when no model is configured
const DefaultModel = "gpt-4o"

// NewAdapter creates a new OpenAI adapter instance.
func NewAdapter(config providers.Config) (*Adapter, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: "openai",
			Field:    "name",
			Message:  "provider name is required",
		}
	}

	if config.Type == "" {
		config.Type = "openai"
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com"
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "API key is required for OpenAI",
		}
	}

	a := &Adapter{
		HTTPAdapter: providers.NewHTTPAdapter(config),
	}

	slog.Info("openai adapter initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
		"model", config.Model,
	)

	return a, nil
}

// Generate sends a single chat completion request to OpenAI and translates
// the outcome into a Response. It performs exactly one upstream call and
// never retries.
func (a *Adapter) Generate(ctx context.Context, req *providers.Request) *providers.Response {
	model := a.GetConfig().Model

	if err := req.Validate(); err != nil {
		return providers.FailureFromError(a.GetName(), model, err)
	}

	wireReq := buildRequest(req, model)

	url := fmt.Sprintf("%s/v1/chat/completions", a.GetConfig().BaseURL)
	headers := map[string]string{
		"Authorization": "Bearer " + a.GetConfig().APIKey,
		"Content-Type":  "application/json",
	}

	start := time.Now()
	var wireResp chatResponse
	if err := a.DoJSON(ctx, "POST", url, wireReq, &wireResp, headers); err != nil {
		return providers.FailureFromError(a.GetName(), model, err)
	}
	elapsed := time.Since(start)

	content := messageContent(&wireResp)
	if content == "" {
		return providers.NewFailure(a.GetName(), model, providers.StatusError,
			"provider returned empty content")
	}

	if wireResp.Model != "" {
		model = wireResp.Model
	}
	tokens := wireResp.Usage.TotalTokens
	if tokens == 0 {
		tokens = wireResp.Usage.PromptTokens + wireResp.Usage.CompletionTokens
	}

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
		"Authorization": "Bearer " + a.GetConfig().APIKey,
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
