package generic

import (
	"context"
	"log/slog"

	"mercator-hq/ganymede/pkg/providers"
	"mercator-hq/ganymede/pkg/providers/openai"
	"mercator-hq/ganymede/pkg/tokens"
)

// Adapter is a generic OpenAI-compatible adapter.
// It supports any backend that implements the chat completions API format,
// such as Ollama, LM Studio, vLLM, FastChat, etc.
//
// This adapter reuses the OpenAI request/response format but allows custom
// base URLs, optional API keys, and estimates token usage when the backend
// does not report it.
type Adapter struct {
	*openai.Adapter

	estimator *tokens.Estimator
}

// NewAdapter creates a new generic OpenAI-compatible adapter instance.
func NewAdapter(config providers.Config) (*Adapter, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: "generic",
			Field:    "name",
			Message:  "provider name is required",
		}
	}

	if config.BaseURL == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "base_url",
			Message:  "base URL is required for generic provider",
		}
	}

	if config.Type == "" {
		config.Type = "generic"
	}
	if config.Model == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "model",
			Message:  "model is required for generic provider",
		}
	}

	// API key is optional for generic backends (local models don't need it).
	// Set a placeholder to satisfy the OpenAI adapter's validation.
	if config.APIKey == "" {
		config.APIKey = "not-required"
	}

	openaiAdapter, err := openai.NewAdapter(config)
	if err != nil {
		return nil, err
	}

	a := &Adapter{
		Adapter:   openaiAdapter,
		estimator: tokens.NewEstimator(nil),
	}

	slog.Info("generic OpenAI-compatible adapter initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
		"model", config.Model,
	)

	return a, nil
}

// Generate delegates to the OpenAI adapter and backfills token usage with
// an estimate when the backend reports none.
func (a *Adapter) Generate(ctx context.Context, req *providers.Request) *providers.Response {
	resp := a.Adapter.Generate(ctx, req)

	if resp.Status == providers.StatusSuccess && resp.TokensUsed == 0 && req != nil {
		resp.TokensUsed = a.estimator.EstimateExchange(resp.Model,
			req.SystemMessage,
			req.Prompt,
			providers.ContextBlock(req.Context),
			resp.Content,
		)
		slog.Debug("token usage estimated",
			"provider", a.GetName(),
			"tokens", resp.TokensUsed,
		)
	}

	return resp
}

// Describe returns the adapter's capabilities.
func (a *Adapter) Describe() providers.ProviderInfo {
	info := a.Adapter.Describe()
	info.Type = "generic"
	return info
}
