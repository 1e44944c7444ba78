// Package providerfactory builds provider adapters from configuration.
package providerfactory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/providers"
	"mercator-hq/ganymede/pkg/providers/anthropic"
	"mercator-hq/ganymede/pkg/providers/generic"
	"mercator-hq/ganymede/pkg/providers/openai"
	"mercator-hq/ganymede/pkg/secrets"
)

// NewAdapter creates an adapter from its configuration.
//
// Supported types:
//   - "openai": OpenAI chat completions API
//   - "anthropic": Anthropic messages API
//   - "generic": OpenAI-compatible backends (Ollama, LM Studio, vLLM, ...)
//
// When cfg.Type is empty it is inferred from the name: "openai" and
// "anthropic" map to their adapters, everything else to generic.
func NewAdapter(cfg providers.Config) (providers.Adapter, error) {
	if cfg.Type == "" {
		cfg.Type = InferType(cfg.Name)
	}

	slog.Debug("creating provider adapter",
		"name", cfg.Name,
		"type", cfg.Type,
		"base_url", cfg.BaseURL,
	)

	var adapter providers.Adapter
	var err error

	switch cfg.Type {
	case "openai":
		adapter, err = openai.NewAdapter(cfg)
	case "anthropic":
		adapter, err = anthropic.NewAdapter(cfg)
	case "generic":
		adapter, err = generic.NewAdapter(cfg)
	default:
		return nil, &providers.ConfigError{
			Provider: cfg.Name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type: %q (supported: openai, anthropic, generic)", cfg.Type),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", cfg.Name, err)
	}
	return adapter, nil
}

// InferType maps a provider name to an adapter type.
func InferType(name string) string {
	switch name {
	case "openai":
		return "openai"
	case "anthropic":
		return "anthropic"
	default:
		return "generic"
	}
}

// connectionCheckStarter is implemented by adapters that can probe their
// backend in the background.
type connectionCheckStarter interface {
	StartConnectionChecker(ctx context.Context, validate func(context.Context) bool)
}

// BuildAdapters constructs every adapter in the configuration, in name
// order so construction and registration are deterministic.
//
// API keys written as ${secret:name} are resolved through the secrets
// manager (nil disables resolution). Adapters with a check interval get
// their background connection checker started; the checker feeds
// readiness reporting only and has no say in request routing.
//
// On error, adapters already built are closed before returning.
func BuildAdapters(ctx context.Context, cfg *config.Config, secretsMgr *secrets.Manager) ([]providers.Adapter, error) {
	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	adapters := make([]providers.Adapter, 0, len(names))
	for _, name := range names {
		pcfg := cfg.Providers[name]
		if pcfg.Type == "" {
			pcfg.Type = InferType(name)
		}

		if secretsMgr != nil && secrets.IsReference(pcfg.APIKey) {
			resolved, err := secretsMgr.Resolve(ctx, pcfg.APIKey)
			if err != nil {
				closeAll(adapters)
				return nil, fmt.Errorf("provider %q: %w", name, err)
			}
			pcfg.APIKey = resolved
		}

		adapter, err := NewAdapter(pcfg)
		if err != nil {
			closeAll(adapters)
			return nil, err
		}

		if pcfg.CheckInterval > 0 {
			if starter, ok := adapter.(connectionCheckStarter); ok {
				starter.StartConnectionChecker(ctx, adapter.ValidateConnection)
			}
		}

		adapters = append(adapters, adapter)
		slog.Info("provider adapter ready",
			"name", name,
			"type", pcfg.Type,
		)
	}

	if len(adapters) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}
	return adapters, nil
}

func closeAll(adapters []providers.Adapter) {
	for _, a := range adapters {
		_ = a.Close()
	}
}
