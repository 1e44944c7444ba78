// Package orchestrator coordinates multiple AI provider adapters behind a
// single generate operation.
//
// Each request moves through a fixed cycle: cache lookup, provider
// selection, retry-wrapped adapter call, health recording, fallback to the
// next candidate on failure, cache store on success. Callers always receive
// a well-formed response; operational failures surface through the response
// status, never as errors or panics.
//
// # Basic Usage
//
//	anthropicAdapter, err := anthropic.NewAdapter(providers.Config{
//	    Name:   "anthropic",
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	orch, err := orchestrator.New(orchestrator.Config{
//	    FallbackEnabled: true,
//	    CacheEnabled:    true,
//	    Retry:           retry.DefaultPolicy(),
//	}, []providers.Adapter{anthropicAdapter, openaiAdapter})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer orch.Close()
//
//	resp := orch.Generate(ctx, &providers.Request{
//	    Prompt: "Suggest a menu item",
//	    Context: map[string]interface{}{"industry": "restaurant"},
//	})
//	if resp.Succeeded() {
//	    fmt.Println(resp.Content)
//	}
//
// # Provider Selection
//
// Candidates are ordered by tracked health: success rate first, then
// average latency, then registration order. Providers past the
// consecutive-failure threshold are skipped unless every provider is past
// it. An explicit provider passed to GenerateWithProvider always goes
// first; the configured default provider goes first otherwise.
//
// # Concurrency
//
// One Orchestrator serves concurrent callers. Cache and health state are
// internally synchronized, and no lock is held while an adapter talks to
// its backend.
package orchestrator
