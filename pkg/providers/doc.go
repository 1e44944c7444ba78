// Package providers implements a unified adapter abstraction for AI backends.
//
// # Overview
//
// The providers package defines the contract every AI backend adapter must
// satisfy, the shared request/response value types that flow through the
// orchestration layer, and a base HTTP adapter implementing the common
// transport logic (connection pooling, timeout handling, error translation).
//
// # Architecture
//
// The package is organized into several layers:
//
//  1. Adapter Interface - Defines the contract all adapters must implement
//  2. Base HTTP Adapter - Implements common HTTP client logic (connection pooling, timeouts, error translation)
//  3. Concrete Adapters - Backend-specific implementations (Anthropic, OpenAI, Generic)
//
// # Failure model
//
// Adapters never surface transport or backend errors to their callers.
// Generate performs exactly one upstream call and translates every failure
// into a Response carrying one of the Status kinds (error, timeout,
// rate_limited, invalid_request) and a credential-scrubbed error message.
// Retrying is the retry package's responsibility, fallback across adapters
// is the orchestrator's.
//
// # Basic Usage
//
// Create a single adapter:
//
//	config := providers.Config{
//	    Name:    "anthropic",
//	    Type:    "anthropic",
//	    Model:   "claude-sonnet-4-5",
//	    APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
//	    Timeout: 30 * time.Second,
//	}
//
//	adapter, err := anthropic.NewAdapter(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer adapter.Close()
//
//	resp := adapter.Generate(context.Background(), &providers.Request{
//	    Prompt: "Suggest a dinner menu for a rainy evening.",
//	})
//	if resp.Succeeded() {
//	    fmt.Println(resp.Content)
//	}
//
// # Connection validation
//
// ValidateConnection performs a lightweight connectivity and auth probe. It
// never returns an error; any failure reports false. A background checker
// (StartConnectionChecker) can re-probe periodically with backoff so the
// service readiness endpoint reflects reachable backends.
package providers
