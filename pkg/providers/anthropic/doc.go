// Package anthropic implements the Anthropic adapter.
//
// This package provides an implementation of the providers.Adapter interface
// for Anthropic's Messages API. It supports:
//
//   - Messages API (Claude models)
//   - Native system messages
//   - Structured request context (rendered into the user turn)
//   - Token usage reporting
//
// # Basic Usage
//
//	config := providers.Config{
//	    Name:    "anthropic",
//	    Type:    "anthropic",
//	    BaseURL: "https://api.anthropic.com",
//	    APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
//	    Model:   "claude-3-5-sonnet-20241022",
//	}
//
//	adapter, err := anthropic.NewAdapter(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer adapter.Close()
//
//	resp := adapter.Generate(context.Background(), &providers.Request{
//	    Prompt: "Hello!",
//	})
//	if resp.Succeeded() {
//	    fmt.Println(resp.Content)
//	}
//
// # Request Transformation
//
// The adapter transforms the provider-agnostic Request to Anthropic's format:
//
//   - SystemMessage is placed in the top-level "system" field
//   - Context is rendered as a JSON block appended to the user turn
//   - MaxTokens is required by Anthropic (defaults to 4096 if not provided)
//   - Temperature is omitted when zero (backend default applies)
//
// # Response Transformation
//
// The adapter normalizes Anthropic responses to the common Response shape:
//
//   - Content blocks are concatenated into a single string
//   - Token usage is input_tokens + output_tokens
//   - A 2xx response with no text content resolves to an error status
//
// # Failure Translation
//
// The adapter maps Anthropic errors to response statuses, one status per
// failure class:
//
//   - 401/403 -> error (authentication)
//   - 429 -> rate_limited (Retry-After honored upstream)
//   - other 4xx -> invalid_request
//   - 5xx, transport failures -> error
//   - deadline expiry -> timeout
//
// Generate never retries and never panics; every outcome is a Response.
//
// # Anthropic-Specific Requirements
//
//  1. MaxTokens is required (cannot be 0)
//  2. Uses x-api-key header instead of Authorization: Bearer
//  3. Requires anthropic-version header
package anthropic
