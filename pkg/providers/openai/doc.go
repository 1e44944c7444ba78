// Package openai implements the OpenAI adapter.
//
// This package provides an implementation of the providers.Adapter interface
// for OpenAI's Chat Completions API. It supports:
//
//   - Chat completions
//   - System messages as a leading system turn
//   - Structured request context (rendered into the user turn)
//   - Token usage reporting
//
// # Basic Usage
//
//	config := providers.Config{
//	    Name:    "openai",
//	    Type:    "openai",
//	    BaseURL: "https://api.openai.com",
//	    APIKey:  os.Getenv("OPENAI_API_KEY"),
//	    Model:   "gpt-4o",
//	}
//
//	adapter, err := openai.NewAdapter(config)
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
// # API Compatibility
//
// This adapter targets the chat completions endpoint and works with any
// backend that implements it, including self-hosted gateways. Point BaseURL
// at the compatible host and set Model accordingly.
//
// # Request Transformation
//
// The adapter transforms the provider-agnostic Request to OpenAI's format:
//
//   - SystemMessage becomes the first message with role "system"
//   - Context is rendered as a JSON block appended to the user turn
//   - Temperature and MaxTokens are omitted when zero (backend defaults apply)
//   - n is pinned to 1; exactly one choice is consumed
//
// # Failure Translation
//
// The adapter maps OpenAI errors to response statuses, one status per
// failure class:
//
//   - 401/403 -> error (authentication)
//   - 429 -> rate_limited (Retry-After honored upstream)
//   - other 4xx -> invalid_request
//   - 5xx, transport failures -> error
//   - deadline expiry -> timeout
//
// Generate never retries and never panics; every outcome is a Response.
package openai
