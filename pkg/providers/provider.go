package providers

import "context"

// Adapter is the core interface every AI backend adapter must implement.
// It provides a uniform call contract across providers (Anthropic, OpenAI,
// local OpenAI-compatible servers, etc.).
//
// All blocking methods accept a context.Context for cancellation and timeout
// control. Implementations must respect context cancellation and resolve to
// a timeout response rather than hang.
//
// Example usage:
//
//	adapter, err := anthropic.NewAdapter(config)
//	if err != nil {
//	    return err
//	}
//	defer adapter.Close()
//
//	resp := adapter.Generate(ctx, &providers.Request{
//	    Prompt: "Summarize today's specials.",
//	})
//	if !resp.Succeeded() {
//	    log.Printf("generation failed: %s (%s)", resp.ErrorMessage, resp.Status)
//	}
type Adapter interface {
	// Generate performs exactly one call to the underlying backend and
	// returns a non-nil Response in all cases. Adapters must not retry
	// internally; bounded retrying is the retry package's responsibility.
	//
	// Every backend-specific failure is translated to one of the Status
	// kinds (error, timeout, rate_limited, invalid_request) with a
	// credential-scrubbed ErrorMessage. A raw transport error or panic
	// never escapes the adapter boundary.
	Generate(ctx context.Context, req *Request) *Response

	// ValidateConnection performs a lightweight connectivity/auth check.
	// It is side-effect-free beyond the probe call itself and never
	// panics; any failure reports false.
	ValidateConnection(ctx context.Context) bool

	// Describe returns static capability metadata (model name,
	// supports-system-message, supports-context) with no side effects.
	Describe() ProviderInfo

	// GetName returns the adapter's registered identifier. The identifier
	// appears as ProviderID on every Response the adapter produces.
	GetName() string

	// Close releases the adapter's resources (idle connections, background
	// checker). The adapter must not be used after Close.
	Close() error
}
