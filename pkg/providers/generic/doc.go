// Package generic implements a generic OpenAI-compatible adapter.
//
// This package provides an implementation of the providers.Adapter interface
// for any backend that implements the OpenAI API format. It supports:
//
//   - Local LLM servers (Ollama, LM Studio, vLLM, FastChat)
//   - Custom OpenAI-compatible endpoints
//   - Self-hosted LLM APIs
//
// # Supported Platforms
//
// The generic adapter works with any OpenAI-compatible API, including:
//
//   - Ollama (http://localhost:11434)
//   - LM Studio (http://localhost:1234)
//   - vLLM (http://localhost:8000)
//   - Text Generation Inference (http://localhost:8080)
//   - Custom OpenAI-compatible endpoints
//
// # Basic Usage
//
//	config := providers.Config{
//	    Name:    "ollama",
//	    Type:    "generic",
//	    BaseURL: "http://localhost:11434",
//	    Model:   "llama3",
//	    Timeout: 120 * time.Second, // Local inference can be slow
//	    // API key is optional for local backends
//	}
//
//	adapter, err := generic.NewAdapter(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer adapter.Close()
//
//	resp := adapter.Generate(context.Background(), &providers.Request{
//	    Prompt: "Tell me about Go",
//	})
//	if resp.Succeeded() {
//	    fmt.Println(resp.Content)
//	}
//
// # Implementation Details
//
// The generic adapter reuses the OpenAI adapter since most local LLM
// servers implement the OpenAI API format. Differences from the cloud
// adapter:
//
//   - API keys are optional (a placeholder is sent when unset)
//   - BaseURL and Model are required
//   - Token usage is estimated when the backend does not report it
//
// # Compatibility Notes
//
// Not all OpenAI-compatible servers implement the full API. The adapter
// works as long as the server implements the basic chat completions
// endpoint with the OpenAI request/response format. Parameters the backend
// does not understand are ignored server-side.
package generic
