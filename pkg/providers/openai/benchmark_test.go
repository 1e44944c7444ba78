package openai

import (
	"context"
	"testing"

	testhelpers "mercator-hq/ganymede/internal/providers"
	"mercator-hq/ganymede/pkg/providers"
)

func BenchmarkAdapter_Generate(b *testing.B) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockOpenAIResponse("Hello, world!", "gpt-4"),
	})

	config := testhelpers.TestConfigWithURL("openai", "openai", mock.URL())
	adapter, err := NewAdapter(config)
	if err != nil {
		b.Fatalf("failed to create adapter: %v", err)
	}
	defer adapter.Close()

	req := testhelpers.TestRequest("Hello")
	ctx := context.Background()

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		resp := adapter.Generate(ctx, req)
		if resp.Status != providers.StatusSuccess {
			b.Fatalf("Generate failed: %s", resp.ErrorMessage)
		}
	}
}

func BenchmarkAdapter_BuildRequest(b *testing.B) {
	req := &providers.Request{
		Prompt:        "Summarize the quarterly report",
		SystemMessage: "You are a helpful assistant",
		Context: map[string]interface{}{
			"industry": "retail",
			"quarter":  3,
			"region":   "EMEA",
		},
		Temperature: 0.7,
		MaxTokens:   100,
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = buildRequest(req, "gpt-4o")
	}
}
