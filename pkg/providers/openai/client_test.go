package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	testhelpers "mercator-hq/ganymede/internal/providers"
	"mercator-hq/ganymede/pkg/providers"
)

func TestAdapter_Generate(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockOpenAIResponse("Hello, world!", "gpt-4"),
	})

	config := testhelpers.TestConfigWithURL("openai", "openai", mock.URL())
	adapter, err := NewAdapter(config)
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	defer adapter.Close()

	resp := adapter.Generate(context.Background(), testhelpers.TestRequest("Hello"))
	testhelpers.AssertSuccess(t, resp)

	if resp.Model != "gpt-4" {
		t.Errorf("expected model gpt-4, got %s", resp.Model)
	}
	if resp.Content != "Hello, world!" {
		t.Errorf("expected content %q, got %q", "Hello, world!", resp.Content)
	}
	if resp.TokensUsed != 30 {
		t.Errorf("expected 30 tokens, got %d", resp.TokensUsed)
	}
	if resp.ResponseTime <= 0 {
		t.Error("expected positive response time on success")
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("expected exactly 1 upstream request, got %d", mock.GetRequestCount())
	}
}

func TestAdapter_GenerateFailures(t *testing.T) {
	tests := []struct {
		name       string
		response   testhelpers.MockResponse
		wantStatus providers.Status
	}{
		{
			name:       "auth error",
			response:   testhelpers.MockAuthError(),
			wantStatus: providers.StatusError,
		},
		{
			name:       "rate limited",
			response:   testhelpers.MockRateLimitError(1),
			wantStatus: providers.StatusRateLimited,
		},
		{
			name:       "bad request",
			response:   testhelpers.MockErrorResponse(http.StatusBadRequest, "model not found"),
			wantStatus: providers.StatusInvalidRequest,
		},
		{
			name:       "bad gateway",
			response:   testhelpers.MockErrorResponse(http.StatusBadGateway, "upstream unavailable"),
			wantStatus: providers.StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testhelpers.NewMockServer()
			defer mock.Close()
			mock.SetResponse("/v1/chat/completions", tt.response)

			adapter, err := NewAdapter(testhelpers.TestConfigWithURL("openai", "openai", mock.URL()))
			if err != nil {
				t.Fatalf("failed to create adapter: %v", err)
			}
			defer adapter.Close()

			resp := adapter.Generate(context.Background(), testhelpers.TestRequest("Hello"))
			testhelpers.AssertFailure(t, resp, tt.wantStatus)
		})
	}
}

func TestAdapter_GenerateTimeout(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/v1/chat/completions", testhelpers.MockSlowResponse(500*time.Millisecond))

	config := testhelpers.TestConfigWithURL("openai", "openai", mock.URL())
	config.Timeout = 50 * time.Millisecond
	adapter, err := NewAdapter(config)
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	defer adapter.Close()

	resp := adapter.Generate(context.Background(), testhelpers.TestRequest("Hello"))
	testhelpers.AssertFailure(t, resp, providers.StatusTimeout)
}

func TestAdapter_RequestWire(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := testhelpers.ExpectHeader(r, "Authorization", "Bearer test-key"); err != nil {
			t.Error(err)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(testhelpers.MockOpenAIResponse("ok", "gpt-4"))
	}))
	defer server.Close()

	adapter, err := NewAdapter(testhelpers.TestConfigWithURL("openai", "openai", server.URL))
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	defer adapter.Close()

	req := &providers.Request{
		Prompt:        "Summarize the report",
		SystemMessage: "You are terse.",
		Context:       map[string]interface{}{"industry": "retail"},
		Temperature:   0.3,
		MaxTokens:     128,
	}

	resp := adapter.Generate(context.Background(), req)
	testhelpers.AssertSuccess(t, resp)

	if len(captured.Messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[0].Content != "You are terse." {
		t.Errorf("unexpected system turn: %+v", captured.Messages[0])
	}
	if captured.Messages[1].Role != "user" {
		t.Errorf("expected user turn, got %+v", captured.Messages[1])
	}
	if !strings.Contains(captured.Messages[1].Content, `"industry": "retail"`) {
		t.Errorf("user turn missing context block: %q", captured.Messages[1].Content)
	}
	if captured.N != 1 {
		t.Errorf("expected n=1, got %d", captured.N)
	}
	if captured.MaxTokens != 128 {
		t.Errorf("expected max_tokens 128, got %d", captured.MaxTokens)
	}
}

func TestAdapter_NoSystemTurnWhenUnset(t *testing.T) {
	wireReq := buildRequest(&providers.Request{Prompt: "hi"}, "gpt-4o")
	if len(wireReq.Messages) != 1 {
		t.Fatalf("expected single user message, got %d", len(wireReq.Messages))
	}
	if wireReq.Messages[0].Role != "user" {
		t.Errorf("expected user role, got %s", wireReq.Messages[0].Role)
	}
}

func TestAdapter_EmptyChoices(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StatusCode: 200,
		Body: map[string]interface{}{
			"id":      "chatcmpl-123",
			"object":  "chat.completion",
			"model":   "gpt-4",
			"choices": []interface{}{},
			"usage":   map[string]interface{}{"total_tokens": 5},
		},
	})

	adapter, err := NewAdapter(testhelpers.TestConfigWithURL("openai", "openai", mock.URL()))
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	defer adapter.Close()

	resp := adapter.Generate(context.Background(), testhelpers.TestRequest("Hello"))
	testhelpers.AssertFailure(t, resp, providers.StatusError)
}

func TestAdapter_MalformedResponse(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       "{not json",
	})

	adapter, err := NewAdapter(testhelpers.TestConfigWithURL("openai", "openai", mock.URL()))
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	defer adapter.Close()

	resp := adapter.Generate(context.Background(), testhelpers.TestRequest("Hello"))
	testhelpers.AssertFailure(t, resp, providers.StatusError)
}

func TestAdapter_ConfigErrors(t *testing.T) {
	_, err := NewAdapter(providers.Config{Name: "openai"})
	if err == nil {
		t.Fatal("expected config error for missing API key")
	}

	_, err = NewAdapter(providers.Config{APIKey: "test-key"})
	if err == nil {
		t.Fatal("expected config error for missing name")
	}
}
