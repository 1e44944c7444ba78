package providers

import (
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/providers"
)

// TestConfig returns a test adapter configuration.
func TestConfig(name, providerType string) providers.Config {
	return providers.Config{
		Name:                name,
		Type:                providerType,
		Model:               "test-model",
		BaseURL:             "http://localhost:8080",
		APIKey:              "test-key",
		Timeout:             5 * time.Second,
		CheckInterval:       1 * time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
	}
}

// TestConfigWithURL returns a test config with a specific base URL.
func TestConfigWithURL(name, providerType, baseURL string) providers.Config {
	config := TestConfig(name, providerType)
	config.BaseURL = baseURL
	return config
}

// TestRequest creates a minimal valid generation request.
func TestRequest(prompt string) *providers.Request {
	return &providers.Request{
		Prompt:      prompt,
		Temperature: 0.7,
		MaxTokens:   100,
	}
}

// AssertSuccess fails the test unless the response carries a successful
// status with content.
func AssertSuccess(t *testing.T, resp *providers.Response) {
	t.Helper()
	if resp == nil {
		t.Fatal("expected response, got nil")
	}
	if resp.Status != providers.StatusSuccess {
		t.Fatalf("expected success, got status %s (error: %s)", resp.Status, resp.ErrorMessage)
	}
	if resp.Content == "" {
		t.Fatal("success response has empty content")
	}
	if resp.ErrorMessage != "" {
		t.Fatalf("success response has error message: %s", resp.ErrorMessage)
	}
}

// AssertFailure fails the test unless the response carries the given
// failure status with an error message and no content.
func AssertFailure(t *testing.T, resp *providers.Response, status providers.Status) {
	t.Helper()
	if resp == nil {
		t.Fatal("expected response, got nil")
	}
	if resp.Status != status {
		t.Fatalf("expected status %s, got %s (error: %s)", status, resp.Status, resp.ErrorMessage)
	}
	if resp.Content != "" {
		t.Fatalf("failure response has content: %q", resp.Content)
	}
	if resp.ErrorMessage == "" {
		t.Fatal("failure response has no error message")
	}
}

// WaitForCondition waits for a condition to become true within a timeout.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return
		}

		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s: %s", timeout, message)
		}

		<-ticker.C
	}
}
