package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig(url string) Config {
	return Config{
		Name:    "test-provider",
		Type:    "openai",
		BaseURL: url,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	}
}

func TestHTTPAdapter_DoSingleRequest(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "boom"}`))
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(testConfig(server.URL))
	defer adapter.Close()

	_, err := adapter.Do(context.Background(), "POST", server.URL, []byte(`{}`), nil)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}

	// The adapter never retries on its own
	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Errorf("expected exactly 1 request, got %d", got)
	}
}

func TestHTTPAdapter_StatusTriage(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		headers    map[string]string
		check      func(t *testing.T, err error)
	}{
		{
			name:       "401 unauthorized",
			statusCode: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				var authErr *AuthError
				if !errors.As(err, &authErr) {
					t.Fatalf("expected AuthError, got %T: %v", err, err)
				}
			},
		},
		{
			name:       "403 forbidden",
			statusCode: http.StatusForbidden,
			check: func(t *testing.T, err error) {
				var authErr *AuthError
				if !errors.As(err, &authErr) {
					t.Fatalf("expected AuthError, got %T: %v", err, err)
				}
			},
		},
		{
			name:       "429 with retry-after",
			statusCode: http.StatusTooManyRequests,
			headers:    map[string]string{"Retry-After": "7"},
			check: func(t *testing.T, err error) {
				var rateErr *RateLimitError
				if !errors.As(err, &rateErr) {
					t.Fatalf("expected RateLimitError, got %T: %v", err, err)
				}
				if rateErr.RetryAfter != 7*time.Second {
					t.Errorf("expected retry-after 7s, got %s", rateErr.RetryAfter)
				}
			},
		},
		{
			name:       "400 bad request",
			statusCode: http.StatusBadRequest,
			check: func(t *testing.T, err error) {
				var provErr *ProviderError
				if !errors.As(err, &provErr) {
					t.Fatalf("expected ProviderError, got %T: %v", err, err)
				}
				if provErr.StatusCode != 400 {
					t.Errorf("expected status 400, got %d", provErr.StatusCode)
				}
			},
		},
		{
			name:       "503 unavailable",
			statusCode: http.StatusServiceUnavailable,
			check: func(t *testing.T, err error) {
				var provErr *ProviderError
				if !errors.As(err, &provErr) {
					t.Fatalf("expected ProviderError, got %T: %v", err, err)
				}
				if provErr.StatusCode != 503 {
					t.Errorf("expected status 503, got %d", provErr.StatusCode)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(`{"error": "nope"}`))
			}))
			defer server.Close()

			adapter := NewHTTPAdapter(testConfig(server.URL))
			defer adapter.Close()

			_, err := adapter.Do(context.Background(), "GET", server.URL, nil, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestHTTPAdapter_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	config := testConfig(server.URL)
	config.Timeout = 30 * time.Millisecond
	adapter := NewHTTPAdapter(config)
	defer adapter.Close()

	_, err := adapter.Do(context.Background(), "GET", server.URL, nil, nil)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %T: %v", err, err)
	}
}

func TestHTTPAdapter_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(testConfig(server.URL))
	defer adapter.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := adapter.Do(ctx, "GET", server.URL, nil, nil)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError for expired context, got %T: %v", err, err)
	}
}

func TestHTTPAdapter_DoJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"answer": 42}`))
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(testConfig(server.URL))
	defer adapter.Close()

	var out struct {
		Answer int `json:"answer"`
	}
	in := map[string]string{"question": "life"}

	if err := adapter.DoJSON(context.Background(), "POST", server.URL, in, &out, nil); err != nil {
		t.Fatalf("DoJSON failed: %v", err)
	}
	if out.Answer != 42 {
		t.Errorf("expected 42, got %d", out.Answer)
	}
}

func TestHTTPAdapter_DoJSONMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{broken`))
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(testConfig(server.URL))
	defer adapter.Close()

	var out map[string]interface{}
	err := adapter.DoJSON(context.Background(), "GET", server.URL, nil, &out, nil)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
	if parseErr.RawResponse == "" {
		t.Error("ParseError should carry the raw response")
	}
}

func TestHTTPAdapter_ProbeStateTransitions(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(testConfig(server.URL))
	defer adapter.Close()

	if !adapter.Reachable() {
		t.Fatal("fresh adapter should start reachable")
	}

	// Three consecutive failures mark the backend unreachable
	for i := 0; i < 3; i++ {
		if adapter.ProbeURL(context.Background(), "GET", server.URL, nil) {
			t.Fatal("expected probe failure")
		}
	}
	if adapter.Reachable() {
		t.Error("expected unreachable after 3 failed probes")
	}
	if got := adapter.Connection().ConsecutiveFailures; got != 3 {
		t.Errorf("expected 3 consecutive failures, got %d", got)
	}

	// One success recovers immediately
	failing.Store(false)
	if !adapter.ProbeURL(context.Background(), "GET", server.URL, nil) {
		t.Fatal("expected probe success")
	}
	if !adapter.Reachable() {
		t.Error("expected reachable after successful probe")
	}
	state := adapter.Connection()
	if state.ConsecutiveFailures != 0 {
		t.Errorf("expected failure count reset, got %d", state.ConsecutiveFailures)
	}
	if state.LastError != "" {
		t.Errorf("expected last error cleared, got %q", state.LastError)
	}
}

func TestHTTPAdapter_ConnectionChecker(t *testing.T) {
	adapter := NewHTTPAdapter(Config{
		Name:          "probe-test",
		BaseURL:       "http://localhost:0",
		APIKey:        "test-key",
		Timeout:       time.Second,
		CheckInterval: 20 * time.Millisecond,
	})

	var probes int32
	adapter.StartConnectionChecker(context.Background(), func(ctx context.Context) bool {
		atomic.AddInt32(&probes, 1)
		return true
	})

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&probes) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("connection checker did not run")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Close must stop the checker promptly
	if err := adapter.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	after := atomic.LoadInt32(&probes)
	time.Sleep(100 * time.Millisecond)
	// Allow one in-flight probe to finish
	if got := atomic.LoadInt32(&probes); got > after+1 {
		t.Errorf("checker still probing after close: %d -> %d", after, got)
	}
}

func TestHTTPAdapter_CloseIdempotent(t *testing.T) {
	adapter := NewHTTPAdapter(testConfig("http://localhost:0"))

	if err := adapter.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := adapter.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"empty", "", 0},
		{"seconds", "30", 30 * time.Second},
		{"zero seconds", "0", 0},
		{"garbage", "not-a-number-or-date", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRetryAfter(tt.header); got != tt.want {
				t.Errorf("parseRetryAfter(%q) = %s, want %s", tt.header, got, tt.want)
			}
		})
	}

	// HTTP-date format resolves to a positive duration
	future := time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)
	got := parseRetryAfter(future)
	if got < 80*time.Second || got > 90*time.Second {
		t.Errorf("parseRetryAfter(http-date) = %s, want ~90s", got)
	}
}

func TestCalculateProbeBackoff(t *testing.T) {
	base := 30 * time.Second

	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, base},
		{1, 60 * time.Second},
		{2, 120 * time.Second},
		{3, 240 * time.Second},
		{4, 5 * time.Minute},  // capped at 5 minutes
		{10, 5 * time.Minute}, // multiplier capped at 10x
	}

	for _, tt := range tests {
		if got := calculateProbeBackoff(tt.failures, base); got != tt.want {
			t.Errorf("calculateProbeBackoff(%d) = %s, want %s", tt.failures, got, tt.want)
		}
	}
}
