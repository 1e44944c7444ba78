package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// HTTPAdapter is the base implementation for HTTP-based adapters.
// It provides connection pooling, per-call timeout handling, and the
// translation of transport/status failures into the package's error types.
//
// Concrete adapters (Anthropic, OpenAI, Generic) embed this struct and
// implement the Adapter interface on top of it.
//
// HTTPAdapter performs exactly one HTTP request per Do call. It never
// retries; bounded retrying happens above the adapter boundary.
type HTTPAdapter struct {
	// config contains the adapter configuration
	config Config

	// client is the HTTP client with connection pooling
	client *http.Client

	// connMu protects the connection probe state
	connMu sync.RWMutex

	// conn is the last known connectivity state, updated by probes
	conn ConnectionState

	// stopCheck is closed to signal the connection checker to stop
	stopCheck chan struct{}

	// checkStopped is closed when the connection checker has stopped
	checkStopped chan struct{}

	checkStarted bool
	closeOnce    sync.Once
}

// ConnectionState describes the adapter's last known connectivity,
// maintained by ValidateConnection probes and the background checker.
type ConnectionState struct {
	// Reachable is the outcome of the most recent probe.
	Reachable bool `json:"reachable"`

	// LastChecked is when the most recent probe ran. Zero until the first
	// probe.
	LastChecked time.Time `json:"last_checked"`

	// ConsecutiveFailures counts probe failures since the last success.
	ConsecutiveFailures int `json:"consecutive_failures"`

	// LastError is the sanitized message of the most recent probe failure.
	LastError string `json:"last_error,omitempty"`
}

// NewHTTPAdapter creates a new base HTTP adapter with connection pooling.
func NewHTTPAdapter(config Config) *HTTPAdapter {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 10
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 5
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPAdapter{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		// Start optimistic: an unprobed adapter is assumed reachable so a
		// fresh process does not mark every backend down before first use.
		conn: ConnectionState{
			Reachable: true,
		},
		stopCheck:    make(chan struct{}),
		checkStopped: make(chan struct{}),
	}
}

// GetName returns the adapter's configured name.
func (a *HTTPAdapter) GetName() string {
	return a.config.Name
}

// GetType returns the adapter's type.
func (a *HTTPAdapter) GetType() string {
	return a.config.Type
}

// GetConfig returns the adapter's configuration.
func (a *HTTPAdapter) GetConfig() Config {
	return a.config
}

// Do performs exactly one HTTP request and returns the response body.
// Failures are returned as the package's typed errors:
//
//   - transport timeout / expired context -> *TimeoutError
//   - other transport failure             -> *ProviderError (Cause set)
//   - HTTP 401/403                        -> *AuthError
//   - HTTP 429                            -> *RateLimitError (Retry-After parsed)
//   - any other non-2xx                   -> *ProviderError (StatusCode set)
func (a *HTTPAdapter) Do(ctx context.Context, method, url string, body []byte, headers map[string]string) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, &ProviderError{
			Provider: a.config.Name,
			Message:  "failed to create request",
			Cause:    err,
		}
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("sending request to provider",
		"provider", a.config.Name,
		"method", method,
		"url", url,
	)

	resp, err := a.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, &TimeoutError{
				Provider: a.config.Name,
				Timeout:  a.config.Timeout,
			}
		}
		return nil, &ProviderError{
			Provider: a.config.Name,
			Message:  err.Error(),
			Cause:    err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, &TimeoutError{
				Provider: a.config.Name,
				Timeout:  a.config.Timeout,
			}
		}
		return nil, &ProviderError{
			Provider: a.config.Name,
			Message:  "failed to read response body",
			Cause:    err,
		}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &AuthError{
			Provider: a.config.Name,
			Message:  string(respBody),
		}

	case http.StatusTooManyRequests:
		return nil, &RateLimitError{
			Provider:   a.config.Name,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    string(respBody),
		}

	default:
		return nil, &ProviderError{
			Provider:   a.config.Name,
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
}

// DoJSON performs a single JSON request and decodes the response into
// respBody. Malformed response bodies surface as *ParseError.
func (a *HTTPAdapter) DoJSON(ctx context.Context, method, url string, reqBody, respBody interface{}, headers map[string]string) error {
	var bodyBytes []byte
	var err error
	if reqBody != nil {
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	responseBytes, err := a.Do(ctx, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Provider:    a.config.Name,
				RawResponse: string(responseBytes),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}

	return nil
}

// ProbeURL issues a lightweight request for connection validation and
// records the outcome in the adapter's connection state. It never returns
// an error; any failure reports false.
func (a *HTTPAdapter) ProbeURL(ctx context.Context, method, url string, headers map[string]string) bool {
	_, err := a.Do(ctx, method, url, nil, headers)
	a.recordProbe(err)
	return err == nil
}

// Reachable returns the last known connectivity outcome.
func (a *HTTPAdapter) Reachable() bool {
	a.connMu.RLock()
	defer a.connMu.RUnlock()
	return a.conn.Reachable
}

// Connection returns the full connection probe state.
func (a *HTTPAdapter) Connection() ConnectionState {
	a.connMu.RLock()
	defer a.connMu.RUnlock()
	return a.conn
}

// recordProbe updates the connection state after a probe.
func (a *HTTPAdapter) recordProbe(err error) {
	a.connMu.Lock()
	defer a.connMu.Unlock()

	a.conn.LastChecked = time.Now()
	if err == nil {
		if !a.conn.Reachable {
			slog.Info("provider reachable again",
				"provider", a.config.Name,
				"previous_failures", a.conn.ConsecutiveFailures,
			)
		}
		a.conn.Reachable = true
		a.conn.ConsecutiveFailures = 0
		a.conn.LastError = ""
		return
	}

	a.conn.ConsecutiveFailures++
	a.conn.LastError = SanitizeMessage(err.Error())
	if a.conn.ConsecutiveFailures >= 3 && a.conn.Reachable {
		a.conn.Reachable = false
		slog.Warn("provider marked unreachable",
			"provider", a.config.Name,
			"consecutive_failures", a.conn.ConsecutiveFailures,
			"error", a.conn.LastError,
		)
	}
}

// Close stops the connection checker (if running) and closes idle
// connections. Safe to call more than once.
func (a *HTTPAdapter) Close() error {
	a.closeOnce.Do(func() {
		close(a.stopCheck)

		if a.checkStarted {
			select {
			case <-a.checkStopped:
				slog.Debug("connection checker stopped", "provider", a.config.Name)
			case <-time.After(5 * time.Second):
				slog.Warn("connection checker did not stop in time", "provider", a.config.Name)
			}
		}

		a.client.CloseIdleConnections()
		slog.Info("provider closed", "provider", a.config.Name)
	})
	return nil
}

// isTimeout reports whether an HTTP client error should resolve to a
// timeout status. Caller-cancelled contexts count: the request did not
// complete within the time the caller allowed.
func isTimeout(ctx context.Context, err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	return ctx.Err() != nil
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
