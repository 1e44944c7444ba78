package providers

import (
	"context"
	"sync"
	"time"

	"mercator-hq/ganymede/pkg/providers"
)

// MockAdapter is a scriptable in-memory implementation of the
// providers.Adapter interface. Tests script the responses it returns and
// inspect how many times Generate was invoked.
type MockAdapter struct {
	name  string
	model string

	mu          sync.Mutex
	calls       int
	script      []*providers.Response
	generateFn  func(ctx context.Context, req *providers.Request) *providers.Response
	delay       time.Duration
	reachable   bool
	lastRequest *providers.Request
	closed      bool
}

// NewMockAdapter creates a mock adapter with the given name.
// With no script it answers every request with a success response.
func NewMockAdapter(name string) *MockAdapter {
	return &MockAdapter{
		name:      name,
		model:     "mock-model",
		reachable: true,
	}
}

// WithModel sets the model name the adapter reports.
func (m *MockAdapter) WithModel(model string) *MockAdapter {
	m.model = model
	return m
}

// Script sets the sequence of responses Generate returns.
// The last response repeats once the script is exhausted.
func (m *MockAdapter) Script(responses ...*providers.Response) *MockAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = responses
	return m
}

// GenerateFunc overrides Generate with a custom function.
// Scripted responses are ignored while set.
func (m *MockAdapter) GenerateFunc(fn func(ctx context.Context, req *providers.Request) *providers.Response) *MockAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateFn = fn
	return m
}

// SetDelay makes every Generate call block for d before answering.
func (m *MockAdapter) SetDelay(d time.Duration) *MockAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// SetReachable controls what ValidateConnection reports.
func (m *MockAdapter) SetReachable(reachable bool) *MockAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reachable = reachable
	return m
}

// Calls returns how many times Generate was invoked.
func (m *MockAdapter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request passed to Generate.
func (m *MockAdapter) LastRequest() *providers.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Closed reports whether Close was called.
func (m *MockAdapter) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Generate returns the next scripted response.
func (m *MockAdapter) Generate(ctx context.Context, req *providers.Request) *providers.Response {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.lastRequest = req
	fn := m.generateFn
	delay := m.delay

	var resp *providers.Response
	if fn == nil {
		if len(m.script) == 0 {
			resp = providers.NewSuccess(m.name, m.model, "mock response", 10, time.Millisecond)
		} else if call <= len(m.script) {
			resp = m.script[call-1]
		} else {
			resp = m.script[len(m.script)-1]
		}
	}
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return providers.NewFailure(m.name, m.model, providers.StatusTimeout, "mock: context expired")
		}
	}

	if fn != nil {
		return fn(ctx, req)
	}
	return resp
}

// ValidateConnection reports the configured reachability.
func (m *MockAdapter) ValidateConnection(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reachable
}

// Describe returns the adapter's capabilities.
func (m *MockAdapter) Describe() providers.ProviderInfo {
	return providers.ProviderInfo{
		Name:                  m.name,
		Type:                  "mock",
		Model:                 m.model,
		SupportsSystemMessage: true,
		SupportsContext:       true,
	}
}

// GetName returns the adapter's name.
func (m *MockAdapter) GetName() string {
	return m.name
}

// Close marks the adapter closed.
func (m *MockAdapter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Success builds a success response attributed to the adapter.
func (m *MockAdapter) Success(content string, tokens int) *providers.Response {
	return providers.NewSuccess(m.name, m.model, content, tokens, time.Millisecond)
}

// Failure builds a failure response attributed to the adapter.
func (m *MockAdapter) Failure(status providers.Status, message string) *providers.Response {
	return providers.NewFailure(m.name, m.model, status, message)
}
