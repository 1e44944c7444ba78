package cache

import (
	"testing"

	"mercator-hq/ganymede/pkg/providers"
)

func baseRequest() *providers.Request {
	return &providers.Request{
		Prompt: "Generate a product description",
		Context: map[string]interface{}{
			"industry": "retail",
			"tone":     "friendly",
		},
		SystemMessage: "You are a copywriter",
		Temperature:   0.7,
		MaxTokens:     200,
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	first, err := Fingerprint(baseRequest())
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(first))
	}

	for i := 0; i < 20; i++ {
		again, err := Fingerprint(baseRequest())
		if err != nil {
			t.Fatalf("Fingerprint failed on iteration %d: %v", i, err)
		}
		if again != first {
			t.Fatalf("fingerprint not deterministic: %s != %s", again, first)
		}
	}
}

func TestFingerprint_FieldSensitivity(t *testing.T) {
	base, err := Fingerprint(baseRequest())
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*providers.Request)
	}{
		{
			name:   "prompt",
			mutate: func(r *providers.Request) { r.Prompt = "Generate a slogan" },
		},
		{
			name:   "context value",
			mutate: func(r *providers.Request) { r.Context["industry"] = "finance" },
		},
		{
			name:   "context key added",
			mutate: func(r *providers.Request) { r.Context["audience"] = "teens" },
		},
		{
			name:   "context removed",
			mutate: func(r *providers.Request) { r.Context = nil },
		},
		{
			name:   "system message",
			mutate: func(r *providers.Request) { r.SystemMessage = "You are a poet" },
		},
		{
			name:   "temperature",
			mutate: func(r *providers.Request) { r.Temperature = 0.9 },
		},
		{
			name:   "max tokens",
			mutate: func(r *providers.Request) { r.MaxTokens = 500 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.mutate(req)

			got, err := Fingerprint(req)
			if err != nil {
				t.Fatalf("Fingerprint failed: %v", err)
			}
			if got == base {
				t.Errorf("changing %s did not change the fingerprint", tt.name)
			}
		})
	}
}

func TestFingerprint_MetadataExcluded(t *testing.T) {
	plain := baseRequest()

	tagged := baseRequest()
	tagged.Metadata = map[string]string{
		"request_id": "abc-123",
		"caller":     "batch-job",
	}

	first, err := Fingerprint(plain)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	second, err := Fingerprint(tagged)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	if first != second {
		t.Error("metadata changed the fingerprint; it must not participate")
	}
}

func TestFingerprint_ContextKeyOrder(t *testing.T) {
	forward := baseRequest()
	forward.Context = map[string]interface{}{}
	forward.Context["a"] = 1
	forward.Context["b"] = 2
	forward.Context["c"] = 3

	backward := baseRequest()
	backward.Context = map[string]interface{}{}
	backward.Context["c"] = 3
	backward.Context["b"] = 2
	backward.Context["a"] = 1

	first, err := Fingerprint(forward)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	second, err := Fingerprint(backward)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	if first != second {
		t.Error("context insertion order changed the fingerprint")
	}
}

func TestFingerprint_NilRequest(t *testing.T) {
	if _, err := Fingerprint(nil); err == nil {
		t.Error("expected error for nil request")
	}
}

func TestFingerprint_UnserializableContext(t *testing.T) {
	req := baseRequest()
	req.Context["bad"] = make(chan int)

	if _, err := Fingerprint(req); err == nil {
		t.Error("expected error for unserializable context value")
	}
}
