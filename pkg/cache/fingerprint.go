package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"mercator-hq/ganymede/pkg/providers"
)

// fingerprintPayload is the canonical serialization of the request fields
// that determine cache identity. Field order is fixed by the struct, and
// encoding/json marshals map keys in sorted order, so equal requests
// always produce identical bytes.
//
// Metadata is deliberately absent: it is caller bookkeeping and must never
// influence cache identity.
type fingerprintPayload struct {
	Prompt        string                 `json:"prompt"`
	Context       map[string]interface{} `json:"context,omitempty"`
	SystemMessage string                 `json:"system_message,omitempty"`
	Temperature   float64                `json:"temperature"`
	MaxTokens     int                    `json:"max_tokens"`
}

// Fingerprint computes the deterministic cache key for a request: the
// hex-encoded SHA-256 of the canonical JSON serialization of (prompt,
// context, system_message, temperature, max_tokens).
//
// Returns an error if the request context contains values that cannot be
// JSON-serialized; such requests are uncacheable.
func Fingerprint(req *providers.Request) (string, error) {
	if req == nil {
		return "", fmt.Errorf("cannot fingerprint nil request")
	}

	payload := fingerprintPayload{
		Prompt:        req.Prompt,
		Context:       req.Context,
		SystemMessage: req.SystemMessage,
		Temperature:   req.Temperature,
		MaxTokens:     req.MaxTokens,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize request for fingerprint: %w", err)
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
