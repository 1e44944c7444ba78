package logging

import (
	"context"
	"log/slog"
	"regexp"
)

// Redactor scrubs credential material from log text: provider API keys,
// bearer tokens, and key-value password fields. It is not a general PII
// scrubber; error messages have already been sanitized at the provider
// boundary, so the redactor is a second net for values that reach the
// logger directly.
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Pattern names for the built-in redactions.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternKeyHeader   = "key_header"
	PatternPassword    = "password"
)

// NewRedactor returns a Redactor with the built-in credential patterns.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []redactPattern{
			{
				name:        PatternAPIKey,
				regex:       regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{8,}`),
				replacement: "sk-***",
			},
			{
				name:        PatternBearerToken,
				regex:       regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`),
				replacement: "Bearer ***",
			},
			{
				name:        PatternKeyHeader,
				regex:       regexp.MustCompile(`(?i)(x-api-key|api[-_]?key)[:=]\s*\S+`),
				replacement: "$1: ***",
			},
			{
				name:        PatternPassword,
				regex:       regexp.MustCompile(`(?i)(password|passwd|secret)[:=]\s*\S+`),
				replacement: "$1: ***",
			},
		},
	}
}

// Redact applies every pattern to s and returns the scrubbed result.
func (r *Redactor) Redact(s string) string {
	for _, p := range r.patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}

// RedactingHandler wraps a slog.Handler and scrubs string attribute values
// and record messages before they are emitted.
type RedactingHandler struct {
	inner    slog.Handler
	redactor *Redactor
}

// NewRedactingHandler wraps inner with credential redaction.
func NewRedactingHandler(inner slog.Handler, redactor *Redactor) *RedactingHandler {
	return &RedactingHandler{inner: inner, redactor: redactor}
}

// Enabled implements slog.Handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler, rewriting string attributes.
func (h *RedactingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, h.redactor.Redact(rec.Message), rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, out)
}

// WithAttrs implements slog.Handler.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	scrubbed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		scrubbed[i] = h.redactAttr(a)
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(scrubbed), redactor: h.redactor}
}

// WithGroup implements slog.Handler.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name), redactor: h.redactor}
}

func (h *RedactingHandler) redactAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, h.redactor.Redact(a.Value.String()))
	case slog.KindGroup:
		group := a.Value.Group()
		scrubbed := make([]any, 0, len(group))
		for _, g := range group {
			scrubbed = append(scrubbed, h.redactAttr(g))
		}
		return slog.Group(a.Key, scrubbed...)
	default:
		return a
	}
}
