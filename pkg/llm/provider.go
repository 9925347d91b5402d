// Package llm provides the abstraction over generation backends. Every
// provider, remote or local, is reached through the one Generate call shape;
// the concrete backend is chosen once at configuration time from a tagged
// Kind, never by inspecting strings at call sites.
package llm

import (
	"context"
	"fmt"
)

// Kind enumerates the supported generation backends.
type Kind string

const (
	// KindOpenAI is the hosted OpenAI (or compatible) API.
	KindOpenAI Kind = "openai"
	// KindLocal is a local OpenAI-compatible inference server.
	KindLocal Kind = "local"
)

// ParseKind converts a configuration string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindOpenAI, KindLocal:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown provider kind %q (want %q or %q)", s, KindOpenAI, KindLocal)
	}
}

// UsageMetrics reports token consumption for one generation call. When the
// backend does not report usage (common for local servers), counts are
// estimated from the text and Estimated is set.
type UsageMetrics struct {
	PromptTokens     int
	CompletionTokens int
	Estimated        bool
}

// Result is one complete generation: the raw untrusted text plus usage.
type Result struct {
	Text  string
	Usage UsageMetrics
}

// Provider is the single call shape through which all backends are accessed.
type Provider interface {
	// Generate sends a prompt and returns the complete response text.
	Generate(ctx context.Context, prompt string) (*Result, error)

	// GetModel returns the model name being used.
	GetModel() string
}
