// Package openai provides an OpenAI-compatible generation backend. The same
// implementation serves the hosted API and local inference servers exposing a
// compatible endpoint; only the base URL differs.
package openai

import (
	"context"
	"fmt"
	"os"

	openaigo "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/SWORDIntel/autocoder-sub000/pkg/llm"
	"github.com/SWORDIntel/autocoder-sub000/pkg/llm/tokenizer"
)

// DefaultBaseURL is the hosted OpenAI API base URL.
const DefaultBaseURL = "https://api.openai.com/v1"

// Provider implements llm.Provider against an OpenAI-compatible API.
type Provider struct {
	client  openaigo.Client
	apiKey  string
	baseURL string
	model   string
	tok     *tokenizer.Tokenizer
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithModel sets the model to use for completions.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		p.model = model
	}
}

// WithBaseURL sets a custom base URL for OpenAI-compatible APIs. This enables
// local model servers and other compatible services.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// NewProvider creates a provider with the given API key.
//
// If apiKey is empty it falls back to the OPENAI_API_KEY environment
// variable. If no base URL is set via options, OPENAI_BASE_URL is honored.
// The default model is "gpt-4o".
func NewProvider(apiKey string, opts ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required (provide via parameter or OPENAI_API_KEY environment variable)")
	}

	p := &Provider{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   "gpt-4o",
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.baseURL == DefaultBaseURL {
		if envBaseURL := os.Getenv("OPENAI_BASE_URL"); envBaseURL != "" {
			p.baseURL = envBaseURL
		}
	}

	p.client = openaigo.NewClient(
		option.WithAPIKey(p.apiKey),
		option.WithBaseURL(p.baseURL),
	)

	// Token estimation is best-effort; a provider without a tokenizer just
	// reports zero usage when the backend stays silent.
	if tok, err := tokenizer.New(); err == nil {
		p.tok = tok
	}

	return p, nil
}

// Generate sends a single-turn prompt and returns the full response.
func (p *Provider) Generate(ctx context.Context, prompt string) (*llm.Result, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(p.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.UserMessage(prompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion response contained no choices")
	}

	text := resp.Choices[0].Message.Content
	usage := llm.UsageMetrics{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
	}
	if usage.PromptTokens == 0 && usage.CompletionTokens == 0 && p.tok != nil {
		usage.PromptTokens = p.tok.CountTokens(prompt)
		usage.CompletionTokens = p.tok.CountTokens(text)
		usage.Estimated = true
	}

	return &llm.Result{Text: text, Usage: usage}, nil
}

// GetModel returns the model name being used.
func (p *Provider) GetModel() string {
	return p.model
}

// GetBaseURL returns the base URL being used for API requests.
func (p *Provider) GetBaseURL() string {
	return p.baseURL
}
