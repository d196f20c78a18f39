package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidKind is returned when a provider kind is not recognised.
	ErrInvalidKind = errors.New("invalid AI provider")

	// ErrMissingModel is returned when no model is configured for a provider.
	ErrMissingModel = errors.New("model is required")

	// ErrMissingAPIKey is returned when a provider that needs a key has none.
	ErrMissingAPIKey = errors.New("api key is required")
)

// Kind identifies an LLM provider variant.
type Kind string

const (
	KindGroq    Kind = "groq"
	KindOllama  Kind = "ollama"
	KindOpenAI  Kind = "openai"
	KindBedrock Kind = "bedrock"
)

// Kinds lists every supported provider kind in display order.
var Kinds = []Kind{KindOpenAI, KindOllama, KindGroq, KindBedrock}

// IsValid checks if the provider kind is valid.
func (k Kind) IsValid() bool {
	switch k {
	case KindGroq, KindOllama, KindOpenAI, KindBedrock:
		return true
	default:
		return false
	}
}

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidKind, s)
	}
	return k, nil
}

// Config selects a provider and the model it should run.
type Config struct {
	Kind    Kind
	Model   string
	BaseURL string
	APIKey  string
	// Region is only used by Bedrock.
	Region string
}

// Provider sends a prompt to an LLM and returns the raw text it produced.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type options struct {
	httpClient *http.Client
	endpoint   string
	bedrock    BedrockInvoker
}

// Option customises a provider built by New.
type Option func(*options)

// WithHTTPClient sets the HTTP client used by the HTTP based providers.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithEndpoint overrides the full request URL of an HTTP based provider.
func WithEndpoint(url string) Option {
	return func(o *options) {
		o.endpoint = url
	}
}

// WithBedrockClient sets the Bedrock runtime client instead of loading one
// from the default AWS configuration.
func WithBedrockClient(c BedrockInvoker) Option {
	return func(o *options) {
		o.bedrock = c
	}
}

// New builds the provider for cfg.Kind.
func New(cfg Config, opts ...Option) (Provider, error) {
	o := &options{httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(o)
	}

	if cfg.Model == "" {
		return nil, ErrMissingModel
	}

	switch cfg.Kind {
	case KindGroq:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("groq: %w", ErrMissingAPIKey)
		}
		return NewGroqProvider(cfg, o.httpClient, o.endpoint), nil
	case KindOllama:
		return NewOllamaProvider(cfg, o.httpClient, o.endpoint), nil
	case KindOpenAI:
		return NewOpenAIProvider(cfg, o.httpClient, o.endpoint), nil
	case KindBedrock:
		if o.bedrock != nil {
			return NewBedrockProviderWithClient(o.bedrock, cfg.Model), nil
		}
		return NewBedrockProvider(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidKind, cfg.Kind)
	}
}
