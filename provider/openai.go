package provider

import (
	"context"
	"net/http"
	"strings"
)

const (
	// DefaultProxyBaseURL is the address of the testgen server hosting the proxy.
	DefaultProxyBaseURL = "http://localhost:8080"

	// ProxyPath is the server route that forwards chat completions to OpenAI.
	ProxyPath = "/api/openai"
)

// OpenAIProvider calls OpenAI through the local proxy so the key can stay on
// the server. The bearer token is forwarded when one is configured.
type OpenAIProvider struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
}

// NewOpenAIProvider creates an OpenAI provider posting to <baseURL>/api/openai
// unless endpoint is set.
func NewOpenAIProvider(cfg Config, httpClient *http.Client, endpoint string) *OpenAIProvider {
	if endpoint == "" {
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultProxyBaseURL
		}
		endpoint = strings.TrimRight(baseURL, "/") + ProxyPath
	}
	return &OpenAIProvider{
		httpClient: httpClient,
		endpoint:   endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
	}
}

// Generate sends the prompt as the user message of a chat completion.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	var resp chatResponse
	if err := postJSON(ctx, p.httpClient, p.endpoint, p.apiKey, newChatRequest(p.model, prompt, 0), &resp); err != nil {
		return "", err
	}
	return resp.text()
}
