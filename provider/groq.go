package provider

import (
	"context"
	"net/http"
)

const (
	// GroqEndpoint is the Groq OpenAI-compatible chat completions URL.
	GroqEndpoint = "https://api.groq.com/openai/v1/chat/completions"

	// GroqMaxTokens caps the completion length requested from Groq.
	GroqMaxTokens = 2000
)

// GroqProvider calls the hosted Groq chat completions API.
type GroqProvider struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
}

// NewGroqProvider creates a Groq provider. An empty endpoint uses GroqEndpoint.
func NewGroqProvider(cfg Config, httpClient *http.Client, endpoint string) *GroqProvider {
	if endpoint == "" {
		endpoint = GroqEndpoint
	}
	return &GroqProvider{
		httpClient: httpClient,
		endpoint:   endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
	}
}

// Generate sends the prompt as the user message of a chat completion.
func (p *GroqProvider) Generate(ctx context.Context, prompt string) (string, error) {
	var resp chatResponse
	if err := postJSON(ctx, p.httpClient, p.endpoint, p.apiKey, newChatRequest(p.model, prompt, GroqMaxTokens), &resp); err != nil {
		return "", err
	}
	return resp.text()
}
