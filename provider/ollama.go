package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// DefaultOllamaBaseURL is where a local Ollama server listens by default.
const DefaultOllamaBaseURL = "http://localhost:11434"

// OllamaProvider calls a self-hosted Ollama server. No authentication is sent.
type OllamaProvider struct {
	httpClient *http.Client
	endpoint   string
	model      string
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response *string `json:"response"`
}

// NewOllamaProvider creates an Ollama provider posting to <baseURL>/api/generate
// unless endpoint is set.
func NewOllamaProvider(cfg Config, httpClient *http.Client, endpoint string) *OllamaProvider {
	if endpoint == "" {
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultOllamaBaseURL
		}
		endpoint = strings.TrimRight(baseURL, "/") + "/api/generate"
	}
	return &OllamaProvider{
		httpClient: httpClient,
		endpoint:   endpoint,
		model:      cfg.Model,
	}
}

// Generate runs a single non-streaming generation.
func (p *OllamaProvider) Generate(ctx context.Context, prompt string) (string, error) {
	req := ollamaRequest{Model: p.model, Prompt: prompt, Stream: false}

	var resp ollamaResponse
	if err := postJSON(ctx, p.httpClient, p.endpoint, "", req, &resp); err != nil {
		return "", err
	}
	if resp.Response == nil {
		return "", fmt.Errorf("%w: missing response field", ErrInvalidResponse)
	}
	return *resp.Response, nil
}
