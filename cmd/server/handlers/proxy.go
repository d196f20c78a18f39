package handlers

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
)

// DefaultOpenAIUpstream is the chat-completions endpoint the proxy forwards to.
const DefaultOpenAIUpstream = "https://api.openai.com/v1/chat/completions"

// OpenAIProxy forwards chat-completion requests to OpenAI. The caller's
// bearer token is used when present, otherwise the server's key.
type OpenAIProxy struct {
	upstream   string
	apiKey     string
	httpClient *http.Client
	logger     logger.Logger
}

// NewOpenAIProxy creates the proxy. An empty upstream uses DefaultOpenAIUpstream.
func NewOpenAIProxy(upstream, apiKey string, httpClient *http.Client, log logger.Logger) *OpenAIProxy {
	if upstream == "" {
		upstream = DefaultOpenAIUpstream
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAIProxy{
		upstream:   upstream,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     log,
	}
}

// ServeHTTP relays the request body and returns the upstream status and body
// unchanged.
func (p *OpenAIProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := bearerToken(r.Header.Get("Authorization"))
	if key == "" {
		key = p.apiKey
	}
	if key == "" {
		respondError(w, http.StatusUnauthorized, "OpenAI API key is required")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, p.upstream, bytes.NewReader(body))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to build upstream request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error(r.Context(), "openai upstream request failed", map[string]interface{}{
			"error":   err.Error(),
			"api_key": logger.Redact(key),
		})
		respondError(w, http.StatusBadGateway, "upstream request failed")
		return
	}
	defer resp.Body.Close()

	p.logger.Debug(r.Context(), "openai upstream responded", map[string]interface{}{
		"status": resp.StatusCode,
	})

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

// bearerToken returns the token of a Bearer authorization header. The scheme
// is matched case-insensitively; any other scheme yields "".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
