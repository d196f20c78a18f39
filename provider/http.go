package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hairizuanbinnoorazman/testcase-generator/prompt"
)

const (
	// Temperature is the sampling temperature sent to chat-style providers.
	Temperature = 0.7

	roleSystem = "system"
	roleUser   = "user"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func newChatRequest(model, userPrompt string, maxTokens int) chatRequest {
	return chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: roleSystem, Content: systemMessage()},
			{Role: roleUser, Content: userPrompt},
		},
		Temperature: Temperature,
		MaxTokens:   maxTokens,
	}
}

func systemMessage() string {
	return prompt.SystemPrompt
}

// text returns the first choice's message content.
func (r *chatResponse) text() (string, error) {
	if len(r.Choices) == 0 || r.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("%w: missing choices[0].message.content", ErrInvalidResponse)
	}
	return *r.Choices[0].Message.Content, nil
}

// postJSON sends body as JSON and decodes a 2xx response into out.
// Non-2xx responses become *StatusError.
func postJSON(ctx context.Context, client *http.Client, url, apiKey string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return &StatusError{
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// statusText returns the reason phrase of resp, e.g. "Unauthorized".
func statusText(resp *http.Response) string {
	if _, reason, ok := strings.Cut(resp.Status, " "); ok && reason != "" {
		return reason
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
