package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	// DefaultBedrockRegion is used when no region is configured.
	DefaultBedrockRegion = "us-east-1"

	// BedrockMaxTokens caps the completion length requested from Bedrock.
	BedrockMaxTokens = 4096

	bedrockAnthropicVersion = "bedrock-2023-05-31"
)

// BedrockInvoker is the subset of the Bedrock runtime client used here.
type BedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockProvider runs Anthropic models on AWS Bedrock.
type BedrockProvider struct {
	client    BedrockInvoker
	modelID   string
	maxTokens int
}

type bedrockContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type bedrockMessage struct {
	Role    string           `json:"role"`
	Content []bedrockContent `json:"content"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	System           string           `json:"system,omitempty"`
	Temperature      float64          `json:"temperature"`
	Messages         []bedrockMessage `json:"messages"`
}

type bedrockResponse struct {
	Content []bedrockContent `json:"content"`
}

// NewBedrockProvider loads the default AWS configuration for cfg.Region.
func NewBedrockProvider(ctx context.Context, cfg Config) (*BedrockProvider, error) {
	region := cfg.Region
	if region == "" {
		region = DefaultBedrockRegion
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewBedrockProviderWithClient(bedrockruntime.NewFromConfig(awsCfg), cfg.Model), nil
}

// NewBedrockProviderWithClient creates a provider around an existing client.
func NewBedrockProviderWithClient(client BedrockInvoker, modelID string) *BedrockProvider {
	return &BedrockProvider{
		client:    client,
		modelID:   modelID,
		maxTokens: BedrockMaxTokens,
	}
}

// Generate invokes the model with the Anthropic messages payload.
func (p *BedrockProvider) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(bedrockRequest{
		AnthropicVersion: bedrockAnthropicVersion,
		MaxTokens:        p.maxTokens,
		System:           systemMessage(),
		Temperature:      Temperature,
		Messages: []bedrockMessage{
			{Role: roleUser, Content: []bedrockContent{{Type: "text", Text: prompt}}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	var resp bedrockResponse
	if err := json.Unmarshal(output.Body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("%w: no content in response", ErrInvalidResponse)
	}
	return resp.Content[0].Text, nil
}
