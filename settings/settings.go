package settings

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/hairizuanbinnoorazman/testcase-generator/issuetracker"
	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"github.com/hairizuanbinnoorazman/testcase-generator/provider"
)

// Keys of the two persisted settings documents.
const (
	KeyModelConfig = "modelConfig"
	KeyCredentials = "credentials"
)

var (
	// ErrDuplicateModel is returned when a custom model is already listed.
	ErrDuplicateModel = errors.New("model is already in your list")

	// ErrEmptyModel is returned when a model name is blank.
	ErrEmptyModel = errors.New("model name is required")

	// ErrInvalidBaseURL is returned when a base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("base URL must be an absolute http or https URL")
)

// builtinModels are the models offered for each provider before any custom
// model is added.
var builtinModels = map[provider.Kind][]string{
	provider.KindOpenAI:  {"gpt-4-turbo-preview", "gpt-4", "gpt-3.5-turbo"},
	provider.KindOllama:  {"llama3.1", "llama2", "mistral", "codellama"},
	provider.KindGroq:    {"llama-3.2-90b-text-preview", "mixtral-8x7b-32768", "llama2-70b-4096"},
	provider.KindBedrock: {"anthropic.claude-3-5-sonnet-20240620-v1:0", "anthropic.claude-3-haiku-20240307-v1:0"},
}

// BuiltinModels returns the models offered for kind out of the box.
func BuiltinModels(kind provider.Kind) []string {
	return append([]string(nil), builtinModels[kind]...)
}

// ProviderSettings is the persisted selection for one provider.
type ProviderSettings struct {
	Model        string   `json:"model"`
	BaseURL      string   `json:"baseUrl,omitempty"`
	Region       string   `json:"region,omitempty"`
	CustomModels []string `json:"customModels"`
}

// Models returns the built-in models followed by the custom ones.
func (p ProviderSettings) Models(kind provider.Kind) []string {
	return append(BuiltinModels(kind), p.CustomModels...)
}

// ModelConfig is the "modelConfig" document: the selected provider and the
// model settings of every provider.
type ModelConfig struct {
	Provider  provider.Kind                      `json:"provider"`
	Providers map[provider.Kind]ProviderSettings `json:"providers"`
}

// DefaultModelConfig returns the model configuration of a fresh install.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Provider: provider.KindOpenAI,
		Providers: map[provider.Kind]ProviderSettings{
			provider.KindOpenAI: {
				Model:        "gpt-4-turbo-preview",
				CustomModels: []string{},
			},
			provider.KindOllama: {
				Model:        "llama2",
				BaseURL:      provider.DefaultOllamaBaseURL,
				CustomModels: []string{},
			},
			provider.KindGroq: {
				Model:        "mixtral-8x7b-32768",
				CustomModels: []string{},
			},
			provider.KindBedrock: {
				Model:        "anthropic.claude-3-5-sonnet-20240620-v1:0",
				Region:       provider.DefaultBedrockRegion,
				CustomModels: []string{},
			},
		},
	}
}

// For returns the settings of kind, falling back to the defaults for a
// provider missing from the document.
func (c ModelConfig) For(kind provider.Kind) ProviderSettings {
	if ps, ok := c.Providers[kind]; ok {
		return ps
	}
	return DefaultModelConfig().Providers[kind]
}

// withDefaults fills providers missing from a stored document.
func (c ModelConfig) withDefaults() ModelConfig {
	out := c.clone()
	if !out.Provider.IsValid() {
		out.Provider = provider.KindOpenAI
	}
	for kind, def := range DefaultModelConfig().Providers {
		ps, ok := out.Providers[kind]
		if !ok {
			out.Providers[kind] = def
			continue
		}
		if ps.Model == "" {
			ps.Model = def.Model
		}
		if ps.CustomModels == nil {
			ps.CustomModels = []string{}
		}
		out.Providers[kind] = ps
	}
	return out
}

func (c ModelConfig) clone() ModelConfig {
	out := ModelConfig{
		Provider:  c.Provider,
		Providers: make(map[provider.Kind]ProviderSettings, len(c.Providers)),
	}
	for kind, ps := range c.Providers {
		ps.CustomModels = append([]string{}, ps.CustomModels...)
		out.Providers[kind] = ps
	}
	return out
}

// Validate checks the selected provider, models and base URLs.
func (c ModelConfig) Validate() error {
	if !c.Provider.IsValid() {
		return fmt.Errorf("%w: %s", provider.ErrInvalidKind, c.Provider)
	}
	for kind, ps := range c.Providers {
		if !kind.IsValid() {
			return fmt.Errorf("%w: %s", provider.ErrInvalidKind, kind)
		}
		if strings.TrimSpace(ps.Model) == "" {
			return fmt.Errorf("%s: %w", kind, ErrEmptyModel)
		}
		if err := validateBaseURL(ps.BaseURL); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
	}
	return nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}
	return nil
}

// Credentials is the "credentials" document.
type Credentials struct {
	OpenAIKey string                    `json:"openaiKey"`
	GroqKey   string                    `json:"groqKey"`
	Jira      issuetracker.JiraConfig   `json:"jira"`
	GitHub    issuetracker.GitHubConfig `json:"github"`
}

// APIKey returns the key used for kind, if that provider takes one.
func (c Credentials) APIKey(kind provider.Kind) string {
	switch kind {
	case provider.KindOpenAI:
		return c.OpenAIKey
	case provider.KindGroq:
		return c.GroqKey
	default:
		return ""
	}
}

// Trackers returns the issue tracker connection settings.
func (c Credentials) Trackers() issuetracker.TrackerConfig {
	return issuetracker.TrackerConfig{Jira: c.Jira, GitHub: c.GitHub}
}

// Masked returns a copy safe for display with every secret redacted.
func (c Credentials) Masked() Credentials {
	c.OpenAIKey = logger.Redact(c.OpenAIKey)
	c.GroqKey = logger.Redact(c.GroqKey)
	c.Jira.APIToken = logger.Redact(c.Jira.APIToken)
	c.GitHub.Token = logger.Redact(c.GitHub.Token)
	return c
}
