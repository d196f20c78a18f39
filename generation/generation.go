package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"github.com/hairizuanbinnoorazman/testcase-generator/prompt"
	"github.com/hairizuanbinnoorazman/testcase-generator/provider"
	"github.com/hairizuanbinnoorazman/testcase-generator/settings"
	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
)

// Messages shown to users for each class of generation failure.
const (
	MessageEmptyRequirement = "Please enter a requirement"
	MessageInvalidResponse  = "invalid response format"
	MessageGenerationFailed = "failed to generate test cases"
)

// ProviderFactory builds a provider from its configuration.
type ProviderFactory func(cfg provider.Config) (provider.Provider, error)

// Request is a single generation request.
type Request struct {
	Requirement   string
	Template      string
	Customization testcase.Customization
	// Provider overrides the selected provider when set.
	Provider provider.Kind
}

// Service turns requirements into test cases using the configured provider.
type Service struct {
	settings    *settings.Manager
	newProvider ProviderFactory
	logger      logger.Logger
}

// NewService creates a generation service. A nil factory uses provider.New.
func NewService(manager *settings.Manager, newProvider ProviderFactory, log logger.Logger) *Service {
	if newProvider == nil {
		newProvider = func(cfg provider.Config) (provider.Provider, error) {
			return provider.New(cfg)
		}
	}
	return &Service{
		settings:    manager,
		newProvider: newProvider,
		logger:      log,
	}
}

// Generate validates the request, calls the provider once and parses its
// output. Parsing never fails; unparseable output becomes a single case.
func (s *Service) Generate(ctx context.Context, req Request) ([]testcase.TestCase, error) {
	if err := req.Customization.Validate(); err != nil {
		return nil, err
	}

	if err := prompt.Validate(req.Requirement, req.Template); err != nil {
		return nil, err
	}
	userPrompt := prompt.Build(req.Requirement, req.Template, req.Customization)

	cfg, err := s.settings.ProviderConfig(req.Provider)
	if err != nil {
		return nil, err
	}

	p, err := s.newProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", cfg.Kind, err)
	}

	fields := map[string]interface{}{
		"provider": string(cfg.Kind),
		"model":    cfg.Model,
		"base_url": cfg.BaseURL,
		"api_key":  logger.Redact(cfg.APIKey),
	}
	s.logger.Info(ctx, "generating test cases", fields)

	start := time.Now()
	raw, err := p.Generate(ctx, userPrompt)
	if err != nil {
		fields["error"] = err.Error()
		s.logger.Error(ctx, "provider request failed", fields)
		return nil, err
	}

	cases := testcase.Parse(raw)
	s.logger.Info(ctx, "test cases generated", map[string]interface{}{
		"provider":    string(cfg.Kind),
		"model":       cfg.Model,
		"case_count":  len(cases),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return cases, nil
}

// IsUserError reports whether err was caused by the request itself rather
// than by the provider.
func IsUserError(err error) bool {
	return errors.Is(err, prompt.ErrEmptyRequirement) ||
		errors.Is(err, prompt.ErrRequirementTooLong) ||
		errors.Is(err, prompt.ErrTemplateTooLong) ||
		errors.Is(err, testcase.ErrInvalidCoverage) ||
		errors.Is(err, testcase.ErrInvalidEnvironment) ||
		errors.Is(err, testcase.ErrInvalidPriority) ||
		errors.Is(err, testcase.ErrInvalidComplexity) ||
		errors.Is(err, provider.ErrInvalidKind) ||
		errors.Is(err, provider.ErrMissingAPIKey)
}

// UserMessage maps a generation error to the message shown to the user.
// Provider status errors are shown verbatim.
func UserMessage(err error) string {
	var statusErr *provider.StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, prompt.ErrEmptyRequirement):
		return MessageEmptyRequirement
	case errors.Is(err, provider.ErrInvalidResponse):
		return MessageInvalidResponse
	case errors.As(err, &statusErr):
		return statusErr.Error()
	case IsUserError(err):
		return err.Error()
	default:
		return MessageGenerationFailed
	}
}
