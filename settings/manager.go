package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hairizuanbinnoorazman/testcase-generator/issuetracker"
	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"github.com/hairizuanbinnoorazman/testcase-generator/provider"
)

// Manager holds the in-memory settings and writes every change through to
// the store. The last write wins.
type Manager struct {
	store  Store
	logger logger.Logger
	key    []byte

	mu     sync.RWMutex
	models ModelConfig
	creds  Credentials
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithPassphrase encrypts the credentials document with a key derived from
// passphrase. An empty passphrase stores credentials in plain text.
func WithPassphrase(passphrase string) ManagerOption {
	return func(m *Manager) {
		if passphrase != "" {
			m.key = DeriveKey(passphrase)
		}
	}
}

// NewManager creates a manager holding the default settings until Load is called.
func NewManager(store Store, log logger.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		logger: log,
		models: DefaultModelConfig(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load reads both documents. A missing or corrupt document leaves the
// defaults in place; only store failures and undecryptable credentials are
// returned as errors.
func (m *Manager) Load(ctx context.Context) error {
	models, err := m.loadModelConfig(ctx)
	if err != nil {
		return err
	}
	creds, err := m.loadCredentials(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.models = models
	m.creds = creds
	m.mu.Unlock()
	return nil
}

func (m *Manager) loadModelConfig(ctx context.Context) (ModelConfig, error) {
	data, err := m.store.Get(ctx, KeyModelConfig)
	if errors.Is(err, ErrNotFound) {
		return DefaultModelConfig(), nil
	}
	if err != nil {
		return ModelConfig{}, fmt.Errorf("failed to load model config: %w", err)
	}

	var cfg ModelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		m.logger.Warn(ctx, "corrupt model config, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return DefaultModelConfig(), nil
	}
	return cfg.withDefaults(), nil
}

func (m *Manager) loadCredentials(ctx context.Context) (Credentials, error) {
	data, err := m.store.Get(ctx, KeyCredentials)
	if errors.Is(err, ErrNotFound) {
		return Credentials{}, nil
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to load credentials: %w", err)
	}

	if IsEncrypted(data) {
		if m.key == nil {
			return Credentials{}, ErrPassphraseRequired
		}
		data, err = Decrypt(m.key, data)
		if err != nil {
			return Credentials{}, err
		}
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		m.logger.Warn(ctx, "corrupt credentials, starting empty", map[string]interface{}{
			"error": err.Error(),
		})
		return Credentials{}, nil
	}
	return creds, nil
}

// ModelConfig returns a copy of the model configuration.
func (m *Manager) ModelConfig() ModelConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.models.clone()
}

// Credentials returns a copy of the stored credentials.
func (m *Manager) Credentials() Credentials {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds
}

// UpdateModelConfig applies fn to a copy of the model configuration,
// validates the result and saves it.
func (m *Manager) UpdateModelConfig(ctx context.Context, fn func(*ModelConfig) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.models.clone()
	if err := fn(&next); err != nil {
		return err
	}
	next = next.withDefaults()
	if err := next.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to marshal model config: %w", err)
	}
	if err := m.store.Put(ctx, KeyModelConfig, data); err != nil {
		return fmt.Errorf("failed to save model config: %w", err)
	}

	m.models = next
	m.logger.Info(ctx, "model config saved", map[string]interface{}{
		"provider": string(next.Provider),
		"model":    next.For(next.Provider).Model,
	})
	return nil
}

// SelectProvider makes kind the provider used when a request names none.
func (m *Manager) SelectProvider(ctx context.Context, kind provider.Kind) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: %s", provider.ErrInvalidKind, kind)
	}
	return m.UpdateModelConfig(ctx, func(c *ModelConfig) error {
		c.Provider = kind
		return nil
	})
}

// SelectModel sets the model used for kind.
func (m *Manager) SelectModel(ctx context.Context, kind provider.Kind, model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return ErrEmptyModel
	}
	return m.updateProvider(ctx, kind, func(ps *ProviderSettings) error {
		ps.Model = model
		return nil
	})
}

// SetBaseURL sets the server address used for kind.
func (m *Manager) SetBaseURL(ctx context.Context, kind provider.Kind, baseURL string) error {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if err := validateBaseURL(baseURL); err != nil {
		return err
	}
	return m.updateProvider(ctx, kind, func(ps *ProviderSettings) error {
		ps.BaseURL = baseURL
		return nil
	})
}

// SetRegion sets the AWS region used for kind.
func (m *Manager) SetRegion(ctx context.Context, kind provider.Kind, region string) error {
	return m.updateProvider(ctx, kind, func(ps *ProviderSettings) error {
		ps.Region = strings.TrimSpace(region)
		return nil
	})
}

// AddCustomModel appends model to the custom models of kind. A model that is
// already offered, built in or custom, is rejected with ErrDuplicateModel.
func (m *Manager) AddCustomModel(ctx context.Context, kind provider.Kind, model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return ErrEmptyModel
	}
	return m.updateProvider(ctx, kind, func(ps *ProviderSettings) error {
		for _, existing := range ps.Models(kind) {
			if existing == model {
				return ErrDuplicateModel
			}
		}
		ps.CustomModels = append(ps.CustomModels, model)
		return nil
	})
}

func (m *Manager) updateProvider(ctx context.Context, kind provider.Kind, fn func(*ProviderSettings) error) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: %s", provider.ErrInvalidKind, kind)
	}
	return m.UpdateModelConfig(ctx, func(c *ModelConfig) error {
		ps := c.For(kind)
		if err := fn(&ps); err != nil {
			return err
		}
		c.Providers[kind] = ps
		return nil
	})
}

// UpdateCredentials applies fn to a copy of the credentials and saves them,
// encrypted when a passphrase is configured.
func (m *Manager) UpdateCredentials(ctx context.Context, fn func(*Credentials)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.creds
	fn(&next)

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if m.key != nil {
		data, err = Encrypt(m.key, data)
		if err != nil {
			return fmt.Errorf("failed to encrypt credentials: %w", err)
		}
	}
	if err := m.store.Put(ctx, KeyCredentials, data); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	m.creds = next
	m.logger.Info(ctx, "credentials saved", map[string]interface{}{
		"encrypted":   m.key != nil,
		"openai_key":  logger.Redact(next.OpenAIKey),
		"groq_key":    logger.Redact(next.GroqKey),
		"jira_domain": next.Jira.Domain,
	})
	return nil
}

// ProviderConfig resolves the provider configuration for kind, or for the
// selected provider when kind is empty.
func (m *Manager) ProviderConfig(kind provider.Kind) (provider.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if kind == "" {
		kind = m.models.Provider
	}
	if !kind.IsValid() {
		return provider.Config{}, fmt.Errorf("%w: %s", provider.ErrInvalidKind, kind)
	}

	ps := m.models.For(kind)
	return provider.Config{
		Kind:    kind,
		Model:   ps.Model,
		BaseURL: ps.BaseURL,
		APIKey:  m.creds.APIKey(kind),
		Region:  ps.Region,
	}, nil
}

// TrackerConfig returns the issue tracker settings.
func (m *Manager) TrackerConfig() issuetracker.TrackerConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds.Trackers()
}
