package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"github.com/hairizuanbinnoorazman/testcase-generator/provider"
	"github.com/hairizuanbinnoorazman/testcase-generator/settings"
)

// SettingsHandler serves the model configuration and credentials.
type SettingsHandler struct {
	manager *settings.Manager
	logger  logger.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(manager *settings.Manager, log logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		manager: manager,
		logger:  log,
	}
}

// ModelsResponse is the model configuration plus the models offered for
// every provider.
type ModelsResponse struct {
	settings.ModelConfig
	Available map[provider.Kind][]string `json:"available"`
}

func (h *SettingsHandler) modelsResponse() ModelsResponse {
	cfg := h.manager.ModelConfig()
	available := make(map[provider.Kind][]string, len(provider.Kinds))
	for _, kind := range provider.Kinds {
		available[kind] = cfg.For(kind).Models(kind)
	}
	return ModelsResponse{ModelConfig: cfg, Available: available}
}

func respondSettingsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settings.ErrDuplicateModel):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, provider.ErrInvalidKind),
		errors.Is(err, settings.ErrEmptyModel),
		errors.Is(err, settings.ErrInvalidBaseURL):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "failed to save settings")
	}
}

// GetModels returns the model configuration.
func (h *SettingsHandler) GetModels(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.modelsResponse())
}

// UpdateModels replaces the model configuration. Providers left out of the
// body keep their defaults.
func (h *SettingsHandler) UpdateModels(w http.ResponseWriter, r *http.Request) {
	var req settings.ModelConfig
	if err := parseJSON(w, r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.manager.UpdateModelConfig(r.Context(), func(c *settings.ModelConfig) error {
		if req.Provider != "" {
			c.Provider = req.Provider
		}
		for kind, ps := range req.Providers {
			if ps.CustomModels == nil {
				ps.CustomModels = c.For(kind).CustomModels
			}
			c.Providers[kind] = ps
		}
		return nil
	})
	if err != nil {
		respondSettingsError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, h.modelsResponse())
}

// CustomModelRequest is the body of a custom model addition.
type CustomModelRequest struct {
	Model string `json:"model"`
}

// AddCustomModel appends a custom model to a provider's list.
func (h *SettingsHandler) AddCustomModel(w http.ResponseWriter, r *http.Request) {
	kind, err := provider.ParseKind(mux.Vars(r)["provider"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req CustomModelRequest
	if err := parseJSON(w, r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.manager.AddCustomModel(r.Context(), kind, req.Model); err != nil {
		respondSettingsError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, h.modelsResponse())
}

// GetCredentials returns the credentials with every secret masked.
func (h *SettingsHandler) GetCredentials(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.manager.Credentials().Masked())
}

// UpdateCredentials saves the credentials. A secret sent back in its masked
// form keeps the stored value.
func (h *SettingsHandler) UpdateCredentials(w http.ResponseWriter, r *http.Request) {
	var req settings.Credentials
	if err := parseJSON(w, r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.manager.UpdateCredentials(r.Context(), func(c *settings.Credentials) {
		next := req
		next.OpenAIKey = keepMasked(req.OpenAIKey, c.OpenAIKey)
		next.GroqKey = keepMasked(req.GroqKey, c.GroqKey)
		next.Jira.APIToken = keepMasked(req.Jira.APIToken, c.Jira.APIToken)
		next.GitHub.Token = keepMasked(req.GitHub.Token, c.GitHub.Token)
		*c = next
	})
	if err != nil {
		h.logger.Error(r.Context(), "failed to save credentials", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to save credentials")
		return
	}

	respondJSON(w, http.StatusOK, h.manager.Credentials().Masked())
}

func keepMasked(submitted, stored string) string {
	if stored != "" && submitted == logger.Redact(stored) {
		return stored
	}
	return submitted
}
