package handlers

import (
	"net/http"
	"testing"

	"github.com/hairizuanbinnoorazman/testcase-generator/issuetracker"
	"github.com/hairizuanbinnoorazman/testcase-generator/provider"
	"github.com/hairizuanbinnoorazman/testcase-generator/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_Models(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/api/v1/settings/models", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var models ModelsResponse
	decode(t, resp, &models)
	assert.Equal(t, provider.KindOpenAI, models.Provider)
	assert.Equal(t, settings.BuiltinModels(provider.KindGroq), models.Available[provider.KindGroq])

	t.Run("add custom model", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/api/v1/settings/models/ollama/custom", CustomModelRequest{Model: "phi3"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var models ModelsResponse
		decode(t, resp, &models)
		assert.Contains(t, models.Available[provider.KindOllama], "phi3")
	})

	t.Run("duplicate custom model", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/api/v1/settings/models/ollama/custom", CustomModelRequest{Model: "phi3"})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, settings.ErrDuplicateModel.Error(), errorMessage(t, resp))
	})

	t.Run("unknown provider", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/api/v1/settings/models/gemini/custom", CustomModelRequest{Model: "x"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("select provider and model", func(t *testing.T) {
		resp := srv.do(t, http.MethodPut, "/api/v1/settings/models", settings.ModelConfig{
			Provider: provider.KindOllama,
			Providers: map[provider.Kind]settings.ProviderSettings{
				provider.KindOllama: {Model: "phi3", BaseURL: "http://gpu-box:11434"},
			},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		cfg, err := srv.settings.ProviderConfig("")
		require.NoError(t, err)
		assert.Equal(t, provider.KindOllama, cfg.Kind)
		assert.Equal(t, "phi3", cfg.Model)
		assert.Equal(t, "http://gpu-box:11434", cfg.BaseURL)
		assert.Contains(t, srv.settings.ModelConfig().For(provider.KindOllama).CustomModels, "phi3",
			"custom models survive an update that omits them")
	})

	t.Run("invalid base URL", func(t *testing.T) {
		resp := srv.do(t, http.MethodPut, "/api/v1/settings/models", settings.ModelConfig{
			Providers: map[provider.Kind]settings.ProviderSettings{
				provider.KindOllama: {Model: "phi3", BaseURL: "gpu-box:11434"},
			},
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		cfg, err := srv.settings.ProviderConfig(provider.KindOllama)
		require.NoError(t, err)
		assert.Equal(t, "http://gpu-box:11434", cfg.BaseURL, "invalid update is not applied")
	})
}

func TestSettings_Credentials(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodPut, "/api/v1/settings/credentials", settings.Credentials{
		GroqKey: "gsk_abcdefghijklmnop",
		Jira: issuetracker.JiraConfig{
			Domain:   "example.atlassian.net",
			Email:    "qa@example.com",
			APIToken: "jira-token-123456",
			Project:  "QA",
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var masked settings.Credentials
	decode(t, resp, &masked)
	assert.Equal(t, "gsk_...mnop", masked.GroqKey)
	assert.Equal(t, "jira...3456", masked.Jira.APIToken)
	assert.Equal(t, "example.atlassian.net", masked.Jira.Domain)

	resp = srv.do(t, http.MethodGet, "/api/v1/settings/credentials", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched settings.Credentials
	decode(t, resp, &fetched)
	assert.Equal(t, masked, fetched)

	// Sending the masked form back keeps the stored secrets.
	fetched.Jira.Project = "OPS"
	resp = srv.do(t, http.MethodPut, "/api/v1/settings/credentials", fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	creds := srv.settings.Credentials()
	assert.Equal(t, "gsk_abcdefghijklmnop", creds.GroqKey)
	assert.Equal(t, "jira-token-123456", creds.Jira.APIToken)
	assert.Equal(t, "OPS", creds.Jira.Project)
	assert.Equal(t, "OPS", srv.settings.TrackerConfig().Jira.Project)

	for _, entry := range srv.log.Entries() {
		for _, v := range entry.Fields {
			assert.NotEqual(t, "gsk_abcdefghijklmnop", v, "secrets are never logged")
		}
	}
}
