package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hairizuanbinnoorazman/testcase-generator/generation"
	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"github.com/hairizuanbinnoorazman/testcase-generator/provider"
	"github.com/hairizuanbinnoorazman/testcase-generator/scriptgen"
	"github.com/hairizuanbinnoorazman/testcase-generator/session"
	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
)

// Generator produces test cases for a requirement.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) ([]testcase.TestCase, error)
}

// TestCaseHandler handles generation and retrieval of test cases.
type TestCaseHandler struct {
	sessions  *session.Manager
	generator Generator
	logger    logger.Logger
}

// NewTestCaseHandler creates a new test case handler.
func NewTestCaseHandler(sessions *session.Manager, generator Generator, log logger.Logger) *TestCaseHandler {
	return &TestCaseHandler{
		sessions:  sessions,
		generator: generator,
		logger:    log,
	}
}

// GenerateRequest is the body of a generation request.
type GenerateRequest struct {
	Requirement string `json:"requirement"`
	Provider    string `json:"provider,omitempty"`
}

// GenerateResponse carries the generated cases.
type GenerateResponse struct {
	TestCases []testcase.TestCase `json:"testCases"`
}

// Generate runs one generation with the workspace's customization and
// template. On success the cases replace the workspace's previous set; on
// failure the previous set is kept.
func (h *TestCaseHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ws, ok := loadWorkspace(w, r, h.sessions)
	if !ok {
		return
	}

	var req GenerateRequest
	if err := parseJSON(w, r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var kind provider.Kind
	if req.Provider != "" {
		parsed, err := provider.ParseKind(req.Provider)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		kind = parsed
	}

	cases, err := h.generator.Generate(r.Context(), generation.Request{
		Requirement:   req.Requirement,
		Template:      ws.Template,
		Customization: ws.Customization,
		Provider:      kind,
	})
	if err != nil {
		status := http.StatusBadGateway
		if generation.IsUserError(err) {
			status = http.StatusBadRequest
		} else if errors.Is(err, context.Canceled) {
			status = http.StatusRequestTimeout
		}
		h.logger.Warn(r.Context(), "generation failed", map[string]interface{}{
			"error":        err.Error(),
			"workspace_id": ws.ID,
			"status":       status,
		})
		respondError(w, status, generation.UserMessage(err))
		return
	}

	if _, err := h.sessions.Update(ws.ID, func(ws *session.Workspace) error {
		ws.TestCases = cases
		return nil
	}); err != nil {
		respondWorkspaceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, GenerateResponse{TestCases: cases})
}

// List returns the workspace's current test cases.
func (h *TestCaseHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, ok := loadWorkspace(w, r, h.sessions)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, ListResponse{Items: ws.TestCases, Total: len(ws.TestCases)})
}

// Script returns the pytest skeleton of one test case.
func (h *TestCaseHandler) Script(w http.ResponseWriter, r *http.Request) {
	ws, ok := loadWorkspace(w, r, h.sessions)
	if !ok {
		return
	}

	tc, err := testcase.Find(ws.TestCases, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, "test case not found")
		return
	}

	respondJSON(w, http.StatusOK, scriptgen.Convert(tc))
}
