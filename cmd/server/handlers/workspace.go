package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"github.com/hairizuanbinnoorazman/testcase-generator/prompt"
	"github.com/hairizuanbinnoorazman/testcase-generator/session"
	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
)

// maxTemplateBytes bounds a template upload. Four bytes per rune covers any
// UTF-8 template that passes the rune limit.
const maxTemplateBytes = prompt.MaxTemplateLength*4 + 64<<10

// WorkspaceHandler serves the customization options and imported template
// of the caller's workspace.
type WorkspaceHandler struct {
	sessions *session.Manager
	logger   logger.Logger
}

// NewWorkspaceHandler creates a new workspace handler.
func NewWorkspaceHandler(sessions *session.Manager, log logger.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		sessions: sessions,
		logger:   log,
	}
}

// loadWorkspace fetches the workspace bound to the request, writing an error
// response when it cannot.
func loadWorkspace(w http.ResponseWriter, r *http.Request, sessions *session.Manager) (*session.Workspace, bool) {
	id, ok := GetWorkspaceID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "workspace required")
		return nil, false
	}

	ws, err := sessions.Get(id)
	if err != nil {
		respondWorkspaceError(w, err)
		return nil, false
	}
	return ws, true
}

func respondWorkspaceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrWorkspaceExpired):
		respondError(w, http.StatusGone, "workspace expired")
	case errors.Is(err, session.ErrWorkspaceNotFound):
		respondError(w, http.StatusNotFound, "workspace not found")
	default:
		respondError(w, http.StatusInternalServerError, "failed to load workspace")
	}
}

// Get returns the caller's workspace.
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, ok := loadWorkspace(w, r, h.sessions)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, ws)
}

// UpdateCustomization replaces the customization options.
func (h *WorkspaceHandler) UpdateCustomization(w http.ResponseWriter, r *http.Request) {
	id, ok := GetWorkspaceID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "workspace required")
		return
	}

	var req testcase.Customization
	if err := parseJSON(w, r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ws, err := h.sessions.Update(id, func(ws *session.Workspace) error {
		ws.Customization = req
		return nil
	})
	if err != nil {
		respondWorkspaceError(w, err)
		return
	}

	h.logger.Info(r.Context(), "customization updated", map[string]interface{}{
		"workspace_id": id,
		"coverage":     req.Coverage,
		"environment":  string(req.Environment),
		"priority":     string(req.Priority),
		"complexity":   string(req.Complexity),
	})

	respondJSON(w, http.StatusOK, ws.Customization)
}

// TemplateRequest is the JSON form of a template import.
type TemplateRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// UpdateTemplate imports a template, either as a multipart "file" upload or
// as JSON. The full file content becomes the template.
func (h *WorkspaceHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := GetWorkspaceID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "workspace required")
		return
	}

	req, err := h.readTemplate(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !utf8.ValidString(req.Content) {
		respondError(w, http.StatusBadRequest, "template must be UTF-8 text")
		return
	}
	if err := prompt.ValidateTemplate(req.Content); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ws, err := h.sessions.Update(id, func(ws *session.Workspace) error {
		ws.Template = req.Content
		ws.TemplateName = req.Name
		return nil
	})
	if err != nil {
		respondWorkspaceError(w, err)
		return
	}

	h.logger.Info(r.Context(), "template imported", map[string]interface{}{
		"workspace_id":  id,
		"template_name": req.Name,
		"length":        utf8.RuneCountInString(req.Content),
	})

	respondJSON(w, http.StatusOK, ws)
}

func (h *WorkspaceHandler) readTemplate(w http.ResponseWriter, r *http.Request) (TemplateRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTemplateBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return TemplateRequest{}, errors.New("file is required")
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			return TemplateRequest{}, errors.New("failed to read template file")
		}
		return TemplateRequest{
			Name:    filepath.Base(header.Filename),
			Content: string(content),
		}, nil
	}

	var req TemplateRequest
	if err := parseJSON(w, r, &req, h.logger); err != nil {
		return TemplateRequest{}, errors.New("invalid request body")
	}
	return req, nil
}

// DeleteTemplate clears the imported template.
func (h *WorkspaceHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := GetWorkspaceID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "workspace required")
		return
	}

	if _, err := h.sessions.Update(id, func(ws *session.Workspace) error {
		ws.Template = ""
		ws.TemplateName = ""
		return nil
	}); err != nil {
		respondWorkspaceError(w, err)
		return
	}

	respondSuccess(w, "template removed")
}
