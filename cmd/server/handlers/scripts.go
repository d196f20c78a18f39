package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"github.com/hairizuanbinnoorazman/testcase-generator/scriptgen"
	"github.com/hairizuanbinnoorazman/testcase-generator/session"
	"github.com/hairizuanbinnoorazman/testcase-generator/storage"
)

// ScriptHandler exports the workspace's test cases as one pytest file.
type ScriptHandler struct {
	sessions *session.Manager
	exporter *scriptgen.Exporter
	logger   logger.Logger
}

// NewScriptHandler creates a new script export handler.
func NewScriptHandler(sessions *session.Manager, exporter *scriptgen.Exporter, log logger.Logger) *ScriptHandler {
	return &ScriptHandler{
		sessions: sessions,
		exporter: exporter,
		logger:   log,
	}
}

// ExportRequest is the body of an export request.
type ExportRequest struct {
	FileName string `json:"fileName"`
}

// Export stores the concatenated skeletons and streams them back as an
// attachment. An empty body uses the default file name.
func (h *ScriptHandler) Export(w http.ResponseWriter, r *http.Request) {
	ws, ok := loadWorkspace(w, r, h.sessions)
	if !ok {
		return
	}

	var req ExportRequest
	if r.ContentLength != 0 {
		if err := parseJSON(w, r, &req, h.logger); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.exporter.Export(r.Context(), ws.ID, req.FileName, ws.TestCases)
	if err != nil {
		if errors.Is(err, scriptgen.ErrNoTestCases) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to export test cases")
		return
	}

	h.stream(w, r, ws.ID, result.FileName)
}

// Download re-sends a previously exported file.
func (h *ScriptHandler) Download(w http.ResponseWriter, r *http.Request) {
	ws, ok := loadWorkspace(w, r, h.sessions)
	if !ok {
		return
	}

	h.stream(w, r, ws.ID, scriptgen.NormalizeFileName(mux.Vars(r)["fileName"]))
}

func (h *ScriptHandler) stream(w http.ResponseWriter, r *http.Request, prefix, fileName string) {
	rc, err := h.exporter.Open(r.Context(), prefix, fileName)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			respondError(w, http.StatusNotFound, "export not found")
			return
		}
		h.logger.Error(r.Context(), "failed to open export", map[string]interface{}{
			"error":     err.Error(),
			"file_name": fileName,
		})
		respondError(w, http.StatusInternalServerError, "failed to read export")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "text/x-python; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn(r.Context(), "failed to stream export", map[string]interface{}{
			"error":     err.Error(),
			"file_name": fileName,
		})
	}
}
