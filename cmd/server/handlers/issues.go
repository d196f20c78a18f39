package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hairizuanbinnoorazman/testcase-generator/issuetracker"
	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"github.com/hairizuanbinnoorazman/testcase-generator/session"
	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
)

// TrackerSource supplies the current issue tracker settings.
type TrackerSource interface {
	TrackerConfig() issuetracker.TrackerConfig
}

// IssueHandler files test cases in Jira or GitHub.
type IssueHandler struct {
	sessions *session.Manager
	trackers TrackerSource
	factory  issuetracker.ClientFactory
	logger   logger.Logger
}

// NewIssueHandler creates a new issue handler.
func NewIssueHandler(sessions *session.Manager, trackers TrackerSource, factory issuetracker.ClientFactory, log logger.Logger) *IssueHandler {
	return &IssueHandler{
		sessions: sessions,
		trackers: trackers,
		factory:  factory,
		logger:   log,
	}
}

func (h *IssueHandler) client(w http.ResponseWriter, r *http.Request) (issuetracker.Client, issuetracker.ProviderType, bool) {
	tracker := issuetracker.ProviderType(mux.Vars(r)["tracker"])
	if !tracker.IsValid() {
		respondError(w, http.StatusBadRequest, "unknown issue tracker")
		return nil, "", false
	}

	client, err := h.factory.NewClient(tracker, h.trackers.TrackerConfig())
	if err != nil {
		if !errors.Is(err, issuetracker.ErrNotConfigured) {
			h.logger.Error(r.Context(), "failed to create tracker client", map[string]interface{}{
				"error":   err.Error(),
				"tracker": string(tracker),
			})
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, "", false
	}
	return client, tracker, true
}

// Create files one test case of the workspace as an issue.
func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	ws, ok := loadWorkspace(w, r, h.sessions)
	if !ok {
		return
	}

	tc, err := testcase.Find(ws.TestCases, mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, "test case not found")
		return
	}

	client, tracker, ok := h.client(w, r)
	if !ok {
		return
	}

	issue, err := issuetracker.NewExporter(client, tracker, h.logger).Export(r.Context(), *tc)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, issue)
}

// Validate checks the stored credentials of a tracker.
func (h *IssueHandler) Validate(w http.ResponseWriter, r *http.Request) {
	client, tracker, ok := h.client(w, r)
	if !ok {
		return
	}

	if err := client.ValidateConnection(r.Context()); err != nil {
		h.logger.Warn(r.Context(), "tracker connection failed", map[string]interface{}{
			"error":   err.Error(),
			"tracker": string(tracker),
		})
		respondError(w, http.StatusBadGateway, issuetracker.ErrConnectionFailed.Error())
		return
	}

	respondSuccess(w, "connection successful")
}
