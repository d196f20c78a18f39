package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
)

// Handlers groups everything the router serves.
type Handlers struct {
	Workspace           *WorkspaceHandler
	TestCases           *TestCaseHandler
	Scripts             *ScriptHandler
	Issues              *IssueHandler
	Settings            *SettingsHandler
	OpenAIProxy         http.Handler
	WorkspaceMiddleware *WorkspaceMiddleware
	Logger              logger.Logger
}

// NewRouter registers every route of the API.
func NewRouter(h Handlers) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware(h.Logger))

	router.HandleFunc("/health", HealthHandler).Methods("GET")
	router.Handle("/api/openai", h.OpenAIProxy).Methods("POST")

	// Settings are shared by every workspace.
	settingsRouter := router.PathPrefix("/api/v1/settings").Subrouter()
	settingsRouter.HandleFunc("/models", h.Settings.GetModels).Methods("GET")
	settingsRouter.HandleFunc("/models", h.Settings.UpdateModels).Methods("PUT")
	settingsRouter.HandleFunc("/models/{provider}/custom", h.Settings.AddCustomModel).Methods("POST")
	settingsRouter.HandleFunc("/credentials", h.Settings.GetCredentials).Methods("GET")
	settingsRouter.HandleFunc("/credentials", h.Settings.UpdateCredentials).Methods("PUT")
	settingsRouter.HandleFunc("/trackers/{tracker}/validate", h.Issues.Validate).Methods("POST")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(h.WorkspaceMiddleware.Handler)

	apiRouter.HandleFunc("/workspace", h.Workspace.Get).Methods("GET")
	apiRouter.HandleFunc("/workspace/customization", h.Workspace.UpdateCustomization).Methods("PUT")
	apiRouter.HandleFunc("/workspace/template", h.Workspace.UpdateTemplate).Methods("PUT")
	apiRouter.HandleFunc("/workspace/template", h.Workspace.DeleteTemplate).Methods("DELETE")

	apiRouter.HandleFunc("/testcases/generate", h.TestCases.Generate).Methods("POST")
	apiRouter.HandleFunc("/testcases", h.TestCases.List).Methods("GET")
	apiRouter.HandleFunc("/testcases/{id}/script", h.TestCases.Script).Methods("GET")
	apiRouter.HandleFunc("/testcases/{id}/issues/{tracker}", h.Issues.Create).Methods("POST")

	apiRouter.HandleFunc("/scripts/export", h.Scripts.Export).Methods("POST")
	apiRouter.HandleFunc("/scripts/exports/{fileName}", h.Scripts.Download).Methods("GET")

	return router
}
