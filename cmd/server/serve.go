package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hairizuanbinnoorazman/testcase-generator/cmd/server/handlers"
	"github.com/hairizuanbinnoorazman/testcase-generator/database"
	"github.com/hairizuanbinnoorazman/testcase-generator/generation"
	"github.com/hairizuanbinnoorazman/testcase-generator/issuetracker/trackers"
	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"github.com/hairizuanbinnoorazman/testcase-generator/provider"
	"github.com/hairizuanbinnoorazman/testcase-generator/scriptgen"
	"github.com/hairizuanbinnoorazman/testcase-generator/session"
	"github.com/hairizuanbinnoorazman/testcase-generator/settings"
	"github.com/hairizuanbinnoorazman/testcase-generator/storage"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// openSettingsStore returns the settings store selected by cfg and a function
// releasing its resources.
func openSettingsStore(cfg *Config, log logger.Logger) (settings.Store, func(), error) {
	if strings.ToLower(cfg.Settings.Backend) != "database" {
		store, err := settings.NewFileStore(cfg.Settings.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open settings directory: %w", err)
		}
		return store, func() {}, nil
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := database.Migrate(db, cfg.Database.Driver, &settings.Setting{}); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return settings.NewGormStore(db, log), func() { sqlDB.Close() }, nil
}

// newProviderFactory builds providers for server-side generation. The OpenAI
// variant goes through this server's own proxy unless a base URL is set.
func newProviderFactory(host string, port int) generation.ProviderFactory {
	proxyURL := localBaseURL(host, port) + provider.ProxyPath
	return func(cfg provider.Config) (provider.Provider, error) {
		if cfg.Kind == provider.KindOpenAI && cfg.BaseURL == "" {
			return provider.New(cfg, provider.WithEndpoint(proxyURL))
		}
		return provider.New(cfg)
	}
}

// localBaseURL returns the address this server can reach itself on.
// Wildcard listen addresses map to the loopback interface.
func localBaseURL(host string, port int) string {
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewLogrusLoggerWithOutput(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	log.Info(ctx, "starting server", map[string]interface{}{
		"version": Version,
		"commit":  Commit,
		"date":    BuildDate,
	})

	store, closeStore, err := openSettingsStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	settingsManager := settings.NewManager(store, log, settings.WithPassphrase(cfg.Settings.Passphrase))
	if err := settingsManager.Load(ctx); err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	log.Info(ctx, "settings loaded", map[string]interface{}{
		"backend":  cfg.Settings.Backend,
		"provider": string(settingsManager.ModelConfig().Provider),
	})

	blobStorage, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	sessionManager := session.NewManager(cfg.Session.Duration, log)
	sessionManager.StartCleanup(cfg.Session.CleanupInterval)
	defer sessionManager.StopCleanup()

	log.Info(ctx, "workspace manager initialized", map[string]interface{}{
		"duration": cfg.Session.Duration.String(),
	})

	generator := generation.NewService(settingsManager, newProviderFactory(cfg.Server.Host, cfg.Server.Port), log)
	exporter := scriptgen.NewExporter(blobStorage, log)
	proxy := handlers.NewOpenAIProxy(
		cfg.OpenAI.Upstream,
		cfg.OpenAI.APIKey,
		&http.Client{Timeout: cfg.Server.WriteTimeout},
		log,
	)
	workspaceMiddleware := handlers.NewWorkspaceMiddleware(
		sessionManager,
		cfg.Session.CookieSecret,
		cfg.Session.CookieName,
		cfg.Session.Secure,
		cfg.Session.Duration,
		log,
	)

	router := handlers.NewRouter(handlers.Handlers{
		Workspace:           handlers.NewWorkspaceHandler(sessionManager, log),
		TestCases:           handlers.NewTestCaseHandler(sessionManager, generator, log),
		Scripts:             handlers.NewScriptHandler(sessionManager, exporter, log),
		Issues:              handlers.NewIssueHandler(sessionManager, settingsManager, trackers.Factory{}, log),
		Settings:            handlers.NewSettingsHandler(settingsManager, log),
		OpenAIProxy:         proxy,
		WorkspaceMiddleware: workspaceMiddleware,
		Logger:              log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info(ctx, "server listening", map[string]interface{}{
			"address": addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down server", nil)

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info(ctx, "server stopped", nil)
	return nil
}
