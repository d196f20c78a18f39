package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hairizuanbinnoorazman/testcase-generator/logger"
	"github.com/hairizuanbinnoorazman/testcase-generator/settings"
)

// app holds the dependencies shared by the commands that touch settings.
type app struct {
	logger   logger.Logger
	store    *settings.FileStore
	settings *settings.Manager
}

func newApp(ctx context.Context) (*app, error) {
	log := logger.NewLogrusLoggerWithOutput(getLogLevel(), logger.FormatText, os.Stderr)

	store, err := settings.NewFileStore(getSettingsDir())
	if err != nil {
		return nil, err
	}

	manager := settings.NewManager(store, log, settings.WithPassphrase(getPassphrase()))
	if err := manager.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	return &app{
		logger:   log,
		store:    store,
		settings: manager,
	}, nil
}
