// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/specialistvlad/buildgrid/internal/build"
)

// Loader reads build files into contexts.
type Loader interface {
	Load(ctx context.Context, paths ...string) ([]*build.Context, error)
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	loader Loader
}

// NewApp is the constructor for the main application. The document is written
// to outW unless the config names an output file; logs go to logW.
func NewApp(outW, logW io.Writer, cfg *Config, loader Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		loader: loader,
	}
}
