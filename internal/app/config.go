// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package app

import (
	"errors"
	"fmt"
)

// Output formats for the graph document.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	BuildPath  string // .hcl file or directory of .hcl files
	Target     string // optional; converts only this target when set
	Format     string
	OutputPath string // optional; stdout when empty

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.BuildPath == "" {
		return nil, errors.New("BuildPath is a required configuration field and cannot be empty")
	}

	switch cfg.Format {
	case "":
		cfg.Format = FormatJSON
	case FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("invalid format %q: must be %q or %q", cfg.Format, FormatJSON, FormatYAML)
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return &cfg, nil
}
