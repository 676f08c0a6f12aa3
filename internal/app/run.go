// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/buildgrid/internal/build"
	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/schema"
	"gopkg.in/yaml.v3"
)

// Run loads the configured build files, converts them and writes the
// resulting document.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	contexts, err := a.loader.Load(ctx, a.config.BuildPath)
	if err != nil {
		return fmt.Errorf("failed to load build files: %w", err)
	}
	if len(contexts) == 0 {
		return fmt.Errorf("no build files found in %s", a.config.BuildPath)
	}
	a.logger.Debug("Build files loaded.", "contexts", len(contexts))

	root, err := a.selectRoot(contexts)
	if err != nil {
		return err
	}

	doc, err := schema.ConvertRoot(root)
	if err != nil {
		return fmt.Errorf("failed to convert build graph: %w", err)
	}
	a.logger.Info("Build graph converted.",
		"contexts", len(doc.Contexts),
		"targets", len(doc.Targets),
		"builds", len(doc.Builds),
		"flags", len(doc.Flags),
	)

	if err := a.write(doc); err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// selectRoot picks what gets converted: the requested target, or every
// loaded context.
func (a *App) selectRoot(contexts []*build.Context) (schema.Converter, error) {
	ws := &build.Workspace{Contexts: contexts}
	if a.config.Target == "" {
		return ws, nil
	}

	t := ws.Lookup(a.config.Target)
	if t == nil {
		return nil, fmt.Errorf("target %q is not declared in %s", a.config.Target, a.config.BuildPath)
	}
	a.logger.Debug("Converting a single target.", "target", t.Name, "id", t.ID())
	return t, nil
}

// write sends the document to stdout, or to the output file. The document is
// encoded in full first, so a failed encode writes nothing.
func (a *App) write(doc *schema.Schema) error {
	var buf bytes.Buffer
	if err := encode(&buf, doc, a.config.Format); err != nil {
		return err
	}

	if a.config.OutputPath == "" {
		if _, err := buf.WriteTo(a.outW); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(a.config.OutputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", a.config.OutputPath, err)
	}
	a.logger.Info("Document written.", "path", a.config.OutputPath, "format", a.config.Format)
	return nil
}

func encode(w io.Writer, doc *schema.Schema, format string) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}
