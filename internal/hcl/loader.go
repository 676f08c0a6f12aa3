// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/buildgrid/internal/build"
	"github.com/specialistvlad/buildgrid/internal/ctxlog"
	"github.com/specialistvlad/buildgrid/internal/fsutil"
)

// Loader reads build files.
type Loader struct{}

// NewLoader creates a new HCL build file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes the top-level blocks of a build file.
type fileRoot struct {
	Flags   []*flagBlock   `hcl:"flag,block"`
	Targets []*targetBlock `hcl:"target,block"`
}

type flagBlock struct {
	Name        string         `hcl:"name,label"`
	Default     hcl.Expression `hcl:"default,optional"`
	Description string         `hcl:"description,optional"`
}

type targetBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// pendingTarget is a target whose body is decoded once every file has been
// read, so that targets may reference each other regardless of order.
type pendingTarget struct {
	target *build.Target
	block  *targetBlock
	file   string
}

// Load reads every .hcl file found under paths and returns one context per
// file, in path order. Target and flag names share one namespace across all
// files.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*build.Context, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(paths, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to find build files: %w", err)
	}
	logger.Debug("Discovered build files.", "count", len(files))

	parser := hclparse.NewParser()
	targets := make(map[string]*build.Target)
	flags := make(map[string]*build.Flag)
	var contexts []*build.Context
	var pending []pendingTarget

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse build file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode build file %s: %w", file, diags)
		}

		bctx := &build.Context{Name: file, Path: file}

		for _, fb := range root.Flags {
			if _, exists := flags[fb.Name]; exists {
				return nil, fmt.Errorf("failed to decode build file %s: duplicate flag %q", file, fb.Name)
			}
			f, diags := decodeFlag(fb)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode flag %q in %s: %w", fb.Name, file, diags)
			}
			flags[f.Name] = f
			bctx.Flags = append(bctx.Flags, f)
		}

		for _, tb := range root.Targets {
			if _, exists := targets[tb.Name]; exists {
				return nil, fmt.Errorf("failed to decode build file %s: duplicate target %q", file, tb.Name)
			}
			t := &build.Target{Name: tb.Name, Context: bctx.Name}
			targets[t.Name] = t
			bctx.Targets = append(bctx.Targets, t)
			pending = append(pending, pendingTarget{target: t, block: tb, file: file})
		}

		contexts = append(contexts, bctx)
	}

	evalCtx := newEvalContext(targets, flags)
	for _, p := range pending {
		spec, diags := decodeTargetBody(p.block.Body, evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode target %q in %s: %w", p.target.Name, p.file, diags)
		}
		p.target.Spec = spec
		logger.Debug("Decoded target.", "target", p.target.Name, "id", p.target.ID(), "file", p.file)
	}

	// Registries are keyed by ID, so two targets sharing one would collapse
	// into a single entry.
	ids := make(map[string]string, len(pending))
	for _, p := range pending {
		id := p.target.ID()
		if other, exists := ids[id]; exists {
			return nil, fmt.Errorf("failed to decode target %q in %s: duplicate target id %q, already used by target %q", p.target.Name, p.file, id, other)
		}
		ids[id] = p.target.Name
	}

	logger.Debug("HCL loading complete.", "contexts", len(contexts), "targets", len(targets), "flags", len(flags))
	return contexts, nil
}

func decodeFlag(fb *flagBlock) (*build.Flag, hcl.Diagnostics) {
	f := &build.Flag{Name: fb.Name, Description: fb.Description}
	if fb.Default == nil {
		return f, nil
	}
	// Defaults must be literal values.
	val, diags := fb.Default.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if !val.IsNull() {
		f.Default = val
	}
	return f, diags
}
