// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the entities that populate the document registries.
//
// Why registries instead of nesting?
//
// Targets reference each other freely, so the graph they form is not a tree.
// Each target, build, flag and context is written once into a flat registry
// keyed by its identifier, and every place that mentions it holds only a small
// reference object. The build engine resolves those references itself.
package build

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/buildgrid/internal/schema"
)

// ErrUnnamed is returned when an entity without an identifier is converted.
var ErrUnnamed = errors.New("build: entity has no name")

// File is a path whose rendering depends on the field group it is used in:
// a consumed file under Input, a produced artifact under Output and the bare
// path anywhere else.
type File struct {
	Path string
}

// NewFile returns a File for path.
func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) ToSchema(sc schema.Scope) (any, error) {
	switch {
	case sc.IsInputMode():
		return map[string]any{"file": f.Path}, nil
	case sc.IsOutputMode():
		return map[string]any{"output": f.Path}, nil
	default:
		return f.Path, nil
	}
}

// Flag is a named build option.
type Flag struct {
	Name        string
	Default     any
	Description string
}

func (f *Flag) ToSchema(sc schema.Scope) (any, error) {
	if f.Name == "" {
		return nil, fmt.Errorf("%w: flag", ErrUnnamed)
	}

	err := sc.Register(schema.FlagTable, f.Name, func(inner schema.Scope) (any, error) {
		entry := map[string]any{"name": f.Name}
		if !schema.IsFalsy(f.Default) {
			v, err := inner.Convert(f.Default)
			if err != nil {
				return nil, err
			}
			entry["default"] = v
		}
		if f.Description != "" {
			entry["description"] = f.Description
		}
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"flag": f.Name}, nil
}

// Target binds a name to the spec that builds it.
type Target struct {
	Name string
	// Context is the name of the context the target was declared in.
	Context string
	Spec    *Spec
}

// ID returns the registry identifier of the target: the spec key joined with
// ":" or, for a spec without a key, the target name.
func (t *Target) ID() string {
	if t.Spec != nil {
		if key := t.Spec.Key(); len(key) > 0 {
			return strings.Join(key, ":")
		}
	}
	return t.Name
}

func (t *Target) ToSchema(sc schema.Scope) (any, error) {
	id := t.ID()
	if id == "" {
		return nil, fmt.Errorf("%w: target", ErrUnnamed)
	}

	err := sc.Register(schema.TargetTable, id, func(inner schema.Scope) (any, error) {
		entry := map[string]any{"name": t.Name}
		if t.Spec != nil {
			entry["key"] = t.Spec.Key()
			if err := inner.Register(schema.BuildTable, id, t.Spec.ToSchema); err != nil {
				return nil, err
			}
			entry["build"] = id
		}
		if t.Context != "" {
			entry["context"] = t.Context
		}
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"target": id}, nil
}

// Context is one build file: the targets and flags declared in it.
type Context struct {
	Name    string
	Path    string
	Targets []*Target
	Flags   []*Flag
}

// Target returns the target declared in c with the given name or ID.
func (c *Context) Target(name string) *Target {
	for _, t := range c.Targets {
		if t.Name == name || t.ID() == name {
			return t
		}
	}
	return nil
}

func (c *Context) ToSchema(sc schema.Scope) (any, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("%w: context", ErrUnnamed)
	}

	err := sc.Register(schema.ContextTable, c.Name, func(inner schema.Scope) (any, error) {
		targets := make([]any, 0, len(c.Targets))
		for _, t := range c.Targets {
			ref, err := inner.Convert(t)
			if err != nil {
				return nil, err
			}
			targets = append(targets, ref)
		}
		flags := make([]any, 0, len(c.Flags))
		for _, f := range c.Flags {
			ref, err := inner.Convert(f)
			if err != nil {
				return nil, err
			}
			flags = append(flags, ref)
		}

		entry := map[string]any{"targets": targets, "flags": flags}
		if c.Path != "" {
			entry["path"] = c.Path
		}
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"context": c.Name}, nil
}

// Workspace groups every context loaded for one conversion.
type Workspace struct {
	Contexts []*Context
}

// Lookup finds a target by name or ID across all contexts. It returns nil
// when no context declares it.
func (w *Workspace) Lookup(name string) *Target {
	for _, c := range w.Contexts {
		if t := c.Target(name); t != nil {
			return t
		}
	}
	return nil
}

func (w *Workspace) ToSchema(sc schema.Scope) (any, error) {
	refs := make([]any, 0, len(w.Contexts))
	for _, c := range w.Contexts {
		ref, err := sc.Convert(c)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return map[string]any{"contexts": refs}, nil
}
