// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Spec, the declaration of one target's build action.
//
// Why three separate field groups?
//
// Inputs are consumed by the action, outputs are produced by it and in/out
// values are both. A value such as a File renders differently depending on the
// group it sits in, so the groups are kept apart all the way into the document
// instead of being flattened into one argument map.
package build

import (
	"maps"
	"slices"
	"sync"

	"github.com/specialistvlad/buildgrid/internal/command"
	"github.com/specialistvlad/buildgrid/internal/schema"
)

// Args is the initial argument bundle for NewSpec.
type Args struct {
	Key   []string
	Inp   map[string]any
	Out   map[string]any
	InOut map[string]any
	// Ready holds preconditions that must hold before the action may run.
	// A nil Ready means the spec declares none.
	Ready map[string]any
}

// Spec describes one target's inputs, outputs, in/out values, readiness
// preconditions and command.
//
// The builder methods may be called from several goroutines; they are
// serialized against each other and against conversion.
type Spec struct {
	mu sync.RWMutex

	key     []string
	in      map[string]any
	out     map[string]any
	inout   map[string]any
	ready   map[string]any
	command *command.Command
	runtime string
}

// NewSpec creates a spec from args. The maps in args are copied.
func NewSpec(args Args) *Spec {
	s := &Spec{
		key:   slices.Clone(args.Key),
		in:    cloneFields(args.Inp),
		out:   cloneFields(args.Out),
		inout: cloneFields(args.InOut),
	}
	if s.key == nil {
		s.key = []string{}
	}
	if args.Ready != nil {
		s.ready = maps.Clone(args.Ready)
	}
	return s
}

// In merges fields into the inputs. Later values win per field name.
func (s *Spec) In(fields map[string]any) *Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.in, fields)
	return s
}

// Out merges fields into the outputs. Later values win per field name.
func (s *Spec) Out(fields map[string]any) *Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.out, fields)
	return s
}

// InOut merges fields into the in/out values. Later values win per field name.
func (s *Spec) InOut(fields map[string]any) *Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.inout, fields)
	return s
}

// Ready merges fields into the readiness preconditions.
func (s *Spec) Ready(fields map[string]any) *Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready == nil {
		s.ready = make(map[string]any, len(fields))
	}
	maps.Copy(s.ready, fields)
	return s
}

// Runtime sets the path of the module that executes the command.
func (s *Spec) Runtime(path string) *Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runtime = path
	return s
}

// Command sets the spec's command to the one built by fn. fn receives the
// command constructors and deferred references to this spec's inputs and
// outputs.
func (s *Spec) Command(fn func(x command.Invocation) *command.Command) *Spec {
	c := fn(command.NewInvocation())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.command = c
	return s
}

// Key returns a copy of the spec's key.
func (s *Spec) Key() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.key)
}

// HasCommand reports whether a command was set.
func (s *Spec) HasCommand() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.command != nil
}

// ToSchema converts the spec into
//
//	{key, inp, out, inout, ready[, command][, runtime]}
//
// Inputs are converted in the Input mode. Outputs, in/out values and readiness
// preconditions are all converted in the Output mode. The command is converted
// in the caller's scope, so a spec nested inside another field group renders
// its command the way that group would. Falsy field values are left out.
func (s *Spec) ToSchema(sc schema.Scope) (any, error) {
	leave, err := sc.Visit(s)
	if err != nil {
		return nil, err
	}
	defer leave()

	s.mu.RLock()
	defer s.mu.RUnlock()

	inp, err := convertFields(sc.WithMode(schema.Input), s.in)
	if err != nil {
		return nil, err
	}

	output := sc.WithMode(schema.Output)
	out, err := convertFields(output, s.out)
	if err != nil {
		return nil, err
	}
	inout, err := convertFields(output, s.inout)
	if err != nil {
		return nil, err
	}
	ready, err := convertFields(output, s.ready)
	if err != nil {
		return nil, err
	}

	obj := map[string]any{
		"key":   slices.Clone(s.key),
		"inp":   inp,
		"out":   out,
		"inout": inout,
		"ready": ready,
	}

	if s.command != nil {
		c, err := sc.Convert(s.command)
		if err != nil {
			return nil, err
		}
		obj["command"] = c
	}
	if s.runtime != "" {
		obj["runtime"] = s.runtime
	}

	return obj, nil
}

// convertFields converts every truthy value of fields in sc.
func convertFields(sc schema.Scope, fields map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for name, v := range fields {
		if schema.IsFalsy(v) {
			continue
		}
		c, err := sc.Convert(v)
		if err != nil {
			return nil, err
		}
		out[name] = c
	}
	return out, nil
}

func cloneFields(fields map[string]any) map[string]any {
	if fields == nil {
		return make(map[string]any)
	}
	return maps.Clone(fields)
}
