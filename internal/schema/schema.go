// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package schema

import "fmt"

// Converter is implemented by every value that knows how to represent itself
// in the document. The returned value must be encodable as JSON and YAML.
type Converter interface {
	ToSchema(sc Scope) (any, error)
}

// Table names one of the document registries.
type Table string

const (
	ContextTable Table = "contexts"
	TargetTable  Table = "targets"
	BuildTable   Table = "builds"
	FlagTable    Table = "flags"
)

// Schema is the serializable graph document produced by ConvertRoot.
//
// A Schema belongs to a single conversion and must not be shared between
// goroutines while that conversion is running.
type Schema struct {
	Contexts map[string]any `json:"contexts" yaml:"contexts"`
	Targets  map[string]any `json:"targets" yaml:"targets"`
	Builds   map[string]any `json:"builds" yaml:"builds"`
	Flags    map[string]any `json:"flags" yaml:"flags"`
	Root     any            `json:"root" yaml:"root"`

	// pending tracks registry entries whose conversion has started but not
	// finished, so a cycle through the registries terminates.
	pending map[Table]map[string]struct{}
	// visiting holds the values on the current conversion path.
	visiting map[any]struct{}
}

// New creates an empty document with all registries initialized.
func New() *Schema {
	return &Schema{
		Contexts: make(map[string]any),
		Targets:  make(map[string]any),
		Builds:   make(map[string]any),
		Flags:    make(map[string]any),
		pending:  make(map[Table]map[string]struct{}),
		visiting: make(map[any]struct{}),
	}
}

// ConvertRoot converts v into a fresh document and stores the result as the
// document root. Conversion starts in the Unknown mode.
//
// The document is all-or-nothing: if v or anything nested in it fails to
// convert, ConvertRoot returns the error untouched and no document.
func ConvertRoot(v Converter) (*Schema, error) {
	if isNil(v) {
		return nil, ErrNilRoot
	}

	s := New()
	root, err := v.ToSchema(s.Scope())
	if err != nil {
		return nil, err
	}

	s.Root = root
	s.pending = nil
	s.visiting = nil
	return s, nil
}

// Scope returns a conversion scope over s in the Unknown mode.
func (s *Schema) Scope() Scope {
	return Scope{schema: s, mode: Unknown}
}

// Registry returns the registry named by t.
func (s *Schema) Registry(t Table) map[string]any {
	switch t {
	case ContextTable:
		return s.Contexts
	case TargetTable:
		return s.Targets
	case BuildTable:
		return s.Builds
	case FlagTable:
		return s.Flags
	default:
		panic(fmt.Sprintf("schema: unknown registry table %q", string(t)))
	}
}

// register stores the value produced by fn under id in table t, unless the
// entry already exists or is being produced further up the call stack.
func (s *Schema) register(t Table, id string, fn func(Scope) (any, error)) error {
	reg := s.Registry(t)
	if _, done := reg[id]; done {
		return nil
	}

	if s.pending == nil {
		s.pending = make(map[Table]map[string]struct{})
	}
	inflight := s.pending[t]
	if inflight == nil {
		inflight = make(map[string]struct{})
		s.pending[t] = inflight
	}
	if _, busy := inflight[id]; busy {
		return nil
	}

	inflight[id] = struct{}{}
	defer delete(inflight, id)

	// Registry entries are position independent: they are always converted
	// outside of any field group.
	v, err := fn(s.Scope())
	if err != nil {
		return err
	}
	reg[id] = v
	return nil
}
