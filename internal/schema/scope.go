// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package schema

import (
	"fmt"
	"reflect"
)

// Scope is the conversion context handed to Converter.ToSchema. It is a small
// immutable value; deriving a scope in another mode never affects the parent.
type Scope struct {
	schema *Schema
	mode   Mode
}

// Schema returns the document being built.
func (sc Scope) Schema() *Schema {
	return sc.schema
}

// Mode returns the active mode.
func (sc Scope) Mode() Mode {
	return sc.mode
}

// IsInputMode reports whether a spec's consumed values are being converted.
func (sc Scope) IsInputMode() bool {
	return sc.mode == Input
}

// IsOutputMode reports whether a spec's produced values are being converted.
func (sc Scope) IsOutputMode() bool {
	return sc.mode == Output
}

// WithMode returns a scope over the same document in mode m.
// Passing a value that is not one of the declared modes is a programming
// error and panics.
func (sc Scope) WithMode(m Mode) Scope {
	if !m.valid() {
		panic(fmt.Sprintf("schema: invalid mode %s", m))
	}
	return Scope{schema: sc.schema, mode: m}
}

// Convert returns the document representation of v.
//
// nil, including a typed nil pointer, map or slice, converts to nil.
// Converters are asked to convert themselves in this scope, cty values are
// walked into plain Go values, and everything else is returned unchanged.
func (sc Scope) Convert(v any) (any, error) {
	if isNil(v) {
		return nil, nil
	}

	switch x := v.(type) {
	case Converter:
		return x.ToSchema(sc)
	}

	if cv, ok := asCty(v); ok {
		return sc.convertCty(cv)
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
	return v, nil
}

// isNil reports whether v is nil or a typed nil reference.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Register adds an entry to one of the document registries. fn produces the
// entry and receives a scope in the Unknown mode. Each id is produced at most
// once per document; a Register call for an id whose fn is still running
// returns immediately, which lets entities reference each other in cycles.
func (sc Scope) Register(t Table, id string, fn func(Scope) (any, error)) error {
	if sc.schema == nil {
		panic("schema: Register called on a scope without a document")
	}
	return sc.schema.register(t, id, fn)
}

// Visit marks v, which must be comparable, as being on the current conversion
// path until leave is called. Visiting a value that is already on the path
// returns ErrCycle.
func (sc Scope) Visit(v any) (leave func(), err error) {
	s := sc.schema
	if s == nil {
		panic("schema: Visit called on a scope without a document")
	}
	if s.visiting == nil {
		s.visiting = make(map[any]struct{})
	}
	if _, ok := s.visiting[v]; ok {
		return nil, fmt.Errorf("%w: %T", ErrCycle, v)
	}
	s.visiting[v] = struct{}{}
	return func() { delete(s.visiting, v) }, nil
}
