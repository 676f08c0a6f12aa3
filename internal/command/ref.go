// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package command

import "github.com/specialistvlad/buildgrid/internal/schema"

// Bag names a field group of the spec a command belongs to.
type Bag string

const (
	BagInputs  Bag = "inp"
	BagOutputs Bag = "out"
)

// Ref is a deferred reference to a spec's inputs or outputs. It is never
// evaluated here; the build engine substitutes the actual values at run time.
type Ref struct {
	bag Bag
}

// NewRef returns a deferred reference to bag.
func NewRef(bag Bag) *Ref {
	return &Ref{bag: bag}
}

// Bag returns the field group the reference points at.
func (r *Ref) Bag() Bag {
	return r.bag
}

// ToSchema renders the reference as an opaque marker.
func (r *Ref) ToSchema(schema.Scope) (any, error) {
	return map[string]any{"$ref": string(r.bag)}, nil
}

// Invocation is handed to the function that builds a spec's command. It
// carries the command constructors and the deferred references to the spec's
// inputs and outputs.
type Invocation struct {
	Inp *Ref
	Out *Ref
}

// NewInvocation returns an invocation with fresh input and output references.
func NewInvocation() Invocation {
	return Invocation{Inp: NewRef(BagInputs), Out: NewRef(BagOutputs)}
}

// Cmd is shorthand for the package level Cmd.
func (Invocation) Cmd(args ...any) *Command {
	return Cmd(args...)
}

// Sh is shorthand for the package level Sh.
func (Invocation) Sh(script string, args ...any) *Command {
	return Sh(script, args...)
}
