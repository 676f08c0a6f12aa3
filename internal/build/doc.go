// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package build holds the declarations an author writes: build specs and the
// targets, flags, files and contexts around them. Every type here implements
// schema.Converter, so any of them can be handed to schema.ConvertRoot.
//
// # Core Concepts
//
//   - Spec: a target's inputs, outputs, in/out values, readiness
//     preconditions, command and runtime.
//
//   - Target: a named, addressable Spec. Converting a target registers it in
//     the "targets" and "builds" registries.
//
//   - Context: the targets and flags declared by one build file.
//
//   - Workspace: all contexts loaded together.
//
//   - File and Flag: leaf values. A File renders differently inside inputs and
//     outputs; a Flag is registered once and referenced by name.
package build
