// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package schema turns an in-memory build description into the flat document
// consumed by the build engine.
//
// # Core Concepts
//
//   - Schema: the document itself. It holds four registries (contexts, targets,
//     builds, flags) populated by the entities being converted, plus the root
//     value handed to ConvertRoot.
//
//   - Converter: the one-method capability every participating entity
//     implements. A value that is not a Converter passes through unchanged.
//
//   - Scope: the conversion context passed into every ToSchema call. It pairs
//     the document with the active Mode.
//
//   - Mode: which field group of a build spec is being visited. The same value
//     type may serialize differently under Input (something consumed) and
//     Output (something produced).
//
// Why is the mode carried by value?
//
// A Scope is never mutated. Entering a field group derives a new Scope, so a
// nested conversion cannot leak its mode back into the caller and there is no
// save/restore bookkeeping to get wrong. Sibling conversions always observe the
// scope they were handed.
package schema
