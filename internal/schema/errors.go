// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package schema

import "errors"

var (
	// ErrNilRoot is returned by ConvertRoot when it is given nothing to convert.
	ErrNilRoot = errors.New("schema: nil root value")

	// ErrUnsupportedValue is returned for values that can never be encoded
	// into the document, such as functions, channels, or unknown cty values.
	ErrUnsupportedValue = errors.New("schema: unsupported value")

	// ErrCycle is returned when a value contains itself and would otherwise
	// be converted forever.
	ErrCycle = errors.New("schema: value contains itself")
)
