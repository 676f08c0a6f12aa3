// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package schema

import "fmt"

// Mode is the field group currently being converted.
type Mode int

const (
	// Unknown is the mode outside any spec field group.
	Unknown Mode = iota
	// Input is active while a spec's consumed values are converted.
	Input
	// Output is active while a spec's produced values are converted.
	Output
)

// String returns the lower-case name of the mode.
func (m Mode) String() string {
	switch m {
	case Unknown:
		return "unknown"
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func (m Mode) valid() bool {
	return m >= Unknown && m <= Output
}
