// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package hcl loads build declarations from .hcl files into build.Context
// values ready for conversion.
//
// A build file declares flags and targets:
//
//	flag "release" {
//	  default     = false
//	  description = "Build with optimizations."
//	}
//
//	target "app" {
//	  key     = ["bin", "app"]
//	  inp     = { main = file("main.c"), lib = target.lib, release = flag.release }
//	  out     = { bin = file("app") }
//	  command = ["cc", "-o", out, inp]
//	}
//
// Besides the usual HCL expressions, the evaluation context offers:
//
//   - file(path): a path that renders as a consumed file inside `inp` and as a
//     produced artifact inside `out`, `inout` and `ready`.
//
//   - inp, out: deferred references to the target's own inputs and outputs,
//     meant for `command` and `shell` arguments.
//
//   - target.<name>, flag.<name>: references to any target or flag declared in
//     the loaded files, in any order.
//
// Values are kept as cty values; the schema package walks them during
// conversion so that files and references render in the right mode.
package hcl
