// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package app contains the core application logic. It loads build files,
// converts the selected declarations into a graph document and writes the
// document out, decoupled from any specific entrypoint like a CLI.
package app
