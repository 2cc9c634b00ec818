// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the botops CLI.
//
// The central type is [Command], which represents a named subcommand
// with optional nested [Command.Subcommands], a [pflag.FlagSet]
// factory, and a Run function. Commands are assembled into a tree in
// cmd/botops/commands and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help output
// with examples.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3).
//
// Command parameter structs declare their flags with struct tags and
// bind them through [FlagsFromParams]; see [BindFlags] for the tag
// grammar. Errors returned from Run are classified with [ToolError]
// categories so scripts can branch on failure kind, and [ExitError]
// lets a command exit non-zero without an extra error message.
package cli
