// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the botops
// deployment tooling.
//
// Configuration is loaded from a single file specified by either the
// BOTOPS_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search. This ensures deterministic, auditable
// configuration with no hidden overrides: the same config file always
// targets the same infrastructure.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with AWS, Paths, Host sections
//   - [Default] -- returns a Config matching the stock deployment
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other botops packages.
package config
