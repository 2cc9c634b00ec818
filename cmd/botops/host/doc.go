// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

// Package host implements the "botops host" command group for
// inspecting the host bootstrap procedure from the operator's machine.
package host
