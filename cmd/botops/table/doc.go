// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

// Package table implements the "botops table" command group: DynamoDB
// table administration beyond the core provisioning, plus the data
// inspection and analysis reports.
package table
