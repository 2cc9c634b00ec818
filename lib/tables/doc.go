// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

// Package tables administers the bot's DynamoDB tables: schema
// definitions, creation and deletion with waiters, scans for
// inspection, and the price-analysis report.
package tables
