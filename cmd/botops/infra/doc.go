// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

// Package infra implements the "botops infra" command group: one-shot
// provisioning of the bot's AWS footprint (DynamoDB tables, security
// group, key pair, EC2 instance), teardown of the same, and a status
// read of the tagged instance.
package infra
