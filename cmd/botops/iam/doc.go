// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

// Package iam implements the "botops iam" command group: granting the
// bot instance DynamoDB access through an instance profile.
package iam
