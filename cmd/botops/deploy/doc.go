// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

// Package deploy implements the "botops deploy" command group: pushing
// the bot's code to the provisioned instance over scp, restarting the
// bot process, and tailing its log.
package deploy
