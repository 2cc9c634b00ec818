// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

// Package hostinit implements the one-shot host bootstrap performed at
// EC2 instance first launch: install base packages, create the working
// directory with correct ownership, and register the dashboard and bot
// systemd units in a stopped state.
//
// The procedure is a single linear pass with no concurrency, no
// retries, and no rollback; any fatal step aborts the remainder. The
// deliberate stop point is that neither service is enabled or started:
// activation is deferred until application code has been deployed
// (see the deploy command).
//
// [Bootstrapper.Run] executes the steps natively, for re-running on an
// already-provisioned host. [RenderUserData] emits the equivalent shell
// script for the EC2 user-data channel, where no botops binary exists
// yet. Both are generated from the same [Unit] definitions so the two
// paths cannot drift.
//
// All filesystem writes are relative to an overridable root prefix,
// and system commands go through a [Runner], so the whole procedure is
// testable against a temp directory without root or systemd.
package hostinit
