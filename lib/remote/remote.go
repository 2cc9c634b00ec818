// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

// Package remote provides typed access to the OpenSSH ssh and scp
// binaries for operating on the bot instance. All commands target a
// specific host via user@address with the key pair's PEM file, which
// is automatically injected by all Host methods.
//
// Host key checking is disabled for all invocations: instances are
// recreated freely and their host keys churn, and the deploy commands
// must run unattended. This is the documented trade-off carried over
// from the deployment procedure this package automates.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Host represents an ssh-reachable instance. All operations use the
// same identity file and account.
type Host struct {
	user    string
	address string
	keyPath string
}

// NewHost returns a Host for user@address authenticated by the PEM
// file at keyPath.
func NewHost(user, address, keyPath string) *Host {
	return &Host{user: user, address: address, keyPath: keyPath}
}

// Target returns the user@address pair.
func (h *Host) Target() string {
	return h.user + "@" + h.address
}

// sshArgs builds the argument list for an ssh invocation running the
// given remote command line.
func (h *Host) sshArgs(command string) []string {
	return []string{
		"-i", h.keyPath,
		"-o", "StrictHostKeyChecking=no",
		h.Target(),
		command,
	}
}

// scpArgs builds the argument list for an scp upload of paths into
// remoteDir on the host.
func (h *Host) scpArgs(paths []string, remoteDir string) []string {
	args := []string{
		"-i", h.keyPath,
		"-o", "StrictHostKeyChecking=no",
		"-r",
	}
	args = append(args, paths...)
	args = append(args, h.Target()+":"+remoteDir)
	return args
}

// Run executes a remote command line over ssh and returns stdout.
// Stderr is captured separately and included in error messages on
// failure.
func (h *Host) Run(ctx context.Context, command string) (string, error) {
	var stdout, stderr bytes.Buffer
	sshCommand := exec.CommandContext(ctx, "ssh", h.sshArgs(command)...)
	sshCommand.Stdout = &stdout
	sshCommand.Stderr = &stderr

	if err := sshCommand.Run(); err != nil {
		return "", fmt.Errorf("ssh %s %q: %w (stderr: %s)",
			h.Target(), command, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// RunScript joins commands with " && " and executes them as one remote
// invocation, so a failing step aborts the rest.
func (h *Host) RunScript(ctx context.Context, commands []string) (string, error) {
	return h.Run(ctx, strings.Join(commands, " && "))
}

// Stream executes a remote command with stdout and stderr attached to
// this process, for interactive output like log following.
func (h *Host) Stream(ctx context.Context, command string) error {
	sshCommand := exec.CommandContext(ctx, "ssh", h.sshArgs(command)...)
	sshCommand.Stdout = os.Stdout
	sshCommand.Stderr = os.Stderr
	if err := sshCommand.Run(); err != nil {
		return fmt.Errorf("ssh %s %q: %w", h.Target(), command, err)
	}
	return nil
}

// Upload copies local paths (files or directories) into remoteDir on
// the host via scp -r.
func (h *Host) Upload(ctx context.Context, paths []string, remoteDir string) error {
	var stderr bytes.Buffer
	scpCommand := exec.CommandContext(ctx, "scp", h.scpArgs(paths, remoteDir)...)
	scpCommand.Stdout = os.Stdout
	scpCommand.Stderr = &stderr

	if err := scpCommand.Run(); err != nil {
		return fmt.Errorf("scp to %s:%s: %w (stderr: %s)",
			h.Target(), remoteDir, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// FixKeyPermissions chmods the PEM file to 0600. OpenSSH refuses keys
// readable by other accounts.
func FixKeyPermissions(keyPath string) error {
	if err := os.Chmod(keyPath, 0600); err != nil {
		return fmt.Errorf("restricting %s: %w", keyPath, err)
	}
	return nil
}

// FindKey locates the PEM key file under root. The preferred name is
// checked first; otherwise the first *.pem file found is returned.
func FindKey(root, preferred string) (string, error) {
	preferredPath := filepath.Join(root, preferred)
	if _, err := os.Stat(preferredPath); err == nil {
		return preferredPath, nil
	}

	matches, err := filepath.Glob(filepath.Join(root, "*.pem"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no .pem key file found in %s", root)
	}
	return matches[0], nil
}
