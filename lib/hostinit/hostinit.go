// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package hostinit

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
)

// BasePackages is the fixed set of packages installed at bootstrap:
// version control client, interpreter, package installer.
var BasePackages = []string{"git", "python3", "python3-pip"}

// Runner executes a system command and returns its combined output.
// Production code uses [ExecRunner]; tests record invocations instead.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands via os/exec. Stderr is captured separately
// and folded into error messages on failure.
type ExecRunner struct{}

// Run executes name with args and returns stdout.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, name, args...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w (stderr: %s)",
			name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Options configures a [Bootstrapper]. The zero value is not usable;
// call [New], which fills host defaults.
type Options struct {
	// Root is a filesystem prefix for all writes. Empty means the real
	// host root. Tests point it at a temp directory.
	Root string

	// Workdir is the working directory created for application code.
	Workdir string

	// User is the non-privileged account that owns Workdir and runs
	// the services.
	User string

	// DashboardPort is the port the dashboard unit binds.
	DashboardPort int

	// Runner executes system commands (dnf, systemctl, pip).
	Runner Runner

	// LookupUser resolves an account name to uid/gid for the chown.
	// Defaults to os/user lookup.
	LookupUser func(name string) (uid, gid int, err error)

	// Logger receives step-by-step progress. Defaults to slog.Default.
	Logger *slog.Logger
}

// Bootstrapper performs the host bootstrap procedure.
type Bootstrapper struct {
	options Options
}

// New returns a Bootstrapper with defaults applied.
func New(options Options) *Bootstrapper {
	if options.Workdir == "" {
		options.Workdir = "/home/ec2-user/trading-bot"
	}
	if options.User == "" {
		options.User = "ec2-user"
	}
	if options.DashboardPort == 0 {
		options.DashboardPort = 8501
	}
	if options.Runner == nil {
		options.Runner = ExecRunner{}
	}
	if options.LookupUser == nil {
		options.LookupUser = lookupSystemUser
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Bootstrapper{options: options}
}

// Units returns the two service units the bootstrap registers, in
// registration order: dashboard first, bot second.
func (b *Bootstrapper) Units() []Unit {
	return []Unit{
		DashboardUnit(b.options.Workdir, b.options.User, b.options.DashboardPort),
		BotUnit(b.options.Workdir, b.options.User),
	}
}

// Run executes the bootstrap procedure: package install, pip upgrade,
// working directory, unit registration, daemon reload. The steps run
// sequentially; the first fatal error aborts the remainder. Neither
// service is enabled or started; activation is deferred to deploy.
//
// Run is safe to repeat on an already-provisioned host: directory
// creation is a no-op when the directory exists and unit files are
// overwritten unconditionally.
func (b *Bootstrapper) Run(ctx context.Context) error {
	logger := b.options.Logger

	logger.Info("installing base packages", "packages", BasePackages)
	if err := b.installPackages(ctx); err != nil {
		return fmt.Errorf("installing packages: %w", err)
	}

	// Best-effort: stock pip on AL2023 is new enough for most installs,
	// and the deploy step installs requirements anyway.
	if err := b.upgradePip(ctx); err != nil {
		logger.Warn("pip upgrade failed, continuing", "error", err)
	}

	logger.Info("creating working directory", "path", b.options.Workdir, "owner", b.options.User)
	if err := b.ensureWorkdir(); err != nil {
		return fmt.Errorf("creating working directory: %w", err)
	}

	for _, unit := range b.Units() {
		logger.Info("writing unit file", "unit", unit.Name)
		if err := b.writeUnit(unit); err != nil {
			return fmt.Errorf("writing %s: %w", unit.Name, err)
		}
	}

	logger.Info("reloading systemd units")
	if err := b.daemonReload(ctx); err != nil {
		return fmt.Errorf("reloading systemd: %w", err)
	}

	logger.Info("bootstrap complete; services registered but not started")
	return nil
}

// installPackages refreshes the package index and installs the base
// package set. Fatal on failure.
func (b *Bootstrapper) installPackages(ctx context.Context) error {
	if _, err := b.options.Runner.Run(ctx, "dnf", "-y", "makecache"); err != nil {
		return err
	}
	installArgs := append([]string{"-y", "install"}, BasePackages...)
	_, err := b.options.Runner.Run(ctx, "dnf", installArgs...)
	return err
}

// pipUpgradeCommand is the pip upgrade invocation. It runs as the
// configured user because that account's per-user pip is the one the
// dashboard unit's ExecStart resolves against; upgrading root's pip
// would leave the service on a stale installer. The rendered
// user-data script emits this same argv.
func (b *Bootstrapper) pipUpgradeCommand() []string {
	return []string{"sudo", "-u", b.options.User, "python3", "-m", "pip", "install", "--upgrade", "pip"}
}

// upgradePip upgrades the pip tooling to avoid known installer
// incompatibilities with newer wheels.
func (b *Bootstrapper) upgradePip(ctx context.Context) error {
	command := b.pipUpgradeCommand()
	_, err := b.options.Runner.Run(ctx, command[0], command[1:]...)
	return err
}

// ensureWorkdir creates the working directory and assigns ownership to
// the configured account. MkdirAll makes the re-run case a no-op.
func (b *Bootstrapper) ensureWorkdir() error {
	path := filepath.Join(b.options.Root, b.options.Workdir)
	if err := os.MkdirAll(path, 0755); err != nil {
		return err
	}

	uid, gid, err := b.options.LookupUser(b.options.User)
	if err != nil {
		return fmt.Errorf("resolving account %q: %w", b.options.User, err)
	}
	if err := os.Chown(path, uid, gid); err != nil {
		return fmt.Errorf("chown %s: %w", path, err)
	}
	return nil
}

// writeUnit writes the rendered unit file, unconditionally overwriting
// any prior content.
func (b *Bootstrapper) writeUnit(unit Unit) error {
	path := unit.Path(b.options.Root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(unit.Render()), 0644)
}

// daemonReload refreshes the service manager's unit cache so the new
// descriptors are recognized. No unit is started here.
func (b *Bootstrapper) daemonReload(ctx context.Context) error {
	_, err := b.options.Runner.Run(ctx, "systemctl", "daemon-reload")
	return err
}

// lookupSystemUser resolves a username via os/user.
func lookupSystemUser(name string) (int, int, error) {
	account, err := user.Lookup(name)
	if err != nil {
		return 0, 0, err
	}
	uid, err := strconv.Atoi(account.Uid)
	if err != nil {
		return 0, 0, fmt.Errorf("non-numeric uid %q: %w", account.Uid, err)
	}
	gid, err := strconv.Atoi(account.Gid)
	if err != nil {
		return 0, 0, fmt.Errorf("non-numeric gid %q: %w", account.Gid, err)
	}
	return uid, gid, nil
}
