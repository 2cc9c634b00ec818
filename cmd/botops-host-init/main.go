// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

// botops-host-init prepares a fresh EC2 host to run the trading bot:
// it installs the system packages, creates the working directory, and
// registers the systemd units for the bot and its dashboard. It runs
// on the instance itself, as root, and is safe to run repeatedly.
//
// "botops infra provision" performs the same procedure through EC2
// user-data; this binary exists for hosts launched outside provision,
// or for re-running the bootstrap after changing the unit layout.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/chinthakat/trading-bot-aws/lib/hostinit"
	"github.com/chinthakat/trading-bot-aws/lib/process"
	"github.com/chinthakat/trading-bot-aws/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	flags := pflag.NewFlagSet("botops-host-init", pflag.ContinueOnError)
	workdir := flags.String("workdir", "/home/ec2-user/trading-bot", "working directory for the bot code")
	user := flags.String("user", "ec2-user", "account that owns the working directory and runs the services")
	dashboardPort := flags.Int("dashboard-port", 8501, "port the dashboard service binds")
	root := flags.String("root", "", "filesystem prefix for all writes (testing only)")
	showVersion := flags.Bool("version", false, "print version information and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}
	if *showVersion {
		fmt.Printf("botops-host-init %s\n", version.Full())
		return nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bootstrapper := hostinit.New(hostinit.Options{
		Root:          *root,
		Workdir:       *workdir,
		User:          *user,
		DashboardPort: *dashboardPort,
		Logger:        logger,
	})
	if err := bootstrapper.Run(ctx); err != nil {
		return fmt.Errorf("host bootstrap: %w", err)
	}

	logger.Info("host bootstrap complete", "workdir", *workdir, "user", *user)
	return nil
}
