// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"time"

	"github.com/chinthakat/trading-bot-aws/cmd/botops/cli"
	"github.com/chinthakat/trading-bot-aws/lib/awsinfra"
	"github.com/chinthakat/trading-bot-aws/lib/config"
	"github.com/chinthakat/trading-bot-aws/lib/remote"
)

// Command returns the "deploy" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "deploy",
		Summary: "Push code to the bot host and manage the bot process",
		Description: `Deploy and operate the bot on the provisioned instance.

The "push" subcommand uploads app/, the bot config, requirements.txt,
and .env (when present) to the instance, installs Python dependencies,
normalizes the dashboard's systemd unit, and restarts the dashboard
service. The bot process itself is not touched; restart it explicitly.

The "restart" subcommand kills any running bot process and relaunches
it in the background with output going to bot.log.

The "logs" subcommand tails bot.log over SSH.`,
		Subcommands: []*cli.Command{
			pushCommand(),
			restartCommand(),
			logsCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Upload the code and restart the dashboard",
				Command:     "botops deploy push",
			},
			{
				Description: "Upload as a single gzipped tar bundle",
				Command:     "botops deploy push --bundle",
			},
			{
				Description: "Relaunch the bot process",
				Command:     "botops deploy restart",
			},
			{
				Description: "Follow the bot's log",
				Command:     "botops deploy logs --follow",
			},
		},
	}
}

// connectHost resolves the running instance and the SSH key, returning
// a remote host handle and the instance's public IP. Key discovery
// prefers the configured key name and falls back to any .pem file in
// the project root.
func connectHost(ctx context.Context, cfg *config.Config) (*remote.Host, string, error) {
	logger := cli.NewCommandLogger().With("command", "deploy", "region", cfg.AWS.Region)

	awsCfg, err := awsinfra.LoadAWSConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, "", cli.Internal("loading AWS config: %w", err)
	}
	ec2Infra := awsinfra.NewEC2Infra(awsinfra.NewEC2(awsCfg), logger)

	instance, err := ec2Infra.RunningInstance(ctx, cfg.AWS.InstanceTag)
	if err != nil {
		return nil, "", cli.Internal("describing instance: %w", err)
	}
	if instance == nil {
		return nil, "", cli.NotFound("no running %q instance found", cfg.AWS.InstanceTag).
			WithHint("Run 'botops infra provision' to launch one.")
	}

	keyPath, err := remote.FindKey(cfg.Paths.Root, cfg.AWS.KeyPair+".pem")
	if err != nil {
		return nil, "", cli.NotFound("locating SSH key: %v", err).
			WithHint("The private key is written by 'botops infra provision'.")
	}
	if err := remote.FixKeyPermissions(keyPath); err != nil {
		return nil, "", cli.Internal("fixing key permissions: %w", err)
	}

	return remote.NewHost(cfg.Host.User, instance.PublicIP, keyPath), instance.PublicIP, nil
}

// deployTimeout bounds a full push including pip installs on a t3.micro.
const deployTimeout = 15 * time.Minute
