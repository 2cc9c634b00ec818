// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package infra

import (
	"github.com/chinthakat/trading-bot-aws/cmd/botops/cli"
)

// Command returns the "infra" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "infra",
		Summary: "Provision and tear down the bot's AWS resources",
		Description: `Manage the bot's AWS footprint.

The "provision" subcommand brings up everything the bot needs in one
pass: the four core DynamoDB tables, a security group opening SSH and
the dashboard port, an EC2 key pair (saving the private key locally),
and a t3.micro instance bootstrapped from the latest Amazon Linux 2023
AMI. The instance's user-data script installs Python, creates the
working directory, and writes the systemd units for the bot and the
dashboard. Services are written but not started; push code first with
"botops deploy push".

The "teardown" subcommand terminates the tagged instance, then deletes
the security group, the key pair (including the local .pem file), and
every table named in the config. Each resource is attempted even if an
earlier one fails.

The "status" subcommand prints the tagged instance's state and public
IP, and exits 1 when nothing is running.`,
		Subcommands: []*cli.Command{
			provisionCommand(),
			teardownCommand(),
			statusCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Provision tables, network, key, and instance",
				Command:     "botops infra provision",
			},
			{
				Description: "Check whether the bot host is up",
				Command:     "botops infra status",
			},
			{
				Description: "Destroy everything, keeping the DynamoDB tables",
				Command:     "botops infra teardown --keep-tables",
			},
		},
	}
}
