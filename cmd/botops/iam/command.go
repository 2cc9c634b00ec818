// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package iam

import (
	"github.com/chinthakat/trading-bot-aws/cmd/botops/cli"
)

// Command returns the "iam" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "iam",
		Summary: "Manage the bot's instance credentials",
		Description: `Manage the IAM resources that give the bot its DynamoDB access.

The "attach" subcommand ensures the role, the instance profile, and
the association with the running instance all exist. The bot then
reads its AWS credentials from instance metadata instead of a local
credentials file.`,
		Subcommands: []*cli.Command{
			attachCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Grant the running instance DynamoDB access",
				Command:     "botops iam attach",
			},
		},
	}
}
