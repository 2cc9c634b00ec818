// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete botops CLI command tree. The
// botops binary is the single entry point; each command group lives
// in its own package under cmd/botops and is assembled here.
package commands

import (
	"fmt"

	"github.com/chinthakat/trading-bot-aws/cmd/botops/cli"
	deploycmd "github.com/chinthakat/trading-bot-aws/cmd/botops/deploy"
	hostcmd "github.com/chinthakat/trading-bot-aws/cmd/botops/host"
	iamcmd "github.com/chinthakat/trading-bot-aws/cmd/botops/iam"
	infracmd "github.com/chinthakat/trading-bot-aws/cmd/botops/infra"
	tablecmd "github.com/chinthakat/trading-bot-aws/cmd/botops/table"
	"github.com/chinthakat/trading-bot-aws/lib/version"
)

// Root builds and returns the complete botops command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "botops",
		Description: `botops: deployment tooling for the trading bot.

Provision and tear down the bot's AWS footprint (EC2 instance,
security group, key pair, DynamoDB tables), push code and restart the
bot over SSH, attach the IAM role the bot needs for DynamoDB access,
and administer the tables.

Configuration is read from the file named by --config or the
BOTOPS_CONFIG environment variable; without either, the stock
deployment defaults apply.`,
		Subcommands: []*cli.Command{
			infracmd.Command(),
			deploycmd.Command(),
			iamcmd.Command(),
			tablecmd.Command(),
			hostcmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("botops %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Launch the full AWS footprint",
				Command:     "botops infra provision",
			},
			{
				Description: "Push local code to the running instance",
				Command:     "botops deploy push",
			},
			{
				Description: "Create the paper-trading tables",
				Command:     "botops table create --set test",
			},
		},
	}
}
