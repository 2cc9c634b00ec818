// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/chinthakat/trading-bot-aws/cmd/botops/cli"
	"github.com/chinthakat/trading-bot-aws/lib/hostinit"
)

// Command returns the "host" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "host",
		Summary: "Inspect the EC2 host bootstrap",
		Description: `Inspect the bootstrap procedure that prepares a fresh EC2 host:
package installs, the working directory, and the systemd unit files
for the bot and its dashboard.

The same procedure runs in two places. "infra provision" embeds it as
instance user-data, and the botops-host-init binary runs it natively
on an already-launched host.`,
		Subcommands: []*cli.Command{
			renderUserDataCommand(),
		},
	}
}

// renderParams holds the parameters for the render-user-data command.
type renderParams struct {
	cli.ConfigParams
}

func renderUserDataCommand() *cli.Command {
	var params renderParams

	return &cli.Command{
		Name:    "render-user-data",
		Summary: "Print the bootstrap user-data script",
		Description: `Print the shell script that "infra provision" passes as EC2
user-data, rendered from the deployment config. Useful for reviewing
what a new instance will run, or for pasting into the EC2 console when
launching a host by hand.`,
		Usage: "botops host render-user-data [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("render-user-data", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Review the bootstrap script for the configured deployment",
				Command:     "botops host render-user-data",
			},
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			bootstrapper := hostinit.New(hostinit.Options{
				Workdir:       cfg.Host.Workdir,
				User:          cfg.Host.User,
				DashboardPort: cfg.Host.DashboardPort,
			})
			fmt.Print(bootstrapper.RenderUserData())
			return nil
		},
	}
}
