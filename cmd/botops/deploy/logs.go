// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/chinthakat/trading-bot-aws/cmd/botops/cli"
	"github.com/chinthakat/trading-bot-aws/lib/config"
)

// logsParams holds the parameters for the deploy logs command.
type logsParams struct {
	cli.ConfigParams
	Follow bool `json:"-" flag:"follow,f" desc:"keep the connection open and stream new lines"`
	Lines  int  `json:"-" flag:"lines,n" desc:"number of trailing lines to print" default:"100"`
}

func logsCommand() *cli.Command {
	var params logsParams

	return &cli.Command{
		Name:    "logs",
		Summary: "Tail the bot's log on the instance",
		Description: `Tail bot.log over SSH.

Without --follow, prints the trailing lines and exits. With --follow,
streams new lines until interrupted; the --lines count still controls
the initial backlog.`,
		Usage: "botops deploy logs [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("logs", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Print the last 100 lines",
				Command:     "botops deploy logs",
			},
			{
				Description: "Stream the log live",
				Command:     "botops deploy logs --follow",
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
			return runLogs(cfg, &params)
		},
	}
}

func runLogs(cfg *config.Config, params *logsParams) error {
	// Following has no natural deadline; only the initial connect is
	// bounded by ssh's own timeout behavior.
	ctx := context.Background()
	if !params.Follow {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
	}

	host, _, err := connectHost(ctx, cfg)
	if err != nil {
		return err
	}

	command := fmt.Sprintf("tail -n %d %s", params.Lines, botLogPath(cfg))
	if params.Follow {
		command += " -f"
	}
	if err := host.Stream(ctx, command); err != nil {
		return cli.Transient("tailing log: %w", err)
	}
	return nil
}
