// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/chinthakat/trading-bot-aws/cmd/botops/cli"
	"github.com/chinthakat/trading-bot-aws/lib/config"
)

// restartParams holds the parameters for the deploy restart command.
type restartParams struct {
	cli.ConfigParams
}

func restartCommand() *cli.Command {
	var params restartParams

	return &cli.Command{
		Name:    "restart",
		Summary: "Kill and relaunch the bot process",
		Description: `Restart the bot process on the instance.

Kills any running bot.py (tolerating the case where none is running)
and relaunches it with nohup in the background, redirecting stdout and
stderr to bot.log in the working directory. The kill and the launch
run as one remote invocation, with the background start last because
nothing can be chained after a backgrounded command.

The bot is run directly rather than through its systemd unit so that
an operator iterating on the code sees crashes in bot.log instead of
the journal; the unit remains available for boot-time enablement.`,
		Usage: "botops deploy restart [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("restart", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			return runRestart(cfg)
		},
	}
}

func runRestart(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Printf("--- Restarting Bot in %s ---\n", cfg.AWS.Region)

	host, publicIP, err := connectHost(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Target IP: %s\n", publicIP)

	command := fmt.Sprintf(
		"cd %s && (pkill -f bot.py || true) && nohup python3 app/bot.py > bot.log 2>&1 &",
		cfg.Host.Workdir)
	if _, err := host.Run(ctx, command); err != nil {
		return cli.Transient("restarting bot: %w", err)
	}

	fmt.Println("\nBot restarted.")
	fmt.Printf("Dashboard: http://%s:%d\n", publicIP, cfg.Host.DashboardPort)
	fmt.Println("\nTo follow logs run:")
	fmt.Println("botops deploy logs --follow")
	return nil
}

// botLogPath returns the bot log location on the instance.
func botLogPath(cfg *config.Config) string {
	return filepath.Join(cfg.Host.Workdir, "bot.log")
}
