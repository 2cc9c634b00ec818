// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"context"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/chinthakat/trading-bot-aws/cmd/botops/cli"
	"github.com/chinthakat/trading-bot-aws/lib/config"
	"github.com/chinthakat/trading-bot-aws/lib/tables"
)

// reviewParams holds the parameters for the table review command.
type reviewParams struct {
	cli.ConfigParams
	cli.JSONOutput
}

func reviewCommand() *cli.Command {
	var params reviewParams

	return &cli.Command{
		Name:    "review",
		Summary: "Compare signal prices against order and position fills",
		Description: `Scan the signals, paper-trading orders, and paper-trading
positions tables, match each signal to the order and position created
around the same moment, and print a price analysis report. The report
shows the newest signals with the signal price, the order limit price,
the position fill price, and the percentage delta between signal and
fill.`,
		Usage: "botops table review [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("review", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Print the price analysis report",
				Command:     "botops table review",
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
			return runReview(cfg, &params)
		},
	}
}

func runReview(cfg *config.Config, params *reviewParams) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	admin, err := newAdmin(ctx, cfg, "table/review")
	if err != nil {
		return err
	}

	signals, err := admin.ScanAll(ctx, cfg.AWS.Tables.Signals)
	if err != nil {
		return cli.Internal("scanning %s: %w", cfg.AWS.Tables.Signals, err)
	}
	orders, err := admin.ScanAll(ctx, cfg.AWS.Tables.TestOrders)
	if err != nil {
		return cli.Internal("scanning %s: %w", cfg.AWS.Tables.TestOrders, err)
	}
	positions, err := admin.ScanAll(ctx, cfg.AWS.Tables.TestPositions)
	if err != nil {
		return cli.Internal("scanning %s: %w", cfg.AWS.Tables.TestPositions, err)
	}

	rows := tables.BuildReview(signals, orders, positions)
	if emitted, err := params.EmitJSON(rows); emitted || err != nil {
		return err
	}
	tables.RenderReview(os.Stdout, rows, len(signals))
	return nil
}
