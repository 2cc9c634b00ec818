// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/chinthakat/trading-bot-aws/cmd/botops/cli"
	"github.com/chinthakat/trading-bot-aws/lib/config"
	"github.com/chinthakat/trading-bot-aws/lib/tables"
)

// createParams holds the parameters for the table create command.
type createParams struct {
	cli.ConfigParams
	Set  string        `json:"-" flag:"set" desc:"table set to create: core, audit, positions, or test" default:"core"`
	Wait time.Duration `json:"-" flag:"wait" desc:"how long to wait for each table to become active" default:"5m"`
}

func createCommand() *cli.Command {
	var params createParams

	return &cli.Command{
		Name:    "create",
		Summary: "Create a named set of DynamoDB tables",
		Description: `Create a table set, skipping tables that already exist.

Sets:
  core       trades, stats, prices, signals (on-demand billing)
  audit      live and test audit logs (provisioned 5/5 capacity)
  positions  live positions and orders
  test       paper-trading positions, orders, and account snapshots

Creation waits for each new table to reach active before moving on.`,
		Usage: "botops table create --set <core|audit|positions|test> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("create", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Create the paper-trading tables",
				Command:     "botops table create --set test",
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
			return runCreate(cfg, &params)
		},
	}
}

func runCreate(cfg *config.Config, params *createParams) error {
	definitions, err := definitionSet(cfg, params.Set)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), params.Wait+time.Minute)
	defer cancel()

	admin, err := newAdmin(ctx, cfg, "table/create")
	if err != nil {
		return err
	}
	if err := admin.CreateAll(ctx, definitions, params.Wait); err != nil {
		return cli.Internal("creating %s tables: %w", params.Set, err)
	}

	fmt.Printf("%s tables ready.\n", params.Set)
	return nil
}

func definitionSet(cfg *config.Config, set string) ([]tables.Definition, error) {
	switch set {
	case "core":
		return tables.CoreDefinitions(cfg.AWS.Tables), nil
	case "audit":
		return tables.AuditDefinitions(cfg.AWS.Tables), nil
	case "positions":
		return tables.PositionDefinitions(cfg.AWS.Tables), nil
	case "test":
		return tables.TestDefinitions(cfg.AWS.Tables), nil
	default:
		return nil, cli.Validation("unknown table set %q", set).
			WithHint("Valid sets: core, audit, positions, test.")
	}
}
