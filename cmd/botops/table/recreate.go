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

// recreateParams holds the parameters for the table recreate command.
type recreateParams struct {
	cli.ConfigParams
	Yes  bool          `json:"-" flag:"yes,y" desc:"skip the confirmation prompt"`
	Wait time.Duration `json:"-" flag:"wait" desc:"how long to wait for delete and create to complete" default:"10m"`
}

func recreateCommand() *cli.Command {
	var params recreateParams

	return &cli.Command{
		Name:    "recreate",
		Summary: "Drop and recreate the price history table",
		Description: `Delete the price history table and create it again with a fresh
schema. All stored price records are lost. Use this when the table
schema has drifted or the data is beyond repair; prefer
'botops table clear prices' to empty it without a delete.`,
		Usage: "botops table recreate prices [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("recreate", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Rebuild the price history table without prompting",
				Command:     "botops table recreate prices --yes",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 || args[0] != "prices" {
				return cli.Validation("recreate supports only the prices table").
					WithHint("Usage: botops table recreate prices")
			}
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			return runRecreate(cfg, &params)
		},
	}
}

func runRecreate(cfg *config.Config, params *recreateParams) error {
	name := cfg.AWS.Tables.Prices
	if !params.Yes {
		fmt.Printf("This deletes table %s and ALL its data. Continue? [y/N]: ", name)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), params.Wait+time.Minute)
	defer cancel()

	admin, err := newAdmin(ctx, cfg, "table/recreate")
	if err != nil {
		return err
	}
	if err := admin.Recreate(ctx, tables.PricesDefinition(name), params.Wait); err != nil {
		return cli.Internal("recreating %s: %w", name, err)
	}

	fmt.Printf("Table %s recreated.\n", name)
	return nil
}
