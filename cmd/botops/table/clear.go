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

// clearParams holds the parameters for the table clear command.
type clearParams struct {
	cli.ConfigParams
	Yes bool `json:"-" flag:"yes,y" desc:"skip the confirmation prompt"`
}

func clearCommand() *cli.Command {
	var params clearParams

	return &cli.Command{
		Name:    "clear",
		Summary: "Delete every item from the price history table",
		Description: `Scan the price history table and delete all of its items in
batches. The table itself survives, so readers keep working while the
data drains. Use 'botops table recreate prices' instead when the table
schema needs to change.`,
		Usage: "botops table clear prices [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("clear", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Empty the price history table without prompting",
				Command:     "botops table clear prices --yes",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 || args[0] != "prices" {
				return cli.Validation("clear supports only the prices table").
					WithHint("Usage: botops table clear prices")
			}
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			return runClear(cfg, &params)
		},
	}
}

func runClear(cfg *config.Config, params *clearParams) error {
	name := cfg.AWS.Tables.Prices
	if !params.Yes {
		fmt.Printf("This deletes every item in table %s. Continue? [y/N]: ", name)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	admin, err := newAdmin(ctx, cfg, "table/clear")
	if err != nil {
		return err
	}
	deleted, err := admin.Clear(ctx, tables.PricesDefinition(name))
	if err != nil {
		return cli.Internal("clearing %s: %w", name, err)
	}

	fmt.Printf("Deleted %d item(s) from %s.\n", deleted, name)
	return nil
}
