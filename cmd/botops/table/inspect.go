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
)

// inspectParams holds the parameters for the table inspect command.
type inspectParams struct {
	cli.ConfigParams
	cli.JSONOutput
	Limit int `json:"-" flag:"limit,n" desc:"maximum number of items to fetch" default:"5"`
}

func inspectCommand() *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Sample a few items from a table",
		Description: `Scan a table and print a small sample of its items. Numeric
attributes are printed as strings so full precision is preserved.`,
		Usage: "botops table inspect <table> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("inspect", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Peek at the most recent signals",
				Command:     "botops table inspect signals",
			},
			{
				Description: "Dump ten trade records as JSON",
				Command:     "botops table inspect trades --limit 10 --json",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one table name").
					WithHint("Known tables: " + knownAliases() + ".")
			}
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			return runInspect(cfg, &params, args[0])
		},
	}
}

func runInspect(cfg *config.Config, params *inspectParams, alias string) error {
	name, err := resolveTable(cfg.AWS.Tables, alias)
	if err != nil {
		return err
	}
	if params.Limit < 1 {
		return cli.Validation("--limit must be at least 1")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	admin, err := newAdmin(ctx, cfg, "table/inspect")
	if err != nil {
		return err
	}
	items, err := admin.Inspect(ctx, name, int32(params.Limit))
	if err != nil {
		return cli.Internal("scanning %s: %w", name, err)
	}

	if params.OutputJSON {
		return cli.WriteJSON(items)
	}

	fmt.Printf("Table %s: %d item(s) sampled\n", name, len(items))
	for index, item := range items {
		fmt.Printf("--- item %d ---\n", index+1)
		if err := cli.WriteJSON(item); err != nil {
			return err
		}
	}
	return nil
}
