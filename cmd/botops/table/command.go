// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"context"
	"fmt"

	"github.com/chinthakat/trading-bot-aws/cmd/botops/cli"
	"github.com/chinthakat/trading-bot-aws/lib/awsinfra"
	"github.com/chinthakat/trading-bot-aws/lib/clock"
	"github.com/chinthakat/trading-bot-aws/lib/config"
	"github.com/chinthakat/trading-bot-aws/lib/tables"
)

// Command returns the "table" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "table",
		Summary: "Administer and inspect the bot's DynamoDB tables",
		Description: `Administer the bot's DynamoDB tables.

The "create" subcommand creates a named table set: the core tables the
bot requires, the audit log tables, the live position tables, or the
paper-trading test tables.

The "recreate" subcommand drops and recreates the prices table,
discarding all price history.

The "inspect", "clear", "review", and "audit" subcommands read or
mutate table data: sample items, bulk deletion of price history, the
signal/fill price-analysis report, and the latest audit log entries.`,
		Subcommands: []*cli.Command{
			createCommand(),
			recreateCommand(),
			inspectCommand(),
			clearCommand(),
			reviewCommand(),
			auditCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Create the audit log tables",
				Command:     "botops table create --set audit",
			},
			{
				Description: "Sample the prices table",
				Command:     "botops table inspect prices",
			},
			{
				Description: "Compare signal prices against fills",
				Command:     "botops table review",
			},
		},
	}
}

// newAdmin builds a table Admin from the deployment config.
func newAdmin(ctx context.Context, cfg *config.Config, command string) (*tables.Admin, error) {
	logger := cli.NewCommandLogger().With("command", command, "region", cfg.AWS.Region)
	awsCfg, err := awsinfra.LoadAWSConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, cli.Internal("loading AWS config: %w", err)
	}
	return tables.NewAdmin(awsinfra.NewDynamoDB(awsCfg), clock.Real(), logger), nil
}

// resolveTable maps a table alias (the config key, e.g. "prices") to
// its configured table name.
func resolveTable(names config.TableNames, alias string) (string, error) {
	byAlias := map[string]string{
		"trades":         names.Trades,
		"stats":          names.Stats,
		"prices":         names.Prices,
		"signals":        names.Signals,
		"audit":          names.Audit,
		"test_audit":     names.TestAudit,
		"positions":      names.Positions,
		"orders":         names.Orders,
		"test_positions": names.TestPositions,
		"test_orders":    names.TestOrders,
		"test_account":   names.TestAccount,
	}
	name, ok := byAlias[alias]
	if !ok {
		return "", cli.Validation("unknown table %q", alias).
			WithHint(fmt.Sprintf("Known tables: %s.", knownAliases()))
	}
	return name, nil
}

func knownAliases() string {
	return "trades, stats, prices, signals, audit, test_audit, positions, orders, test_positions, test_orders, test_account"
}
