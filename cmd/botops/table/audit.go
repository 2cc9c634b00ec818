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

// auditParams holds the parameters for the table audit command.
type auditParams struct {
	cli.ConfigParams
	cli.JSONOutput
	Live bool `json:"-" flag:"live" desc:"read the live audit table instead of the paper-trading one"`
}

func auditCommand() *cli.Command {
	var params auditParams

	return &cli.Command{
		Name:    "audit",
		Summary: "Show the newest audit log entries",
		Description: `Scan an audit table and print the newest entries, one block per
entry with its timestamp, action, cause, and detail payload. Reads the
paper-trading audit table unless --live is set.`,
		Usage: "botops table audit [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("audit", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Show recent paper-trading audit entries",
				Command:     "botops table audit",
			},
			{
				Description: "Show recent live audit entries as JSON",
				Command:     "botops table audit --live --json",
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
			return runAudit(cfg, &params)
		},
	}
}

func runAudit(cfg *config.Config, params *auditParams) error {
	name := cfg.AWS.Tables.TestAudit
	if params.Live {
		name = cfg.AWS.Tables.Audit
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	admin, err := newAdmin(ctx, cfg, "table/audit")
	if err != nil {
		return err
	}
	items, err := admin.ScanAll(ctx, name)
	if err != nil {
		return cli.Internal("scanning %s: %w", name, err)
	}

	entries, total := tables.AuditEntries(items)
	if emitted, err := params.EmitJSON(entries); emitted || err != nil {
		return err
	}
	tables.RenderAudit(os.Stdout, entries, total)
	return nil
}
