// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/chinthakat/trading-bot-aws/cmd/botops/cli"
	"github.com/chinthakat/trading-bot-aws/lib/awsinfra"
	"github.com/chinthakat/trading-bot-aws/lib/clock"
	"github.com/chinthakat/trading-bot-aws/lib/config"
	"github.com/chinthakat/trading-bot-aws/lib/tables"
)

// teardownParams holds the parameters for the infra teardown command.
type teardownParams struct {
	cli.ConfigParams
	KeepTables bool          `json:"-" flag:"keep-tables" desc:"do not delete the DynamoDB tables"`
	Wait       time.Duration `json:"-" flag:"wait" desc:"how long to wait for instance termination" default:"10m"`
}

func teardownCommand() *cli.Command {
	var params teardownParams

	return &cli.Command{
		Name:    "teardown",
		Summary: "Terminate the instance and delete all provisioned resources",
		Description: `Tear down the bot's AWS footprint.

Terminates every instance carrying the configured Name tag (in any
non-terminated state), waits for termination so the security group is
detachable, then deletes the security group, the key pair and its
local .pem file, and every DynamoDB table named in the config. Only
configured table names are deleted, never a discovered list.

Teardown is best-effort: a failure on one resource is reported and the
remaining resources are still attempted. The command exits non-zero if
any step failed.`,
		Usage: "botops infra teardown [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("teardown", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Destroy everything including table data",
				Command:     "botops infra teardown",
			},
			{
				Description: "Destroy compute and network, keep the data",
				Command:     "botops infra teardown --keep-tables",
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
			return runTeardown(cfg, params.KeepTables, params.Wait)
		},
	}
}

func runTeardown(cfg *config.Config, keepTables bool, wait time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), wait+5*time.Minute)
	defer cancel()

	logger := cli.NewCommandLogger().With("command", "infra/teardown", "region", cfg.AWS.Region)

	awsCfg, err := awsinfra.LoadAWSConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return cli.Internal("loading AWS config: %w", err)
	}
	ec2Infra := awsinfra.NewEC2Infra(awsinfra.NewEC2(awsCfg), logger)
	admin := tables.NewAdmin(awsinfra.NewDynamoDB(awsCfg), clock.Real(), logger)

	fmt.Printf("TEARDOWN STARTED for region %s\n", cfg.AWS.Region)
	failures := 0

	fmt.Println("--- Terminating EC2 Instance ---")
	terminated, err := ec2Infra.TerminateTagged(ctx, cfg.AWS.InstanceTag, wait)
	switch {
	case err != nil:
		failures++
		fmt.Printf("Could not terminate instances: %v\n", err)
	case len(terminated) == 0:
		fmt.Printf("No active %q instances found.\n", cfg.AWS.InstanceTag)
	default:
		fmt.Printf("Terminated instances: %v\n", terminated)
	}

	fmt.Println("--- Deleting Security Group ---")
	if err := ec2Infra.DeleteSecurityGroup(ctx, cfg.AWS.SecurityGroup); err != nil {
		failures++
		fmt.Printf("Could not delete security group: %v\n", err)
	} else {
		fmt.Printf("Deleted security group: %s\n", cfg.AWS.SecurityGroup)
	}

	fmt.Println("--- Deleting Key Pair ---")
	if err := ec2Infra.DeleteKeyPair(ctx, cfg.AWS.KeyPair, cfg.PEMPath()); err != nil {
		failures++
		fmt.Printf("Could not delete key pair: %v\n", err)
	} else {
		fmt.Printf("Deleted key pair: %s\n", cfg.AWS.KeyPair)
	}

	if keepTables {
		fmt.Println("--- Keeping DynamoDB Tables ---")
	} else {
		fmt.Println("--- Deleting DynamoDB Tables ---")
		for _, definition := range tables.AllDefinitions(cfg.AWS.Tables) {
			if err := admin.Delete(ctx, definition.Name, wait); err != nil {
				failures++
				fmt.Printf("Could not delete table %s: %v\n", definition.Name, err)
			} else {
				fmt.Printf("Deleted table: %s\n", definition.Name)
			}
		}
	}

	if failures > 0 {
		return cli.Internal("teardown finished with %d failed steps", failures)
	}
	fmt.Println("TEARDOWN COMPLETE.")
	return nil
}
