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
	"github.com/chinthakat/trading-bot-aws/lib/config"
)

// statusParams holds the parameters for the infra status command.
type statusParams struct {
	cli.ConfigParams
	cli.JSONOutput
}

// instanceStatus is the JSON output shape of infra status.
type instanceStatus struct {
	ID       string `json:"id"`
	State    string `json:"state"`
	PublicIP string `json:"public_ip,omitempty"`
}

func statusCommand() *cli.Command {
	var params statusParams

	return &cli.Command{
		Name:    "status",
		Summary: "Show the tagged instance's state and public IP",
		Description: `Show the bot instance's state.

Looks up the instance by the configured Name tag across all
non-terminated states. Exits 1 (without an error message) when no
instance exists, so scripts can branch on the exit code.`,
		Usage: "botops infra status [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("status", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			return runStatus(cfg, &params)
		},
	}
}

func runStatus(cfg *config.Config, params *statusParams) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := cli.NewCommandLogger().With("command", "infra/status", "region", cfg.AWS.Region)

	awsCfg, err := awsinfra.LoadAWSConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return cli.Internal("loading AWS config: %w", err)
	}
	ec2Infra := awsinfra.NewEC2Infra(awsinfra.NewEC2(awsCfg), logger)

	states := []string{"pending", "running", "stopping", "stopped", "shutting-down"}
	instance, err := ec2Infra.FindInstance(ctx, cfg.AWS.InstanceTag, states)
	if err != nil {
		return cli.Internal("describing instance: %w", err)
	}
	if instance == nil {
		fmt.Printf("No %q instance found.\n", cfg.AWS.InstanceTag)
		return &cli.ExitError{Code: 1}
	}

	status := instanceStatus{ID: instance.ID, State: instance.State, PublicIP: instance.PublicIP}
	if done, err := params.EmitJSON(status); done {
		return err
	}

	fmt.Printf("Instance: %s\n", status.ID)
	fmt.Printf("State:    %s\n", status.State)
	if status.PublicIP != "" {
		fmt.Printf("Public IP: %s\n", status.PublicIP)
		fmt.Printf("Dashboard: http://%s:%d\n", status.PublicIP, cfg.Host.DashboardPort)
	}
	return nil
}
