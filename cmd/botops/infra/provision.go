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
	"github.com/chinthakat/trading-bot-aws/lib/hostinit"
	"github.com/chinthakat/trading-bot-aws/lib/tables"
)

// provisionParams holds the parameters for the infra provision command.
type provisionParams struct {
	cli.ConfigParams
	Wait time.Duration `json:"-" flag:"wait" desc:"how long to wait for the instance to reach running" default:"5m"`
}

func provisionCommand() *cli.Command {
	var params provisionParams

	return &cli.Command{
		Name:    "provision",
		Summary: "Create tables, security group, key pair, and instance",
		Description: `Provision the bot's complete AWS footprint.

Every step is idempotent: existing tables, the existing security
group, and an existing key pair are detected and left alone, so the
command is safe to re-run after a partial failure. Only the instance
launch always creates a new resource; check "botops infra status"
first if one may already be running.

On key pair creation the private key is written to the project root
with mode 0600. EC2 returns the key material exactly once, so losing
this file means tearing down the key pair and provisioning again.

The launched instance bootstraps itself through user-data: package
installs, working directory, and systemd units for the bot and the
dashboard. The services are deliberately left stopped; they have
nothing to run until "botops deploy push" uploads the code.`,
		Usage: "botops infra provision [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("provision", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Provision with the default config",
				Command:     "botops infra provision",
			},
			{
				Description: "Provision an alternate deployment",
				Command:     "botops infra provision --config ./staging.yaml",
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
			return runProvision(cfg, params.Wait)
		},
	}
}

func runProvision(cfg *config.Config, wait time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), wait+2*time.Minute)
	defer cancel()

	logger := cli.NewCommandLogger().With("command", "infra/provision", "region", cfg.AWS.Region)

	awsCfg, err := awsinfra.LoadAWSConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return cli.Internal("loading AWS config: %w", err)
	}
	ec2Infra := awsinfra.NewEC2Infra(awsinfra.NewEC2(awsCfg), logger)
	admin := tables.NewAdmin(awsinfra.NewDynamoDB(awsCfg), clock.Real(), logger)

	fmt.Println("--- Checking DynamoDB Tables ---")
	if err := admin.CreateAll(ctx, tables.CoreDefinitions(cfg.AWS.Tables), wait); err != nil {
		return cli.Internal("provisioning tables: %w", err)
	}

	fmt.Println("--- Checking Security Group ---")
	ports := []int32{22, int32(cfg.Host.DashboardPort)}
	groupID, err := ec2Infra.EnsureSecurityGroup(ctx, cfg.AWS.SecurityGroup, ports)
	if err != nil {
		return cli.Internal("provisioning security group: %w", err)
	}

	fmt.Println("--- Checking Key Pair ---")
	created, err := ec2Infra.EnsureKeyPair(ctx, cfg.AWS.KeyPair, cfg.PEMPath())
	if err != nil {
		return cli.Internal("provisioning key pair: %w", err)
	}
	if created {
		fmt.Printf("Saved private key to: %s\n", cfg.PEMPath())
		fmt.Println("IMPORTANT: Keep this key safe. You need it to SSH.")
	}

	fmt.Println("--- Launching EC2 Instance ---")
	imageID, err := ec2Infra.LatestAL2023AMI(ctx)
	if err != nil {
		return cli.Internal("resolving AMI: %w", err)
	}
	fmt.Printf("Using AMI: %s\n", imageID)

	bootstrapper := hostinit.New(hostinit.Options{
		Workdir:       cfg.Host.Workdir,
		User:          cfg.Host.User,
		DashboardPort: cfg.Host.DashboardPort,
	})

	instanceID, err := ec2Infra.LaunchInstance(ctx, awsinfra.LaunchSpec{
		ImageID:         imageID,
		InstanceType:    cfg.AWS.InstanceType,
		KeyName:         cfg.AWS.KeyPair,
		SecurityGroupID: groupID,
		NameTag:         cfg.AWS.InstanceTag,
		UserData:        bootstrapper.RenderUserData(),
	})
	if err != nil {
		return cli.Internal("launching instance: %w", err)
	}
	fmt.Printf("Instance launched! ID: %s\n", instanceID)

	fmt.Println("Waiting for public IP...")
	if err := ec2Infra.WaitRunning(ctx, instanceID, wait); err != nil {
		return cli.Transient("instance did not reach running: %w", err)
	}

	instance, err := ec2Infra.RunningInstance(ctx, cfg.AWS.InstanceTag)
	if err != nil {
		return cli.Internal("describing instance: %w", err)
	}
	if instance == nil {
		return cli.Internal("instance %s running but not found by tag %q", instanceID, cfg.AWS.InstanceTag)
	}

	fmt.Println("--- Deployment Complete ---")
	fmt.Printf("Public IP: %s\n", instance.PublicIP)
	fmt.Printf("SSH Command: ssh -i %s %s@%s\n", cfg.PEMPath(), cfg.Host.User, instance.PublicIP)
	fmt.Println("\nNEXT STEPS:")
	fmt.Println("1. Upload code and configure services: botops deploy push")
	fmt.Println("2. Start the bot: botops deploy restart")
	fmt.Printf("3. Open the dashboard: http://%s:%d\n", instance.PublicIP, cfg.Host.DashboardPort)
	return nil
}
