// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package iam

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/chinthakat/trading-bot-aws/cmd/botops/cli"
	"github.com/chinthakat/trading-bot-aws/lib/awsinfra"
	"github.com/chinthakat/trading-bot-aws/lib/clock"
	"github.com/chinthakat/trading-bot-aws/lib/config"
)

// Role and profile names match the ones the deployment has always
// used; they are not configurable because the attached policy is
// account-global anyway.
const (
	roleName    = "TradingBotRole"
	profileName = "TradingBotProfile"
)

// attachParams holds the parameters for the iam attach command.
type attachParams struct {
	cli.ConfigParams
}

func attachCommand() *cli.Command {
	var params attachParams

	return &cli.Command{
		Name:    "attach",
		Summary: "Attach a DynamoDB-capable instance profile to the bot",
		Description: `Attach the bot's IAM instance profile to the running instance.

Ensures the TradingBotRole exists with the EC2 trust policy and
AmazonDynamoDBFullAccess attached, ensures the TradingBotProfile
instance profile contains the role, and associates the profile with
the running tagged instance. After profile creation the command waits
for IAM propagation before EC2 can see the new profile.

An instance that already has any profile association is left alone;
replacing an association must be done deliberately in the console.`,
		Usage: "botops iam attach [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("attach", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			return runAttach(cfg)
		},
	}
}

func runAttach(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	logger := cli.NewCommandLogger().With("command", "iam/attach", "region", cfg.AWS.Region)

	awsCfg, err := awsinfra.LoadAWSConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return cli.Internal("loading AWS config: %w", err)
	}
	ec2Client := awsinfra.NewEC2(awsCfg)
	iamInfra := awsinfra.NewIAMInfra(awsinfra.NewIAM(awsCfg), ec2Client, clock.Real(), logger)
	ec2Infra := awsinfra.NewEC2Infra(ec2Client, logger)

	fmt.Printf("Checking IAM role %s...\n", roleName)
	if err := iamInfra.EnsureRole(ctx, roleName); err != nil {
		return cli.Internal("ensuring role: %w", err)
	}

	fmt.Printf("Checking instance profile %s...\n", profileName)
	if err := iamInfra.EnsureInstanceProfile(ctx, profileName, roleName); err != nil {
		return cli.Internal("ensuring instance profile: %w", err)
	}

	instance, err := ec2Infra.RunningInstance(ctx, cfg.AWS.InstanceTag)
	if err != nil {
		return cli.Internal("describing instance: %w", err)
	}
	if instance == nil {
		return cli.NotFound("no running %q instance found", cfg.AWS.InstanceTag).
			WithHint("Run 'botops infra provision' first; the role and profile are ready for the next instance.")
	}
	fmt.Printf("Found instance: %s\n", instance.ID)

	associated, err := iamInfra.AssociateInstance(ctx, profileName, instance.ID)
	if err != nil {
		return cli.Internal("associating instance profile: %w", err)
	}
	if !associated {
		fmt.Println("Instance already has an IAM profile associated.")
		return nil
	}
	fmt.Println("Success! IAM role attached.")
	return nil
}
