// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package awsinfra

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/chinthakat/trading-bot-aws/lib/clock"
)

// IAMAPI is the subset of the IAM client used by this package.
type IAMAPI interface {
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
	CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
	AttachRolePolicy(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error)
	GetInstanceProfile(ctx context.Context, params *iam.GetInstanceProfileInput, optFns ...func(*iam.Options)) (*iam.GetInstanceProfileOutput, error)
	CreateInstanceProfile(ctx context.Context, params *iam.CreateInstanceProfileInput, optFns ...func(*iam.Options)) (*iam.CreateInstanceProfileOutput, error)
	AddRoleToInstanceProfile(ctx context.Context, params *iam.AddRoleToInstanceProfileInput, optFns ...func(*iam.Options)) (*iam.AddRoleToInstanceProfileOutput, error)
}

// ec2TrustPolicy allows EC2 instances to assume the role.
const ec2TrustPolicy = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": {"Service": "ec2.amazonaws.com"},
      "Action": "sts:AssumeRole"
    }
  ]
}`

// dynamoDBPolicyArn grants the bot full DynamoDB access via the
// instance role, so no long-lived credentials live on the instance.
const dynamoDBPolicyArn = "arn:aws:iam::aws:policy/AmazonDynamoDBFullAccess"

// IAMInfra performs the role and instance profile operations behind
// "botops iam attach".
type IAMInfra struct {
	iamClient IAMAPI
	ec2Client EC2API
	clock     clock.Clock
	logger    *slog.Logger
}

// NewIAMInfra returns an IAMInfra on the given clients.
func NewIAMInfra(iamClient IAMAPI, ec2Client EC2API, clk clock.Clock, logger *slog.Logger) *IAMInfra {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IAMInfra{iamClient: iamClient, ec2Client: ec2Client, clock: clk, logger: logger}
}

// EnsureRole finds or creates the role with the EC2 trust policy and
// DynamoDB access attached.
func (i *IAMInfra) EnsureRole(ctx context.Context, roleName string) error {
	_, err := i.iamClient.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(roleName)})
	if err == nil {
		i.logger.Info("role exists", "role", roleName)
		return nil
	}
	if !isNoSuchEntity(err) {
		return fmt.Errorf("getting role %s: %w", roleName, err)
	}

	if _, err := i.iamClient.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(roleName),
		AssumeRolePolicyDocument: aws.String(ec2TrustPolicy),
	}); err != nil {
		return fmt.Errorf("creating role %s: %w", roleName, err)
	}

	if _, err := i.iamClient.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
		RoleName:  aws.String(roleName),
		PolicyArn: aws.String(dynamoDBPolicyArn),
	}); err != nil {
		return fmt.Errorf("attaching DynamoDB policy to %s: %w", roleName, err)
	}

	i.logger.Info("role created", "role", roleName)
	return nil
}

// EnsureInstanceProfile finds or creates the instance profile and adds
// the role to it. IAM is eventually consistent: after creating the
// profile, a propagation pause is required before EC2 can see it.
func (i *IAMInfra) EnsureInstanceProfile(ctx context.Context, profileName, roleName string) error {
	_, err := i.iamClient.GetInstanceProfile(ctx, &iam.GetInstanceProfileInput{
		InstanceProfileName: aws.String(profileName),
	})
	if err == nil {
		i.logger.Info("instance profile exists", "profile", profileName)
		return nil
	}
	if !isNoSuchEntity(err) {
		return fmt.Errorf("getting instance profile %s: %w", profileName, err)
	}

	if _, err := i.iamClient.CreateInstanceProfile(ctx, &iam.CreateInstanceProfileInput{
		InstanceProfileName: aws.String(profileName),
	}); err != nil {
		return fmt.Errorf("creating instance profile %s: %w", profileName, err)
	}

	if _, err := i.iamClient.AddRoleToInstanceProfile(ctx, &iam.AddRoleToInstanceProfileInput{
		InstanceProfileName: aws.String(profileName),
		RoleName:            aws.String(roleName),
	}); err != nil {
		return fmt.Errorf("adding role %s to profile %s: %w", roleName, profileName, err)
	}

	i.logger.Info("instance profile created, waiting for IAM propagation", "profile", profileName)
	i.clock.Sleep(10 * time.Second)
	return nil
}

// AssociateInstance attaches the instance profile to the instance,
// unless an association already exists. Returns true when a new
// association was made.
func (i *IAMInfra) AssociateInstance(ctx context.Context, profileName, instanceID string) (bool, error) {
	associations, err := i.ec2Client.DescribeIamInstanceProfileAssociations(ctx, &ec2.DescribeIamInstanceProfileAssociationsInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("instance-id"), Values: []string{instanceID}},
		},
	})
	if err != nil {
		return false, fmt.Errorf("describing profile associations for %s: %w", instanceID, err)
	}
	if len(associations.IamInstanceProfileAssociations) > 0 {
		i.logger.Info("instance already has a profile association", "instance", instanceID)
		return false, nil
	}

	profile, err := i.iamClient.GetInstanceProfile(ctx, &iam.GetInstanceProfileInput{
		InstanceProfileName: aws.String(profileName),
	})
	if err != nil {
		return false, fmt.Errorf("getting instance profile %s: %w", profileName, err)
	}

	if _, err := i.ec2Client.AssociateIamInstanceProfile(ctx, &ec2.AssociateIamInstanceProfileInput{
		IamInstanceProfile: &ec2types.IamInstanceProfileSpecification{
			Arn: profile.InstanceProfile.Arn,
		},
		InstanceId: aws.String(instanceID),
	}); err != nil {
		return false, fmt.Errorf("associating profile %s with %s: %w", profileName, instanceID, err)
	}

	i.logger.Info("instance profile associated", "profile", profileName, "instance", instanceID)
	return true, nil
}

// isNoSuchEntity reports whether err is the IAM not-found error.
func isNoSuchEntity(err error) bool {
	var noSuchEntity *iamtypes.NoSuchEntityException
	return errors.As(err, &noSuchEntity)
}
