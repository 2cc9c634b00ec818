// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package awsinfra

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
)

// LoadAWSConfig resolves AWS credentials and returns an SDK config
// pinned to the given region. Credentials come from the standard chain
// (environment, shared config, instance role); botops never reads or
// stores AWS credentials itself.
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	return cfg, nil
}

// NewEC2 returns an EC2 client for the resolved config.
func NewEC2(cfg aws.Config) *ec2.Client {
	return ec2.NewFromConfig(cfg)
}

// NewIAM returns an IAM client for the resolved config.
func NewIAM(cfg aws.Config) *iam.Client {
	return iam.NewFromConfig(cfg)
}

// NewDynamoDB returns a DynamoDB client for the resolved config.
func NewDynamoDB(cfg aws.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg)
}
