// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package awsinfra

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// EC2API is the subset of the EC2 client used by this package.
type EC2API interface {
	DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	CreateSecurityGroup(ctx context.Context, params *ec2.CreateSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error)
	AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
	DeleteSecurityGroup(ctx context.Context, params *ec2.DeleteSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error)
	DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
	DescribeKeyPairs(ctx context.Context, params *ec2.DescribeKeyPairsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeKeyPairsOutput, error)
	CreateKeyPair(ctx context.Context, params *ec2.CreateKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.CreateKeyPairOutput, error)
	DeleteKeyPair(ctx context.Context, params *ec2.DeleteKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.DeleteKeyPairOutput, error)
	RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	TerminateInstances(ctx context.Context, params *ec2.TerminateInstancesInput, optFns ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error)
	AssociateIamInstanceProfile(ctx context.Context, params *ec2.AssociateIamInstanceProfileInput, optFns ...func(*ec2.Options)) (*ec2.AssociateIamInstanceProfileOutput, error)
	DescribeIamInstanceProfileAssociations(ctx context.Context, params *ec2.DescribeIamInstanceProfileAssociationsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeIamInstanceProfileAssociationsOutput, error)
}

// Instance is the projection of a bot instance used by commands.
type Instance struct {
	ID       string
	State    string
	PublicIP string
}

// EC2Infra performs EC2 resource operations for one deployment.
type EC2Infra struct {
	client EC2API
	logger *slog.Logger
}

// NewEC2Infra returns an EC2Infra on the given client.
func NewEC2Infra(client EC2API, logger *slog.Logger) *EC2Infra {
	if logger == nil {
		logger = slog.Default()
	}
	return &EC2Infra{client: client, logger: logger}
}

// EnsureSecurityGroup finds or creates the named security group in the
// default VPC, opening the given TCP ports to 0.0.0.0/0. Returns the
// group ID.
func (i *EC2Infra) EnsureSecurityGroup(ctx context.Context, name string, ports []int32) (string, error) {
	existing, err := i.client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		GroupNames: []string{name},
	})
	if err == nil && len(existing.SecurityGroups) > 0 {
		groupID := aws.ToString(existing.SecurityGroups[0].GroupId)
		i.logger.Info("security group exists", "name", name, "id", groupID)
		return groupID, nil
	}
	if err != nil && !isAPIError(err, "InvalidGroup.NotFound") {
		return "", fmt.Errorf("describing security group %s: %w", name, err)
	}

	vpcs, err := i.client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{})
	if err != nil {
		return "", fmt.Errorf("describing VPCs: %w", err)
	}
	if len(vpcs.Vpcs) == 0 {
		return "", fmt.Errorf("no VPC available in this region")
	}
	vpcID := aws.ToString(vpcs.Vpcs[0].VpcId)

	created, err := i.client.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(name),
		Description: aws.String("Trading Bot Security Group"),
		VpcId:       aws.String(vpcID),
	})
	if err != nil {
		return "", fmt.Errorf("creating security group %s: %w", name, err)
	}
	groupID := aws.ToString(created.GroupId)

	permissions := make([]ec2types.IpPermission, 0, len(ports))
	for _, port := range ports {
		permissions = append(permissions, ec2types.IpPermission{
			IpProtocol: aws.String("tcp"),
			FromPort:   aws.Int32(port),
			ToPort:     aws.Int32(port),
			IpRanges:   []ec2types.IpRange{{CidrIp: aws.String("0.0.0.0/0")}},
		})
	}
	if _, err := i.client.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId:       aws.String(groupID),
		IpPermissions: permissions,
	}); err != nil {
		return "", fmt.Errorf("authorizing ingress on %s: %w", name, err)
	}

	i.logger.Info("security group created", "name", name, "id", groupID, "ports", ports)
	return groupID, nil
}

// EnsureKeyPair finds or creates the named key pair. On creation the
// private key material is written to pemPath with mode 0600; EC2
// returns it exactly once. Returns true when the key was created.
func (i *EC2Infra) EnsureKeyPair(ctx context.Context, name, pemPath string) (bool, error) {
	_, err := i.client.DescribeKeyPairs(ctx, &ec2.DescribeKeyPairsInput{
		KeyNames: []string{name},
	})
	if err == nil {
		i.logger.Info("key pair exists", "name", name)
		return false, nil
	}
	if !isAPIError(err, "InvalidKeyPair.NotFound") {
		return false, fmt.Errorf("describing key pair %s: %w", name, err)
	}

	created, err := i.client.CreateKeyPair(ctx, &ec2.CreateKeyPairInput{
		KeyName: aws.String(name),
	})
	if err != nil {
		return false, fmt.Errorf("creating key pair %s: %w", name, err)
	}

	if err := os.WriteFile(pemPath, []byte(aws.ToString(created.KeyMaterial)), 0600); err != nil {
		return false, fmt.Errorf("saving private key to %s: %w", pemPath, err)
	}

	i.logger.Info("key pair created", "name", name, "pem", pemPath)
	return true, nil
}

// LatestAL2023AMI returns the newest available Amazon Linux 2023
// x86_64 AMI. AMI IDs are region specific, so the ID is always
// resolved dynamically rather than pinned.
func (i *EC2Infra) LatestAL2023AMI(ctx context.Context) (string, error) {
	images, err := i.client.DescribeImages(ctx, &ec2.DescribeImagesInput{
		Owners: []string{"amazon"},
		Filters: []ec2types.Filter{
			{Name: aws.String("name"), Values: []string{"al2023-ami-2023.*-x86_64"}},
			{Name: aws.String("state"), Values: []string{"available"}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("describing images: %w", err)
	}
	if len(images.Images) == 0 {
		return "", fmt.Errorf("no Amazon Linux 2023 AMI found in this region")
	}

	return NewestImage(images.Images), nil
}

// NewestImage returns the image ID with the latest creation date.
// CreationDate is RFC 3339, which orders lexicographically.
func NewestImage(images []ec2types.Image) string {
	sorted := append([]ec2types.Image(nil), images...)
	sort.Slice(sorted, func(a, b int) bool {
		return aws.ToString(sorted[a].CreationDate) > aws.ToString(sorted[b].CreationDate)
	})
	return aws.ToString(sorted[0].ImageId)
}

// LaunchSpec describes the instance to launch.
type LaunchSpec struct {
	ImageID         string
	InstanceType    string
	KeyName         string
	SecurityGroupID string
	NameTag         string
	UserData        string
}

// LaunchInstance runs one instance per the given [LaunchSpec]. The user-data script
// is base64-encoded for the API, and a random client token makes the
// call idempotent against request retries.
func (i *EC2Infra) LaunchInstance(ctx context.Context, spec LaunchSpec) (string, error) {
	output, err := i.client.RunInstances(ctx, &ec2.RunInstancesInput{
		ImageId:          aws.String(spec.ImageID),
		InstanceType:     ec2types.InstanceType(spec.InstanceType),
		MinCount:         aws.Int32(1),
		MaxCount:         aws.Int32(1),
		KeyName:          aws.String(spec.KeyName),
		SecurityGroupIds: []string{spec.SecurityGroupID},
		UserData:         aws.String(base64.StdEncoding.EncodeToString([]byte(spec.UserData))),
		ClientToken:      aws.String(uuid.NewString()),
		TagSpecifications: []ec2types.TagSpecification{{
			ResourceType: ec2types.ResourceTypeInstance,
			Tags: []ec2types.Tag{{
				Key:   aws.String("Name"),
				Value: aws.String(spec.NameTag),
			}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("running instance: %w", err)
	}
	if len(output.Instances) == 0 {
		return "", fmt.Errorf("RunInstances returned no instances")
	}

	instanceID := aws.ToString(output.Instances[0].InstanceId)
	i.logger.Info("instance launched", "id", instanceID, "type", spec.InstanceType)
	return instanceID, nil
}

// WaitRunning blocks until the instance reaches the running state.
func (i *EC2Infra) WaitRunning(ctx context.Context, instanceID string, maxWait time.Duration) error {
	waiter := ec2.NewInstanceRunningWaiter(i.client)
	err := waiter.Wait(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	}, maxWait)
	if err != nil {
		return fmt.Errorf("waiting for instance %s to run: %w", instanceID, err)
	}
	return nil
}

// FindInstance locates the single instance carrying the Name tag in
// one of the given states. Returns nil when none exists.
func (i *EC2Infra) FindInstance(ctx context.Context, nameTag string, states []string) (*Instance, error) {
	output, err := i.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("tag:Name"), Values: []string{nameTag}},
			{Name: aws.String("instance-state-name"), Values: states},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("describing instances: %w", err)
	}

	for _, reservation := range output.Reservations {
		for _, instance := range reservation.Instances {
			found := &Instance{
				ID:       aws.ToString(instance.InstanceId),
				PublicIP: aws.ToString(instance.PublicIpAddress),
			}
			if instance.State != nil {
				found.State = string(instance.State.Name)
			}
			return found, nil
		}
	}
	return nil, nil
}

// RunningInstance returns the running instance with the Name tag, or
// nil when none is running.
func (i *EC2Infra) RunningInstance(ctx context.Context, nameTag string) (*Instance, error) {
	return i.FindInstance(ctx, nameTag, []string{"running"})
}

// TerminateTagged terminates every instance carrying the Name tag that
// is not already terminated, waits for termination, and returns the
// terminated instance IDs.
func (i *EC2Infra) TerminateTagged(ctx context.Context, nameTag string, maxWait time.Duration) ([]string, error) {
	output, err := i.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("tag:Name"), Values: []string{nameTag}},
			{Name: aws.String("instance-state-name"), Values: []string{"running", "pending", "stopped", "stopping"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("describing instances: %w", err)
	}

	var instanceIDs []string
	for _, reservation := range output.Reservations {
		for _, instance := range reservation.Instances {
			instanceIDs = append(instanceIDs, aws.ToString(instance.InstanceId))
		}
	}
	if len(instanceIDs) == 0 {
		return nil, nil
	}

	if _, err := i.client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: instanceIDs,
	}); err != nil {
		return nil, fmt.Errorf("terminating instances %v: %w", instanceIDs, err)
	}

	waiter := ec2.NewInstanceTerminatedWaiter(i.client)
	if err := waiter.Wait(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: instanceIDs,
	}, maxWait); err != nil {
		return instanceIDs, fmt.Errorf("waiting for termination of %v: %w", instanceIDs, err)
	}

	i.logger.Info("instances terminated", "ids", instanceIDs)
	return instanceIDs, nil
}

// DeleteSecurityGroup deletes the named security group.
func (i *EC2Infra) DeleteSecurityGroup(ctx context.Context, name string) error {
	if _, err := i.client.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
		GroupName: aws.String(name),
	}); err != nil {
		return fmt.Errorf("deleting security group %s: %w", name, err)
	}
	return nil
}

// DeleteKeyPair deletes the named key pair and, when pemPath exists,
// the local private key file.
func (i *EC2Infra) DeleteKeyPair(ctx context.Context, name, pemPath string) error {
	if _, err := i.client.DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{
		KeyName: aws.String(name),
	}); err != nil {
		return fmt.Errorf("deleting key pair %s: %w", name, err)
	}
	if err := os.Remove(pemPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing local key %s: %w", pemPath, err)
	}
	return nil
}

// isAPIError reports whether err is an AWS API error with the given code.
func isAPIError(err error, code string) bool {
	var apiError smithy.APIError
	return errors.As(err, &apiError) && apiError.ErrorCode() == code
}
