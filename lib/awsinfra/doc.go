// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

// Package awsinfra provides typed access to the EC2 and IAM operations
// behind the infra, deploy, and iam commands: security group and key
// pair lifecycle, AMI resolution, instance launch and discovery by Name
// tag, teardown, and instance profile attachment.
//
// All operations go through the [EC2API] and [IAMAPI] interfaces,
// which are the exact subsets of the AWS SDK clients this package
// calls. Production code passes *ec2.Client and *iam.Client; tests
// pass fakes. Ensure-style operations (EnsureSecurityGroup,
// EnsureKeyPair, EnsureRole, ...) are idempotent: they look up the
// resource first and create only when absent, so provision can be
// re-run against a half-built deployment.
package awsinfra
