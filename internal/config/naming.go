package config

import "fmt"

// All resource names and ARN patterns funnel through the helpers below so the
// names used when creating resources and the names used inside IAM policies
// can never drift apart.

// NameFor derives the canonical name for a resource kind, e.g.
// NameFor("db") for notes-prod yields "notes-prod-db".
func (e *Environment) NameFor(kind string) string {
	return fmt.Sprintf("%s-%s", e.ResourcePrefix, kind)
}

// BucketName is the globally unique name of the image bucket. The account ID
// suffix keeps the name unique across accounts sharing the same prefix.
func (e *Environment) BucketName() string {
	return fmt.Sprintf("%s-images-%s", e.ResourcePrefix, e.AccountID)
}

// DBIdentifier is the RDS instance identifier.
func (e *Environment) DBIdentifier() string {
	return e.NameFor("db")
}

// DeployRoleName is the externally managed deployment role the permission
// stack attaches its policies to.
func (e *Environment) DeployRoleName() string {
	return e.NameFor("deployer")
}

// ParameterPath returns the SSM parameter name for a published output.
func (e *Environment) ParameterPath(leaf string) string {
	return fmt.Sprintf("/%s/%s", e.ResourcePrefix, leaf)
}

// BucketARN returns the bucket ARN, or the ARN of all objects in it when
// objects is true.
func (e *Environment) BucketARN(objects bool) string {
	if objects {
		return fmt.Sprintf("arn:aws:s3:::%s/*", e.BucketName())
	}
	return fmt.Sprintf("arn:aws:s3:::%s", e.BucketName())
}

// DBInstanceARN returns the ARN of the RDS instance.
func (e *Environment) DBInstanceARN() string {
	return fmt.Sprintf("arn:aws:rds:%s:%s:db:%s", e.Region, e.AccountID, e.DBIdentifier())
}

// DBSubnetGroupARN returns the ARN of the RDS subnet group.
func (e *Environment) DBSubnetGroupARN() string {
	return fmt.Sprintf("arn:aws:rds:%s:%s:subgrp:%s", e.Region, e.AccountID, e.NameFor("db-subnets"))
}

// SecretARNPattern matches every secret under the environment prefix.
// Secrets Manager appends a random suffix to secret names, hence the glob.
func (e *Environment) SecretARNPattern() string {
	return fmt.Sprintf("arn:aws:secretsmanager:%s:%s:secret:%s-*", e.Region, e.AccountID, e.ResourcePrefix)
}

// ParameterARNPattern matches every SSM parameter under the environment path.
func (e *Environment) ParameterARNPattern() string {
	return fmt.Sprintf("arn:aws:ssm:%s:%s:parameter/%s/*", e.Region, e.AccountID, e.ResourcePrefix)
}

// RepositoryARN returns the ARN of the application image repository.
func (e *Environment) RepositoryARN() string {
	return fmt.Sprintf("arn:aws:ecr:%s:%s:repository/%s", e.Region, e.AccountID, e.NameFor("app"))
}

// RoleARNPattern matches every IAM role under the environment prefix.
func (e *Environment) RoleARNPattern() string {
	return fmt.Sprintf("arn:aws:iam::%s:role/%s-*", e.AccountID, e.ResourcePrefix)
}

// StackARNPattern matches the CloudFormation stacks the deployer may touch.
func (e *Environment) StackARNPattern() string {
	return fmt.Sprintf("arn:aws:cloudformation:%s:%s:stack/%s-*", e.Region, e.AccountID, e.ResourcePrefix)
}

// AssetBucketARN returns the deployment asset bucket ARN, or its objects.
func (e *Environment) AssetBucketARN(objects bool) string {
	name := fmt.Sprintf("%s-assets-%s", e.ResourcePrefix, e.AccountID)
	if objects {
		return fmt.Sprintf("arn:aws:s3:::%s/*", name)
	}
	return fmt.Sprintf("arn:aws:s3:::%s", name)
}
