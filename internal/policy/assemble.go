package policy

import (
	"notes-app-infra/internal/config"
)

// Assemble builds the full set of deployment policies for an environment.
// Every resource pattern is scoped by the environment prefix; the only
// wildcard resources are actions the platform cannot scope to an ARN, and
// those always sit in their own region-conditioned statement.
func Assemble(env *config.Environment) []Document {
	return []Document{
		bootstrapPolicy(env),
		cloudformationPolicy(env),
		assetsPolicy(env),
		parameterStorePolicy(env),
		containerRegistryPolicy(env),
		networkPolicy(env),
		databasePolicy(env),
		objectStoragePolicy(env),
		secretStorePolicy(env),
	}
}

func bootstrapPolicy(env *config.Environment) Document {
	return Document{
		Name: env.NameFor("bootstrap"),
		Statements: []Statement{
			{
				Sid:    "PassDeploymentRoles",
				Effect: Allow,
				Actions: []string{
					"iam:GetRole",
					"iam:PassRole",
					"sts:AssumeRole",
				},
				Resources: []string{env.RoleARNPattern()},
			},
		},
	}
}

func cloudformationPolicy(env *config.Environment) Document {
	return Document{
		Name: env.NameFor("cloudformation"),
		Statements: []Statement{
			{
				Sid:    "ManageStacks",
				Effect: Allow,
				Actions: []string{
					"cloudformation:CreateStack",
					"cloudformation:UpdateStack",
					"cloudformation:DeleteStack",
					"cloudformation:DescribeStacks",
					"cloudformation:DescribeStackEvents",
					"cloudformation:CreateChangeSet",
					"cloudformation:DescribeChangeSet",
					"cloudformation:ExecuteChangeSet",
					"cloudformation:DeleteChangeSet",
					"cloudformation:GetTemplate",
				},
				Resources: []string{env.StackARNPattern()},
			},
			{
				// ListStacks and ValidateTemplate have no ARN support.
				Sid:        "ListAndValidate",
				Effect:     Allow,
				Actions:    []string{"cloudformation:ListStacks", "cloudformation:ValidateTemplate"},
				Resources:  []string{"*"},
				Conditions: regionCondition(env.Region),
			},
		},
	}
}

func assetsPolicy(env *config.Environment) Document {
	return Document{
		Name: env.NameFor("assets"),
		Statements: []Statement{
			{
				Sid:    "ManageAssetBucket",
				Effect: Allow,
				Actions: []string{
					"s3:GetObject",
					"s3:PutObject",
					"s3:DeleteObject",
					"s3:ListBucket",
					"s3:GetBucketLocation",
					"s3:AbortMultipartUpload",
				},
				Resources: []string{
					env.AssetBucketARN(false),
					env.AssetBucketARN(true),
				},
			},
		},
	}
}

func parameterStorePolicy(env *config.Environment) Document {
	return Document{
		Name: env.NameFor("parameter-store"),
		Statements: []Statement{
			{
				Sid:    "ManageParameters",
				Effect: Allow,
				Actions: []string{
					"ssm:GetParameter",
					"ssm:GetParameters",
					"ssm:GetParametersByPath",
					"ssm:PutParameter",
					"ssm:DeleteParameter",
					"ssm:AddTagsToResource",
				},
				Resources: []string{env.ParameterARNPattern()},
			},
			{
				// DescribeParameters cannot be scoped to a parameter ARN.
				Sid:        "DescribeParameters",
				Effect:     Allow,
				Actions:    []string{"ssm:DescribeParameters"},
				Resources:  []string{"*"},
				Conditions: regionCondition(env.Region),
			},
		},
	}
}

func containerRegistryPolicy(env *config.Environment) Document {
	return Document{
		Name: env.NameFor("container-registry"),
		Statements: []Statement{
			{
				Sid:    "ManageAppRepository",
				Effect: Allow,
				Actions: []string{
					"ecr:CreateRepository",
					"ecr:DeleteRepository",
					"ecr:DescribeRepositories",
					"ecr:PutLifecyclePolicy",
					"ecr:PutImageScanningConfiguration",
					"ecr:TagResource",
					"ecr:BatchCheckLayerAvailability",
					"ecr:BatchGetImage",
					"ecr:GetDownloadUrlForLayer",
					"ecr:InitiateLayerUpload",
					"ecr:UploadLayerPart",
					"ecr:CompleteLayerUpload",
					"ecr:PutImage",
				},
				Resources: []string{env.RepositoryARN()},
			},
			{
				// GetAuthorizationToken is registry-wide by definition.
				Sid:        "Authorize",
				Effect:     Allow,
				Actions:    []string{"ecr:GetAuthorizationToken"},
				Resources:  []string{"*"},
				Conditions: regionCondition(env.Region),
			},
		},
	}
}

func networkPolicy(env *config.Environment) Document {
	// EC2 network primitives largely predate resource-level permissions, so
	// this whole document runs against a wildcard under a region condition.
	return Document{
		Name: env.NameFor("network"),
		Statements: []Statement{
			{
				Sid:    "ManageNetwork",
				Effect: Allow,
				Actions: []string{
					"ec2:CreateVpc",
					"ec2:DeleteVpc",
					"ec2:ModifyVpcAttribute",
					"ec2:CreateSubnet",
					"ec2:DeleteSubnet",
					"ec2:CreateInternetGateway",
					"ec2:AttachInternetGateway",
					"ec2:DetachInternetGateway",
					"ec2:DeleteInternetGateway",
					"ec2:AllocateAddress",
					"ec2:ReleaseAddress",
					"ec2:CreateNatGateway",
					"ec2:DeleteNatGateway",
					"ec2:CreateRouteTable",
					"ec2:DeleteRouteTable",
					"ec2:CreateRoute",
					"ec2:DeleteRoute",
					"ec2:AssociateRouteTable",
					"ec2:DisassociateRouteTable",
					"ec2:CreateSecurityGroup",
					"ec2:DeleteSecurityGroup",
					"ec2:AuthorizeSecurityGroupIngress",
					"ec2:AuthorizeSecurityGroupEgress",
					"ec2:RevokeSecurityGroupIngress",
					"ec2:RevokeSecurityGroupEgress",
					"ec2:CreateTags",
					"ec2:DeleteTags",
					"ec2:Describe*",
				},
				Resources:  []string{"*"},
				Conditions: regionCondition(env.Region),
			},
		},
	}
}

func databasePolicy(env *config.Environment) Document {
	return Document{
		Name: env.NameFor("database"),
		Statements: []Statement{
			{
				Sid:    "ManageInstance",
				Effect: Allow,
				Actions: []string{
					"rds:CreateDBInstance",
					"rds:ModifyDBInstance",
					"rds:DeleteDBInstance",
					"rds:RebootDBInstance",
					"rds:CreateDBSubnetGroup",
					"rds:DeleteDBSubnetGroup",
					"rds:AddTagsToResource",
					"rds:ListTagsForResource",
				},
				Resources: []string{
					env.DBInstanceARN(),
					env.DBSubnetGroupARN(),
				},
			},
			{
				// Describe calls run against the whole account in a region.
				Sid:    "DescribeDatabases",
				Effect: Allow,
				Actions: []string{
					"rds:DescribeDBInstances",
					"rds:DescribeDBSubnetGroups",
					"rds:DescribeDBEngineVersions",
				},
				Resources:  []string{"*"},
				Conditions: regionCondition(env.Region),
			},
		},
	}
}

func objectStoragePolicy(env *config.Environment) Document {
	return Document{
		Name: env.NameFor("object-storage"),
		Statements: []Statement{
			{
				Sid:    "ManageImageBucket",
				Effect: Allow,
				Actions: []string{
					"s3:CreateBucket",
					"s3:DeleteBucket",
					"s3:GetBucketLocation",
					"s3:GetBucketPolicy",
					"s3:PutBucketPolicy",
					"s3:PutBucketCORS",
					"s3:PutBucketPublicAccessBlock",
					"s3:PutBucketVersioning",
					"s3:PutEncryptionConfiguration",
					"s3:PutLifecycleConfiguration",
					"s3:PutBucketTagging",
					"s3:ListBucket",
				},
				Resources: []string{env.BucketARN(false)},
			},
			{
				Sid:    "ManageImageObjects",
				Effect: Allow,
				Actions: []string{
					"s3:GetObject",
					"s3:PutObject",
					"s3:DeleteObject",
					"s3:AbortMultipartUpload",
				},
				Resources: []string{env.BucketARN(true)},
			},
		},
	}
}

func secretStorePolicy(env *config.Environment) Document {
	return Document{
		Name: env.NameFor("secret-store"),
		Statements: []Statement{
			{
				Sid:    "ManageSecrets",
				Effect: Allow,
				Actions: []string{
					"secretsmanager:CreateSecret",
					"secretsmanager:UpdateSecret",
					"secretsmanager:DeleteSecret",
					"secretsmanager:DescribeSecret",
					"secretsmanager:GetSecretValue",
					"secretsmanager:PutSecretValue",
					"secretsmanager:TagResource",
				},
				Resources: []string{env.SecretARNPattern()},
			},
			{
				// ListSecrets has no ARN support.
				Sid:        "ListSecrets",
				Effect:     Allow,
				Actions:    []string{"secretsmanager:ListSecrets"},
				Resources:  []string{"*"},
				Conditions: regionCondition(env.Region),
			},
		},
	}
}
