package main

import (
	"encoding/json"
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/rds"
	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/secretsmanager"
	"github.com/pulumi/pulumi-random/sdk/v4/go/random"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"notes-app-infra/internal/config"
)

const (
	dbEngine        = "postgres"
	dbEngineVersion = "16.4"
	dbName          = "notes"
	dbMasterUser    = "notes_admin"
)

// DatabaseResources holds the RDS instance and its credentials secret
type DatabaseResources struct {
	Instance *rds.Instance
	Secret   *secretsmanager.Secret
}

// createDatabaseResources provisions the PostgreSQL instance in the database
// tier. The master password is generated at deploy time and lives only in
// Secrets Manager; downstream consumers get the secret ARN, never the value.
func createDatabaseResources(ctx *pulumi.Context, env *config.Environment, network *NetworkResources, granted pulumi.ResourceOption) (*DatabaseResources, error) {
	subnetIds := pulumi.StringArray{}
	for _, subnet := range network.DatabaseSubnets {
		subnetIds = append(subnetIds, subnet.ID())
	}
	subnetGroup, err := rds.NewSubnetGroup(ctx, env.NameFor("db-subnets"), &rds.SubnetGroupArgs{
		Name:      pulumi.String(env.NameFor("db-subnets")),
		SubnetIds: subnetIds,
		Tags: pulumi.StringMap{
			"Name":        pulumi.String(env.NameFor("db-subnets")),
			"Environment": pulumi.String(env.Name),
		},
	}, granted)
	if err != nil {
		return nil, fmt.Errorf("creating db subnet group: %w", err)
	}

	// RDS rejects several special characters in master passwords
	password, err := random.NewRandomPassword(ctx, env.NameFor("db-password"), &random.RandomPasswordArgs{
		Length:  pulumi.Int(32),
		Special: pulumi.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("creating db master password: %w", err)
	}

	secret, err := secretsmanager.NewSecret(ctx, env.NameFor("db-credentials"), &secretsmanager.SecretArgs{
		Name:        pulumi.String(env.NameFor("db-credentials")),
		Description: pulumi.String(fmt.Sprintf("Master credentials for the %s notes database", env.Name)),
		Tags: pulumi.StringMap{
			"Name":        pulumi.String(env.NameFor("db-credentials")),
			"Environment": pulumi.String(env.Name),
		},
	}, granted)
	if err != nil {
		return nil, fmt.Errorf("creating db credentials secret: %w", err)
	}

	secretString := password.Result.ApplyT(func(pw string) (string, error) {
		b, err := json.Marshal(map[string]string{
			"username": dbMasterUser,
			"password": pw,
			"dbname":   dbName,
			"engine":   dbEngine,
		})
		if err != nil {
			return "", err
		}
		return string(b), nil
	}).(pulumi.StringOutput)

	_, err = secretsmanager.NewSecretVersion(ctx, env.NameFor("db-credentials-version"), &secretsmanager.SecretVersionArgs{
		SecretId:     secret.ID(),
		SecretString: secretString,
	})
	if err != nil {
		return nil, fmt.Errorf("storing db credentials: %w", err)
	}

	instanceArgs := &rds.InstanceArgs{
		Identifier:            pulumi.String(env.DBIdentifier()),
		Engine:                pulumi.String(dbEngine),
		EngineVersion:         pulumi.String(dbEngineVersion),
		InstanceClass:         pulumi.String(env.DBInstanceClass),
		AllocatedStorage:      pulumi.Int(env.AllocatedStorageGB),
		DbName:                pulumi.String(dbName),
		Username:              pulumi.String(dbMasterUser),
		Password:              password.Result,
		DbSubnetGroupName:     subnetGroup.Name,
		VpcSecurityGroupIds:   pulumi.StringArray{network.DatabaseSecurityGroup.ID()},
		MultiAz:               pulumi.Bool(env.MultiAZ),
		StorageEncrypted:      pulumi.Bool(true),
		PubliclyAccessible:    pulumi.Bool(false),
		BackupRetentionPeriod: pulumi.Int(env.BackupRetentionDays),
		DeletionProtection:    pulumi.Bool(env.DeletionProtection),
		Tags: pulumi.StringMap{
			"Name":        pulumi.String(env.DBIdentifier()),
			"Environment": pulumi.String(env.Name),
		},
	}
	if env.DeletionProtection {
		instanceArgs.FinalSnapshotIdentifier = pulumi.String(env.NameFor("db-final"))
	} else {
		instanceArgs.SkipFinalSnapshot = pulumi.Bool(true)
	}

	instance, err := rds.NewInstance(ctx, env.DBIdentifier(), instanceArgs)
	if err != nil {
		return nil, fmt.Errorf("creating db instance: %w", err)
	}

	return &DatabaseResources{Instance: instance, Secret: secret}, nil
}
