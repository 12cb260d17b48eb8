package main

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/ssm"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"notes-app-infra/internal/config"
)

// createParameterOutputs publishes connection configuration to SSM Parameter
// Store under the environment path, where the application layer reads it.
func createParameterOutputs(ctx *pulumi.Context, env *config.Environment, database *DatabaseResources, storage *StorageResources) error {
	params := []struct {
		name  string
		leaf  string
		value pulumi.StringInput
	}{
		{"db-endpoint-param", "db-endpoint", database.Instance.Endpoint},
		{"db-secret-arn-param", "db-secret-arn", database.Secret.Arn},
		{"image-bucket-param", "image-bucket-name", storage.Bucket.Bucket},
	}
	for _, p := range params {
		_, err := ssm.NewParameter(ctx, env.NameFor(p.name), &ssm.ParameterArgs{
			Name:  pulumi.String(env.ParameterPath(p.leaf)),
			Type:  pulumi.String("String"),
			Value: p.value,
			Tags: pulumi.StringMap{
				"Name":        pulumi.String(env.NameFor(p.name)),
				"Environment": pulumi.String(env.Name),
			},
		})
		if err != nil {
			return fmt.Errorf("publishing parameter %s: %w", p.leaf, err)
		}
	}
	return nil
}
