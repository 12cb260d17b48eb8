package main

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/ecr"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"notes-app-infra/internal/config"
)

// RegistryResources holds the application image repository
type RegistryResources struct {
	Repository *ecr.Repository
}

// createRegistryResources creates the ECR repository the application image is
// pushed to, keeping only the most recent images.
func createRegistryResources(ctx *pulumi.Context, env *config.Environment, granted pulumi.ResourceOption) (*RegistryResources, error) {
	repo, err := ecr.NewRepository(ctx, env.NameFor("app"), &ecr.RepositoryArgs{
		Name: pulumi.String(env.NameFor("app")),
		ImageScanningConfiguration: &ecr.RepositoryImageScanningConfigurationArgs{
			ScanOnPush: pulumi.Bool(true),
		},
		ImageTagMutability: pulumi.String("MUTABLE"),
		Tags: pulumi.StringMap{
			"Name":        pulumi.String(env.NameFor("app")),
			"Environment": pulumi.String(env.Name),
		},
	}, granted)
	if err != nil {
		return nil, fmt.Errorf("creating app repository: %w", err)
	}

	_, err = ecr.NewLifecyclePolicy(ctx, env.NameFor("app-lifecycle"), &ecr.LifecyclePolicyArgs{
		Repository: repo.Name,
		Policy: pulumi.String(`{
			"rules": [{
				"rulePriority": 1,
				"description": "Keep the last 10 images",
				"selection": {
					"tagStatus": "any",
					"countType": "imageCountMoreThan",
					"countNumber": 10
				},
				"action": {
					"type": "expire"
				}
			}]
		}`),
	})
	if err != nil {
		return nil, fmt.Errorf("creating app repository lifecycle policy: %w", err)
	}

	return &RegistryResources{Repository: repo}, nil
}
