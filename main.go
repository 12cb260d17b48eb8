package main

import (
	"os"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	pulumicfg "github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"

	"notes-app-infra/internal/config"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		// The environment selector comes from stack config; everything else
		// about an environment is derived from it.
		envName := pulumicfg.Get(ctx, "notes:environment")
		if envName == "" {
			return &config.ConfigurationError{Detail: "stack config notes:environment is not set (expected preprod or prod)"}
		}
		env, err := config.Resolve(envName, os.LookupEnv)
		if err != nil {
			return err
		}

		// 1. Attach deployment permissions. Every resource stack depends on
		// this so nothing is created before the deploy role holds its grants.
		permissions, err := createPermissionResources(ctx, env)
		if err != nil {
			return err
		}
		granted := permissions.dependency()

		// 2. Create the 3-tier network
		network, err := createNetworkResources(ctx, env, granted)
		if err != nil {
			return err
		}

		// 3. Create the database and its credentials secret
		database, err := createDatabaseResources(ctx, env, network, granted)
		if err != nil {
			return err
		}

		// 4. Create the image bucket
		storage, err := createStorageResources(ctx, env, granted)
		if err != nil {
			return err
		}

		// 5. Create the application image repository
		registry, err := createRegistryResources(ctx, env, granted)
		if err != nil {
			return err
		}

		// 6. Publish connection configuration for the application layer
		if err := createParameterOutputs(ctx, env, database, storage); err != nil {
			return err
		}

		// Export network outputs
		ctx.Export("vpcId", network.Vpc.ID())
		ctx.Export("publicSubnetIds", subnetIDs(network.PublicSubnets))
		ctx.Export("appSubnetIds", subnetIDs(network.AppSubnets))
		ctx.Export("databaseSubnetIds", subnetIDs(network.DatabaseSubnets))
		ctx.Export("lbSecurityGroupId", network.LbSecurityGroup.ID())
		ctx.Export("appSecurityGroupId", network.AppSecurityGroup.ID())
		ctx.Export("databaseSecurityGroupId", network.DatabaseSecurityGroup.ID())

		// Export database outputs
		ctx.Export("dbEndpoint", database.Instance.Endpoint)
		ctx.Export("dbPort", database.Instance.Port)
		ctx.Export("dbSecretArn", database.Secret.Arn)

		// Export storage and registry outputs
		ctx.Export("imageBucketName", storage.Bucket.ID())
		ctx.Export("imageBucketArn", storage.Bucket.Arn)
		ctx.Export("appRepositoryUrl", registry.Repository.RepositoryUrl)

		return nil
	})
}
