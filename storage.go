package main

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/s3"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"notes-app-infra/internal/config"
)

// StorageResources holds the image bucket and its public access guard
type StorageResources struct {
	Bucket *s3.Bucket
}

// createStorageResources provisions the bucket holding note image uploads.
// Public access is blocked wholesale; the application layer serves images
// through presigned URLs.
func createStorageResources(ctx *pulumi.Context, env *config.Environment, granted pulumi.ResourceOption) (*StorageResources, error) {
	bucket, err := s3.NewBucket(ctx, env.NameFor("images"), &s3.BucketArgs{
		Bucket: pulumi.String(env.BucketName()),
		Acl:    pulumi.String("private"),
		ServerSideEncryptionConfiguration: &s3.BucketServerSideEncryptionConfigurationArgs{
			Rule: &s3.BucketServerSideEncryptionConfigurationRuleArgs{
				ApplyServerSideEncryptionByDefault: &s3.BucketServerSideEncryptionConfigurationRuleApplyServerSideEncryptionByDefaultArgs{
					SseAlgorithm: pulumi.String("AES256"),
				},
			},
		},
		Versioning: &s3.BucketVersioningArgs{
			Enabled: pulumi.Bool(env.DeletionProtection),
		},
		CorsRules: s3.BucketCorsRuleArray{
			&s3.BucketCorsRuleArgs{
				AllowedHeaders: pulumi.StringArray{pulumi.String("*")},
				AllowedMethods: pulumi.StringArray{
					pulumi.String("GET"),
					pulumi.String("PUT"),
					pulumi.String("POST"),
				},
				AllowedOrigins: pulumi.StringArray{pulumi.String("*")},
				MaxAgeSeconds:  pulumi.Int(3600),
			},
		},
		LifecycleRules: s3.BucketLifecycleRuleArray{
			// Abandoned browser uploads would otherwise accumulate forever
			&s3.BucketLifecycleRuleArgs{
				Id:                                 pulumi.String("abort-incomplete-uploads"),
				Enabled:                            pulumi.Bool(true),
				AbortIncompleteMultipartUploadDays: pulumi.Int(1),
			},
		},
		Tags: pulumi.StringMap{
			"Name":        pulumi.String(env.NameFor("images")),
			"Environment": pulumi.String(env.Name),
		},
	}, granted)
	if err != nil {
		return nil, fmt.Errorf("creating image bucket: %w", err)
	}

	_, err = s3.NewBucketPublicAccessBlock(ctx, env.NameFor("images-pab"), &s3.BucketPublicAccessBlockArgs{
		Bucket:                bucket.ID(),
		BlockPublicAcls:       pulumi.Bool(true),
		BlockPublicPolicy:     pulumi.Bool(true),
		IgnorePublicAcls:      pulumi.Bool(true),
		RestrictPublicBuckets: pulumi.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("blocking public access on image bucket: %w", err)
	}

	return &StorageResources{Bucket: bucket}, nil
}
