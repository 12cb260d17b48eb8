package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnvironment(t *testing.T, name string) *Environment {
	t.Helper()
	env, err := Resolve(name, fixtureLookup(map[string]string{
		"NOTES_PREPROD_ACCOUNT_ID": "111111111111",
		"NOTES_PROD_ACCOUNT_ID":    "222222222222",
	}))
	require.NoError(t, err)
	return env
}

func TestNameForUsesPrefix(t *testing.T) {
	env := testEnvironment(t, "preprod")
	assert.Equal(t, "notes-preprod-db", env.NameFor("db"))
	assert.Equal(t, "notes-preprod-vpc", env.NameFor("vpc"))
}

func TestBucketNameIsAccountScoped(t *testing.T) {
	pre := testEnvironment(t, "preprod")
	prod := testEnvironment(t, "prod")

	assert.Contains(t, pre.BucketName(), "preprod")
	assert.Contains(t, pre.BucketName(), pre.AccountID)
	assert.NotEqual(t, pre.BucketName(), prod.BucketName())
}

// Every ARN helper must agree with the name the matching resource is created
// under, otherwise policy scoping silently drifts from resource naming.
func TestARNHelpersEmbedDerivedNames(t *testing.T) {
	env := testEnvironment(t, "prod")

	assert.Contains(t, env.DBInstanceARN(), env.DBIdentifier())
	assert.Contains(t, env.DBSubnetGroupARN(), env.NameFor("db-subnets"))
	assert.Contains(t, env.BucketARN(false), env.BucketName())
	assert.Contains(t, env.RepositoryARN(), env.NameFor("app"))
	assert.Contains(t, env.SecretARNPattern(), env.ResourcePrefix)
	assert.Contains(t, env.ParameterARNPattern(), env.ResourcePrefix)
	assert.Contains(t, env.RoleARNPattern(), env.ResourcePrefix)
	assert.Contains(t, env.StackARNPattern(), env.ResourcePrefix)

	for _, arn := range []string{
		env.DBInstanceARN(),
		env.DBSubnetGroupARN(),
		env.SecretARNPattern(),
		env.ParameterARNPattern(),
		env.RepositoryARN(),
		env.StackARNPattern(),
	} {
		assert.Contains(t, arn, env.AccountID, "arn %s must be account scoped", arn)
		assert.Contains(t, arn, env.Region, "arn %s must be region scoped", arn)
	}
}

func TestParameterPath(t *testing.T) {
	env := testEnvironment(t, "preprod")
	assert.Equal(t, "/notes-preprod/db-endpoint", env.ParameterPath("db-endpoint"))
	assert.True(t, strings.HasPrefix(env.ParameterPath("x"), "/"+env.ResourcePrefix+"/"))
}
