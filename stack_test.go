package main

import (
	"strings"
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-app-infra/internal/config"
)

func buildEverything(ctx *pulumi.Context, env *config.Environment) error {
	permissions, err := createPermissionResources(ctx, env)
	if err != nil {
		return err
	}
	granted := permissions.dependency()
	network, err := createNetworkResources(ctx, env, granted)
	if err != nil {
		return err
	}
	database, err := createDatabaseResources(ctx, env, network, granted)
	if err != nil {
		return err
	}
	storage, err := createStorageResources(ctx, env, granted)
	if err != nil {
		return err
	}
	if _, err := createRegistryResources(ctx, env, granted); err != nil {
		return err
	}
	return createParameterOutputs(ctx, env, database, storage)
}

// Resource naming is the environment-isolation boundary: every resource the
// stack registers must be named under the environment prefix.
func TestEveryResourceNameCarriesEnvironmentPrefix(t *testing.T) {
	for _, envName := range []string{"preprod", "prod"} {
		t.Run(envName, func(t *testing.T) {
			mocks := runStacks(t, envName, buildEverything)
			env := testEnvironment(t, envName)

			mocks.mu.Lock()
			defer mocks.mu.Unlock()
			require.NotEmpty(t, mocks.resources)
			for _, r := range mocks.resources {
				assert.True(t, strings.HasPrefix(r.Name, env.ResourcePrefix),
					"resource %s (%s) is not scoped by %s", r.Name, r.Token, env.ResourcePrefix)
			}
		})
	}
}

// The NAT EIPs reference no other resource's output, so the only thing
// ordering them after the deployment grants is the explicit dependency edge.
func TestNatAddressesWaitForPermissionGrants(t *testing.T) {
	mocks := runStacks(t, "prod", buildEverything)

	eips := mocks.byToken("aws:ec2/eip:Eip")
	require.NotEmpty(t, eips)
	for _, eip := range eips {
		granted := false
		for _, dep := range eip.Dependencies {
			if strings.Contains(dep, "rolePolicy") {
				granted = true
			}
		}
		assert.True(t, granted, "%s does not wait for the deployment grants: %v", eip.Name, eip.Dependencies)
	}
}

func TestRegistryAndParameterOutputs(t *testing.T) {
	mocks := runStacks(t, "prod", buildEverything)
	env := testEnvironment(t, "prod")

	repos := mocks.byToken("aws:ecr/repository:Repository")
	require.Len(t, repos, 1)
	assert.Equal(t, env.NameFor("app"), repos[0].Inputs[resource.PropertyKey("name")].StringValue())
	assert.Len(t, mocks.byToken("aws:ecr/lifecyclePolicy:LifecyclePolicy"), 1)

	params := mocks.byToken("aws:ssm/parameter:Parameter")
	require.Len(t, params, 3)
	for _, p := range params {
		path := p.Inputs[resource.PropertyKey("name")].StringValue()
		assert.True(t, strings.HasPrefix(path, "/"+env.ResourcePrefix+"/"),
			"parameter %s is outside the environment path", path)
	}
}

func TestPreprodAndProdShapesDiffer(t *testing.T) {
	names := func(envName string) map[string]bool {
		mocks := runStacks(t, envName, buildEverything)
		mocks.mu.Lock()
		defer mocks.mu.Unlock()
		out := make(map[string]bool, len(mocks.resources))
		for _, r := range mocks.resources {
			out[r.Name] = true
		}
		return out
	}

	pre := names("preprod")
	prod := names("prod")
	for name := range pre {
		assert.False(t, prod[name], "resource %s exists in both environments", name)
	}
}
