package main

import (
	"sync"
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/require"

	"notes-app-infra/internal/config"
)

type capturedResource struct {
	Token        string
	Name         string
	Inputs       resource.PropertyMap
	Dependencies []string
}

type deployMocks struct {
	mu        sync.Mutex
	resources []capturedResource
}

func (m *deployMocks) NewResource(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
	m.mu.Lock()
	m.resources = append(m.resources, capturedResource{
		Token:        args.TypeToken,
		Name:         args.Name,
		Inputs:       args.Inputs,
		Dependencies: args.RegisterRPC.GetDependencies(),
	})
	m.mu.Unlock()

	outputs := args.Inputs
	// Synthesize outputs the engine would compute
	if args.TypeToken == "random:index/randomPassword:RandomPassword" {
		outputs = outputs.Copy()
		outputs[resource.PropertyKey("result")] = resource.NewStringProperty("mock-generated-password")
	}
	return args.Name + "_id", outputs, nil
}

func (m *deployMocks) Call(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
	return resource.PropertyMap{}, nil
}

func (m *deployMocks) byToken(token string) []capturedResource {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []capturedResource
	for _, r := range m.resources {
		if r.Token == token {
			matched = append(matched, r)
		}
	}
	return matched
}

func (m *deployMocks) byName(t *testing.T, name string) capturedResource {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.resources {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no resource registered under name %s", name)
	return capturedResource{}
}

func testEnvironment(t *testing.T, name string) *config.Environment {
	t.Helper()
	env, err := config.Resolve(name, func(key string) (string, bool) {
		v, ok := map[string]string{
			"NOTES_PREPROD_ACCOUNT_ID": "111111111111",
			"NOTES_PROD_ACCOUNT_ID":    "222222222222",
		}[key]
		return v, ok
	})
	require.NoError(t, err)
	return env
}

// runStacks executes a stack-building function against the mock engine and
// returns everything it registered.
func runStacks(t *testing.T, envName string, build func(ctx *pulumi.Context, env *config.Environment) error) *deployMocks {
	t.Helper()
	env := testEnvironment(t, envName)
	mocks := &deployMocks{}
	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		return build(ctx, env)
	}, pulumi.WithMocks("notes-app-infra", envName, mocks))
	require.NoError(t, err)
	return mocks
}
