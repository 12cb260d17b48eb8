package main

import (
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-app-infra/internal/config"
)

func buildNetwork(ctx *pulumi.Context, env *config.Environment) error {
	_, err := createNetworkResources(ctx, env, pulumi.DependsOn(nil))
	return err
}

func ingressRules(t *testing.T, sg capturedResource) []resource.PropertyMap {
	t.Helper()
	ingress, ok := sg.Inputs[resource.PropertyKey("ingress")]
	require.True(t, ok, "%s has no ingress", sg.Name)
	var rules []resource.PropertyMap
	for _, v := range ingress.ArrayValue() {
		rules = append(rules, v.ObjectValue())
	}
	return rules
}

func sourceGroups(rule resource.PropertyMap) []string {
	groups, ok := rule[resource.PropertyKey("securityGroups")]
	if !ok {
		return nil
	}
	var out []string
	for _, g := range groups.ArrayValue() {
		out = append(out, g.StringValue())
	}
	return out
}

func TestNetworkTierCounts(t *testing.T) {
	for _, tc := range []struct {
		env       string
		azs, nats int
	}{
		{env: "preprod", azs: 2, nats: 1},
		{env: "prod", azs: 3, nats: 2},
	} {
		t.Run(tc.env, func(t *testing.T) {
			mocks := runStacks(t, tc.env, buildNetwork)

			subnets := mocks.byToken("aws:ec2/subnet:Subnet")
			assert.Len(t, subnets, 3*tc.azs, "one subnet per tier per AZ")
			assert.Len(t, mocks.byToken("aws:ec2/natGateway:NatGateway"), tc.nats)
			assert.Len(t, mocks.byToken("aws:ec2/eip:Eip"), tc.nats)
			assert.Len(t, mocks.byToken("aws:ec2/vpc:Vpc"), 1)
			assert.Len(t, mocks.byToken("aws:ec2/internetGateway:InternetGateway"), 1)
		})
	}
}

// The one structural invariant worth guarding: the database tier accepts
// traffic only from the application tier, never from the public internet or
// the load balancer group.
func TestDatabaseIngressOnlyFromApplicationTier(t *testing.T) {
	for _, envName := range []string{"preprod", "prod"} {
		t.Run(envName, func(t *testing.T) {
			mocks := runStacks(t, envName, buildNetwork)
			env := testEnvironment(t, envName)

			dbSg := mocks.byName(t, env.NameFor("db-sg"))
			rules := ingressRules(t, dbSg)
			require.Len(t, rules, 1)

			rule := rules[0]
			assert.Equal(t, float64(dbPort), rule[resource.PropertyKey("fromPort")].NumberValue())
			assert.Equal(t, float64(dbPort), rule[resource.PropertyKey("toPort")].NumberValue())

			sources := sourceGroups(rule)
			require.Len(t, sources, 1)
			assert.Equal(t, env.NameFor("app-sg")+"_id", sources[0])

			_, hasCidrs := rule[resource.PropertyKey("cidrBlocks")]
			assert.False(t, hasCidrs, "database ingress must not be CIDR based")
		})
	}
}

func TestApplicationIngressOnlyFromLoadBalancer(t *testing.T) {
	mocks := runStacks(t, "prod", buildNetwork)
	env := testEnvironment(t, "prod")

	appSg := mocks.byName(t, env.NameFor("app-sg"))
	rules := ingressRules(t, appSg)
	require.Len(t, rules, 1)

	rule := rules[0]
	assert.Equal(t, float64(appPort), rule[resource.PropertyKey("fromPort")].NumberValue())
	sources := sourceGroups(rule)
	require.Len(t, sources, 1)
	assert.Equal(t, env.NameFor("lb-sg")+"_id", sources[0])
}

func TestLoadBalancerAcceptsPublicHTTP(t *testing.T) {
	mocks := runStacks(t, "prod", buildNetwork)
	env := testEnvironment(t, "prod")

	lbSg := mocks.byName(t, env.NameFor("lb-sg"))
	rules := ingressRules(t, lbSg)
	require.Len(t, rules, 2)

	ports := map[float64]bool{}
	for _, rule := range rules {
		ports[rule[resource.PropertyKey("fromPort")].NumberValue()] = true
		cidrs := rule[resource.PropertyKey("cidrBlocks")].ArrayValue()
		require.Len(t, cidrs, 1)
		assert.Equal(t, "0.0.0.0/0", cidrs[0].StringValue())
	}
	assert.True(t, ports[80])
	assert.True(t, ports[443])
}

// Building twice with the same config registers structurally identical
// resources: no hidden counters or timestamps leak into resource shape.
func TestNetworkBuildIsIdempotent(t *testing.T) {
	shape := func() map[string]string {
		mocks := runStacks(t, "prod", buildNetwork)
		mocks.mu.Lock()
		defer mocks.mu.Unlock()
		out := make(map[string]string, len(mocks.resources))
		for _, r := range mocks.resources {
			out[r.Name] = r.Token
		}
		return out
	}
	assert.Equal(t, shape(), shape())
}
