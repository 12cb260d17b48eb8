package main

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/iam"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"notes-app-infra/internal/config"
	"notes-app-infra/internal/policy"
)

// PermissionResources holds the inline policies attached to the deploy role
type PermissionResources struct {
	Policies []*iam.RolePolicy
}

// createPermissionResources renders the assembled policy documents and
// attaches them to the externally managed deployment role. The role itself is
// not created here: it belongs to the account bootstrap, this stack only
// grants it the environment-scoped permissions.
func createPermissionResources(ctx *pulumi.Context, env *config.Environment) (*PermissionResources, error) {
	res := &PermissionResources{}
	for _, doc := range policy.Assemble(env) {
		rendered, err := doc.Render()
		if err != nil {
			return nil, fmt.Errorf("assembling deployment policies: %w", err)
		}
		rp, err := iam.NewRolePolicy(ctx, doc.Name, &iam.RolePolicyArgs{
			Role:   pulumi.String(env.DeployRoleName()),
			Name:   pulumi.String(doc.Name),
			Policy: pulumi.String(rendered),
		})
		if err != nil {
			return nil, fmt.Errorf("attaching policy %s: %w", doc.Name, err)
		}
		res.Policies = append(res.Policies, rp)
	}
	return res, nil
}

// dependency expresses the ordering edge from resource creation back to
// permission attachment: resource stacks must not start before the deploy
// role holds its grants.
func (p *PermissionResources) dependency() pulumi.ResourceOption {
	deps := make([]pulumi.Resource, len(p.Policies))
	for i, rp := range p.Policies {
		deps[i] = rp
	}
	return pulumi.DependsOn(deps)
}
