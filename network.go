package main

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v5/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"notes-app-infra/internal/config"
)

const (
	vpcCidr = "10.0.0.0/16"
	appPort = 3000
	dbPort  = 5432
)

// NetworkResources holds the 3-tier network: public subnets for the load
// balancer, application subnets behind NAT, and database subnets with no
// route out of the VPC.
type NetworkResources struct {
	Vpc                   *ec2.Vpc
	PublicSubnets         []*ec2.Subnet
	AppSubnets            []*ec2.Subnet
	DatabaseSubnets       []*ec2.Subnet
	LbSecurityGroup       *ec2.SecurityGroup
	AppSecurityGroup      *ec2.SecurityGroup
	DatabaseSecurityGroup *ec2.SecurityGroup
}

// createNetworkResources builds the VPC and its tiers. Reachability is
// strictly one-directional: internet -> load balancer -> application ->
// database.
func createNetworkResources(ctx *pulumi.Context, env *config.Environment, granted pulumi.ResourceOption) (*NetworkResources, error) {
	tags := func(kind string) pulumi.StringMap {
		return pulumi.StringMap{
			"Name":        pulumi.String(env.NameFor(kind)),
			"Environment": pulumi.String(env.Name),
		}
	}

	vpc, err := ec2.NewVpc(ctx, env.NameFor("vpc"), &ec2.VpcArgs{
		CidrBlock:          pulumi.String(vpcCidr),
		EnableDnsSupport:   pulumi.Bool(true),
		EnableDnsHostnames: pulumi.Bool(true),
		Tags:               tags("vpc"),
	}, granted)
	if err != nil {
		return nil, fmt.Errorf("creating vpc: %w", err)
	}

	igw, err := ec2.NewInternetGateway(ctx, env.NameFor("igw"), &ec2.InternetGatewayArgs{
		VpcId: vpc.ID(),
		Tags:  tags("igw"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating internet gateway: %w", err)
	}

	res := &NetworkResources{Vpc: vpc}

	// One subnet per tier per availability zone. CIDR blocks are carved by
	// tier offset so the layout stays stable when an AZ is added.
	for i := 0; i < env.AvailabilityZones; i++ {
		az := fmt.Sprintf("%s%c", env.Region, 'a'+i)

		public, err := ec2.NewSubnet(ctx, fmt.Sprintf("%s-%d", env.NameFor("public"), i), &ec2.SubnetArgs{
			VpcId:               vpc.ID(),
			CidrBlock:           pulumi.String(fmt.Sprintf("10.0.%d.0/24", i)),
			AvailabilityZone:    pulumi.String(az),
			MapPublicIpOnLaunch: pulumi.Bool(true),
			Tags:                tags(fmt.Sprintf("public-%d", i)),
		})
		if err != nil {
			return nil, fmt.Errorf("creating public subnet %d: %w", i, err)
		}
		res.PublicSubnets = append(res.PublicSubnets, public)

		app, err := ec2.NewSubnet(ctx, fmt.Sprintf("%s-%d", env.NameFor("app"), i), &ec2.SubnetArgs{
			VpcId:            vpc.ID(),
			CidrBlock:        pulumi.String(fmt.Sprintf("10.0.%d.0/24", 10+i)),
			AvailabilityZone: pulumi.String(az),
			Tags:             tags(fmt.Sprintf("app-%d", i)),
		})
		if err != nil {
			return nil, fmt.Errorf("creating app subnet %d: %w", i, err)
		}
		res.AppSubnets = append(res.AppSubnets, app)

		database, err := ec2.NewSubnet(ctx, fmt.Sprintf("%s-%d", env.NameFor("database"), i), &ec2.SubnetArgs{
			VpcId:            vpc.ID(),
			CidrBlock:        pulumi.String(fmt.Sprintf("10.0.%d.0/24", 20+i)),
			AvailabilityZone: pulumi.String(az),
			Tags:             tags(fmt.Sprintf("database-%d", i)),
		})
		if err != nil {
			return nil, fmt.Errorf("creating database subnet %d: %w", i, err)
		}
		res.DatabaseSubnets = append(res.DatabaseSubnets, database)
	}

	// Public route table sends everything through the internet gateway
	publicRt, err := ec2.NewRouteTable(ctx, env.NameFor("public-rt"), &ec2.RouteTableArgs{
		VpcId: vpc.ID(),
		Routes: ec2.RouteTableRouteArray{
			&ec2.RouteTableRouteArgs{
				CidrBlock: pulumi.String("0.0.0.0/0"),
				GatewayId: igw.ID(),
			},
		},
		Tags: tags("public-rt"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating public route table: %w", err)
	}
	for i, subnet := range res.PublicSubnets {
		_, err = ec2.NewRouteTableAssociation(ctx, fmt.Sprintf("%s-%d", env.NameFor("public-rt-assoc"), i), &ec2.RouteTableAssociationArgs{
			SubnetId:     subnet.ID(),
			RouteTableId: publicRt.ID(),
		})
		if err != nil {
			return nil, fmt.Errorf("associating public subnet %d: %w", i, err)
		}
	}

	// NAT gateways for the application tier. Production runs one per app
	// route table for redundancy, preprod runs a single shared one.
	appRts := make([]*ec2.RouteTable, 0, env.NatGateways)
	for i := 0; i < env.NatGateways; i++ {
		eip, err := ec2.NewEip(ctx, fmt.Sprintf("%s-%d", env.NameFor("nat-eip"), i), &ec2.EipArgs{
			Vpc:  pulumi.Bool(true),
			Tags: tags(fmt.Sprintf("nat-eip-%d", i)),
		}, granted)
		if err != nil {
			return nil, fmt.Errorf("creating nat eip %d: %w", i, err)
		}
		nat, err := ec2.NewNatGateway(ctx, fmt.Sprintf("%s-%d", env.NameFor("nat"), i), &ec2.NatGatewayArgs{
			AllocationId: eip.ID(),
			SubnetId:     res.PublicSubnets[i].ID(),
			Tags:         tags(fmt.Sprintf("nat-%d", i)),
		})
		if err != nil {
			return nil, fmt.Errorf("creating nat gateway %d: %w", i, err)
		}
		rt, err := ec2.NewRouteTable(ctx, fmt.Sprintf("%s-%d", env.NameFor("app-rt"), i), &ec2.RouteTableArgs{
			VpcId: vpc.ID(),
			Routes: ec2.RouteTableRouteArray{
				&ec2.RouteTableRouteArgs{
					CidrBlock:    pulumi.String("0.0.0.0/0"),
					NatGatewayId: nat.ID(),
				},
			},
			Tags: tags(fmt.Sprintf("app-rt-%d", i)),
		})
		if err != nil {
			return nil, fmt.Errorf("creating app route table %d: %w", i, err)
		}
		appRts = append(appRts, rt)
	}
	for i, subnet := range res.AppSubnets {
		_, err = ec2.NewRouteTableAssociation(ctx, fmt.Sprintf("%s-%d", env.NameFor("app-rt-assoc"), i), &ec2.RouteTableAssociationArgs{
			SubnetId:     subnet.ID(),
			RouteTableId: appRts[i%len(appRts)].ID(),
		})
		if err != nil {
			return nil, fmt.Errorf("associating app subnet %d: %w", i, err)
		}
	}

	// Database route table carries no route out of the VPC
	databaseRt, err := ec2.NewRouteTable(ctx, env.NameFor("database-rt"), &ec2.RouteTableArgs{
		VpcId: vpc.ID(),
		Tags:  tags("database-rt"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating database route table: %w", err)
	}
	for i, subnet := range res.DatabaseSubnets {
		_, err = ec2.NewRouteTableAssociation(ctx, fmt.Sprintf("%s-%d", env.NameFor("database-rt-assoc"), i), &ec2.RouteTableAssociationArgs{
			SubnetId:     subnet.ID(),
			RouteTableId: databaseRt.ID(),
		})
		if err != nil {
			return nil, fmt.Errorf("associating database subnet %d: %w", i, err)
		}
	}

	// Load balancer security group: public HTTP/HTTPS inbound
	lbSg, err := ec2.NewSecurityGroup(ctx, env.NameFor("lb-sg"), &ec2.SecurityGroupArgs{
		VpcId:       vpc.ID(),
		Description: pulumi.String("Load balancer security group"),
		Ingress: ec2.SecurityGroupIngressArray{
			&ec2.SecurityGroupIngressArgs{
				Protocol:    pulumi.String("tcp"),
				FromPort:    pulumi.Int(80),
				ToPort:      pulumi.Int(80),
				CidrBlocks:  pulumi.StringArray{pulumi.String("0.0.0.0/0")},
				Description: pulumi.String("HTTP from anywhere"),
			},
			&ec2.SecurityGroupIngressArgs{
				Protocol:    pulumi.String("tcp"),
				FromPort:    pulumi.Int(443),
				ToPort:      pulumi.Int(443),
				CidrBlocks:  pulumi.StringArray{pulumi.String("0.0.0.0/0")},
				Description: pulumi.String("HTTPS from anywhere"),
			},
		},
		Egress: ec2.SecurityGroupEgressArray{
			&ec2.SecurityGroupEgressArgs{
				Protocol:    pulumi.String("-1"),
				FromPort:    pulumi.Int(0),
				ToPort:      pulumi.Int(0),
				CidrBlocks:  pulumi.StringArray{pulumi.String("0.0.0.0/0")},
				Description: pulumi.String("Allow all outbound traffic"),
			},
		},
		Tags: tags("lb-sg"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating lb security group: %w", err)
	}
	res.LbSecurityGroup = lbSg

	// Application security group: inbound only from the load balancer
	appSg, err := ec2.NewSecurityGroup(ctx, env.NameFor("app-sg"), &ec2.SecurityGroupArgs{
		VpcId:       vpc.ID(),
		Description: pulumi.String("Application tier security group"),
		Ingress: ec2.SecurityGroupIngressArray{
			&ec2.SecurityGroupIngressArgs{
				Protocol:       pulumi.String("tcp"),
				FromPort:       pulumi.Int(appPort),
				ToPort:         pulumi.Int(appPort),
				SecurityGroups: pulumi.StringArray{lbSg.ID()},
				Description:    pulumi.String("App traffic from load balancer"),
			},
		},
		Egress: ec2.SecurityGroupEgressArray{
			&ec2.SecurityGroupEgressArgs{
				Protocol:    pulumi.String("-1"),
				FromPort:    pulumi.Int(0),
				ToPort:      pulumi.Int(0),
				CidrBlocks:  pulumi.StringArray{pulumi.String("0.0.0.0/0")},
				Description: pulumi.String("Allow all outbound traffic"),
			},
		},
		Tags: tags("app-sg"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating app security group: %w", err)
	}
	res.AppSecurityGroup = appSg

	// Database security group: inbound only from the application tier on the
	// database port, nothing else, ever.
	dbSg, err := ec2.NewSecurityGroup(ctx, env.NameFor("db-sg"), &ec2.SecurityGroupArgs{
		VpcId:       vpc.ID(),
		Description: pulumi.String("Database security group"),
		Ingress: ec2.SecurityGroupIngressArray{
			&ec2.SecurityGroupIngressArgs{
				Protocol:       pulumi.String("tcp"),
				FromPort:       pulumi.Int(dbPort),
				ToPort:         pulumi.Int(dbPort),
				SecurityGroups: pulumi.StringArray{appSg.ID()},
				Description:    pulumi.String("PostgreSQL from application tier"),
			},
		},
		Egress: ec2.SecurityGroupEgressArray{
			&ec2.SecurityGroupEgressArgs{
				Protocol:       pulumi.String("tcp"),
				FromPort:       pulumi.Int(dbPort),
				ToPort:         pulumi.Int(dbPort),
				SecurityGroups: pulumi.StringArray{appSg.ID()},
				Description:    pulumi.String("Responses to application tier"),
			},
		},
		Tags: tags("db-sg"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating database security group: %w", err)
	}
	res.DatabaseSecurityGroup = dbSg

	return res, nil
}

// subnetIDs flattens subnet resources into an exported id list.
func subnetIDs(subnets []*ec2.Subnet) pulumi.StringArrayOutput {
	ids := make([]interface{}, len(subnets))
	for i, s := range subnets {
		ids[i] = s.ID()
	}
	return pulumi.All(ids...).ApplyT(func(vs []interface{}) []string {
		out := make([]string, len(vs))
		for i, v := range vs {
			out[i] = string(v.(pulumi.ID))
		}
		return out
	}).(pulumi.StringArrayOutput)
}
