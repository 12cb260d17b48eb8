// Command preflight validates the deployment configuration for an
// environment before pulumi runs, so a missing account id or wrong
// credentials fail in CI instead of mid-deploy.
//
// Usage:
//
//	preflight validate --env preprod
//	preflight validate --env prod --check-account
package main

import (
	"context"
	"fmt"
	"os"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/cobra"

	"notes-app-infra/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "preflight",
		Short: "Validate notes deployment configuration",
	}
	rootCmd.AddCommand(newValidateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newValidateCmd() *cobra.Command {
	var envName string
	var checkAccount bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Resolve an environment and verify its required inputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.Resolve(envName, os.LookupEnv)
			if err != nil {
				return err
			}
			if checkAccount {
				if err := verifyAccount(cmd.Context(), env); err != nil {
					return err
				}
			}
			printEnvironment(cmd, env)
			return nil
		},
	}
	cmd.Flags().StringVar(&envName, "env", "", "environment to validate (preprod or prod)")
	_ = cmd.MarkFlagRequired("env")
	cmd.Flags().BoolVar(&checkAccount, "check-account", false, "verify the configured account id against the active AWS credentials")
	return cmd
}

// verifyAccount compares the resolved account id with the identity behind
// the active credentials, catching deploys pointed at the wrong account.
func verifyAccount(ctx context.Context, env *config.Environment) error {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(env.Region))
	if err != nil {
		return fmt.Errorf("loading AWS configuration: %w", err)
	}
	out, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("calling sts GetCallerIdentity: %w", err)
	}
	actual := awsv2.ToString(out.Account)
	if actual != env.AccountID {
		return fmt.Errorf("active credentials belong to account %s but environment %s expects %s", actual, env.Name, env.AccountID)
	}
	return nil
}

func printEnvironment(cmd *cobra.Command, env *config.Environment) {
	cmd.Printf("environment:         %s\n", env.Name)
	cmd.Printf("account:             %s\n", env.AccountID)
	cmd.Printf("region:              %s\n", env.Region)
	cmd.Printf("resource prefix:     %s\n", env.ResourcePrefix)
	cmd.Printf("db instance class:   %s\n", env.DBInstanceClass)
	cmd.Printf("multi-az:            %t\n", env.MultiAZ)
	cmd.Printf("deletion protection: %t\n", env.DeletionProtection)
	cmd.Printf("allocated storage:   %d GB\n", env.AllocatedStorageGB)
	cmd.Printf("backup retention:    %d days\n", env.BackupRetentionDays)
	cmd.Printf("availability zones:  %d\n", env.AvailabilityZones)
	cmd.Printf("nat gateways:        %d\n", env.NatGateways)
}
