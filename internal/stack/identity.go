package stack

import (
	"github.com/pulumi/pulumi-gcp/sdk/v8/go/gcp/projects"
	"github.com/pulumi/pulumi-gcp/sdk/v8/go/gcp/serviceaccount"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/n8n-self-host/n8n-gcp/internal/constants"
	"github.com/n8n-self-host/n8n-gcp/internal/graph"
)

// IdentityArgs describes the service identity of the n8n service.
type IdentityArgs struct {
	Project     string
	AccountID   string
	DisplayName string
	// DependsOn optionally gates the account on other resources.
	DependsOn []pulumi.Resource
}

// Identity is the service account and its database-client grant.
type Identity struct {
	Account       *serviceaccount.Account
	SQLClientRole *projects.IAMMember
}

// Member is the IAM member expression of the account, built from its deferred email.
func (i *Identity) Member() pulumi.StringOutput {
	return serviceAccountMember(i.Account)
}

func serviceAccountMember(account *serviceaccount.Account) pulumi.StringOutput {
	return pulumi.Sprintf("%s%s", constants.ServiceAccountScope, account.Email)
}

// ProvisionIdentity declares the service account and grants it the Cloud SQL client role.
func ProvisionIdentity(ctx *pulumi.Context, ledger *graph.Ledger, args IdentityArgs) (*Identity, error) {
	var opts []pulumi.ResourceOption
	if len(args.DependsOn) > 0 {
		opts = append(opts, pulumi.DependsOn(args.DependsOn))
	}

	if err := ledger.Declare(constants.ResourceServiceAccount); err != nil {
		return nil, err
	}
	account, err := serviceaccount.NewAccount(ctx, constants.ResourceServiceAccount, &serviceaccount.AccountArgs{
		Project:     pulumi.String(args.Project),
		AccountId:   pulumi.String(args.AccountID),
		DisplayName: pulumi.String(args.DisplayName),
	}, opts...)
	if err != nil {
		return nil, err
	}

	if err := ledger.Declare(constants.ResourceSQLClientRole); err != nil {
		return nil, err
	}
	sqlClientRole, err := projects.NewIAMMember(ctx, constants.ResourceSQLClientRole, &projects.IAMMemberArgs{
		Project: pulumi.String(args.Project),
		Role:    pulumi.String(constants.RoleCloudSQLClient),
		Member:  serviceAccountMember(account),
	}, pulumi.DependsOn([]pulumi.Resource{account}))
	if err != nil {
		return nil, err
	}

	return &Identity{
		Account:       account,
		SQLClientRole: sqlClientRole,
	}, nil
}
