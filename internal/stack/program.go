package stack

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/n8n-self-host/n8n-gcp/internal/config"
	"github.com/n8n-self-host/n8n-gcp/internal/constants"
	apperrors "github.com/n8n-self-host/n8n-gcp/internal/errors"
	"github.com/n8n-self-host/n8n-gcp/internal/graph"
	"github.com/n8n-self-host/n8n-gcp/internal/policy"
)

// Deployment is every component declared by Provision.
type Deployment struct {
	Plan     *graph.Graph
	Ledger   *graph.Ledger
	APIs     *APIs
	Identity *Identity
	Database *Database
	Secrets  *Secrets
	Service  *Service
}

// Program is the Pulumi program: it loads the stack configuration and provisions the deployment.
// Configuration errors abort before any resource is registered.
func Program(ctx *pulumi.Context) error {
	cfg, err := config.Load(config.NewPulumiSource(ctx))
	if err != nil {
		return err
	}

	_, err = Provision(ctx, cfg)
	return err
}

// Audit builds the plan for cfg and checks its role grants against the least-privilege policy.
func Audit(cfg *config.DeploymentConfig, logger *slog.Logger) (*graph.Graph, error) {
	g, err := Plan(cfg)
	if err != nil {
		return nil, err
	}

	enforcer, err := policy.NewEnforcer(logger)
	if err != nil {
		return nil, err
	}
	if err := enforcer.CheckGrants(g); err != nil {
		return nil, err
	}

	return g, nil
}

// Provision declares the whole deployment for cfg and exports the stack outputs.
func Provision(ctx *pulumi.Context, cfg *config.DeploymentConfig) (*Deployment, error) {
	g, err := Audit(cfg, slog.Default())
	if err != nil {
		return nil, err
	}

	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	slog.Debug("deployment plan ready", "resources", len(g.Nodes()), "levels", len(levels))

	ledger := graph.NewLedger(g)
	d := &Deployment{Plan: g, Ledger: ledger}

	d.APIs, err = EnableServices(ctx, ledger, cfg.GCP.Project)
	if err != nil {
		return nil, err
	}

	d.Identity, err = ProvisionIdentity(ctx, ledger, IdentityArgs{
		Project:     cfg.GCP.Project,
		AccountID:   cfg.CloudRun.ServiceAccountName,
		DisplayName: constants.ServiceAccountDisplay,
		DependsOn:   []pulumi.Resource{d.APIs.ResourceManager},
	})
	if err != nil {
		return nil, err
	}

	d.Database, err = ProvisionDatabase(ctx, ledger, cfg, d.APIs.SQLAdmin)
	if err != nil {
		return nil, err
	}

	d.Secrets, err = ProvisionSecrets(ctx, ledger, SecretsArgs{
		Project:          cfg.GCP.Project,
		Prefix:           cfg.SecretPrefix(),
		DBPassword:       d.Database.Password.Result,
		Account:          d.Identity.Account,
		SecretManagerAPI: d.APIs.SecretManager,
	})
	if err != nil {
		return nil, err
	}

	d.Service, err = DeployService(ctx, ledger, ServiceArgs{
		Config:   cfg,
		APIs:     d.APIs,
		Identity: d.Identity,
		Database: d.Database,
		Secrets:  d.Secrets,
	})
	if err != nil {
		return nil, err
	}

	if pending := ledger.Pending(); len(pending) > 0 {
		return nil, apperrors.ErrDependencyOrdering(
			fmt.Sprintf("planned resources never declared: %s", strings.Join(pending, ", ")), nil)
	}

	ctx.Export(constants.OutputServiceURL, d.Service.Service.Uri)
	ctx.Export(constants.OutputConnectionName, d.Database.ConnectionName())
	ctx.Export(constants.OutputServiceAccountEmail, d.Identity.Account.Email)
	ctx.Export(constants.OutputServiceHost, d.Service.ServiceHost)
	ctx.Export(constants.OutputDerivedServiceURL, d.Service.ServiceURL)

	return d, nil
}
