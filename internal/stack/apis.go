package stack

import (
	"github.com/pulumi/pulumi-gcp/sdk/v8/go/gcp/projects"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/n8n-self-host/n8n-gcp/internal/constants"
	"github.com/n8n-self-host/n8n-gcp/internal/graph"
)

var requiredAPIs = []struct {
	resource string
	service  string
}{
	{constants.ResourceRunAPI, constants.APIRun},
	{constants.ResourceSQLAdminAPI, constants.APISQLAdmin},
	{constants.ResourceSecretManagerAPI, constants.APISecretManager},
	{constants.ResourceResourceManagerAPI, constants.APIResourceManager},
}

// APIs holds the activation tokens of the enabled provider APIs.
type APIs struct {
	Run             *projects.Service
	SQLAdmin        *projects.Service
	SecretManager   *projects.Service
	ResourceManager *projects.Service
}

// All returns every activation token, for use as a prerequisite list.
func (a *APIs) All() []pulumi.Resource {
	return []pulumi.Resource{a.Run, a.SQLAdmin, a.SecretManager, a.ResourceManager}
}

// EnableServices enables the provider APIs on project. APIs are left enabled on teardown,
// since other workloads in the project may rely on them.
func EnableServices(ctx *pulumi.Context, ledger *graph.Ledger, project string) (*APIs, error) {
	enabled := make(map[string]*projects.Service, len(requiredAPIs))

	for _, api := range requiredAPIs {
		if err := ledger.Declare(api.resource); err != nil {
			return nil, err
		}

		svc, err := projects.NewService(ctx, api.resource, &projects.ServiceArgs{
			Project:          pulumi.String(project),
			Service:          pulumi.String(api.service),
			DisableOnDestroy: pulumi.Bool(false),
		})
		if err != nil {
			return nil, err
		}
		enabled[api.resource] = svc
	}

	return &APIs{
		Run:             enabled[constants.ResourceRunAPI],
		SQLAdmin:        enabled[constants.ResourceSQLAdminAPI],
		SecretManager:   enabled[constants.ResourceSecretManagerAPI],
		ResourceManager: enabled[constants.ResourceResourceManagerAPI],
	}, nil
}
