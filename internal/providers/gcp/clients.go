package gcp

import (
	"context"
	"fmt"
	"time"

	resourcemanager "cloud.google.com/go/resourcemanager/apiv3"
	"cloud.google.com/go/resourcemanager/apiv3/resourcemanagerpb"
	"google.golang.org/api/serviceusage/v1"

	"github.com/n8n-self-host/n8n-gcp/internal/providers/gcp/constants"
)

// ProjectsClient reads projects from Resource Manager.
type ProjectsClient interface {
	GetProject(ctx context.Context, name string) (*resourcemanagerpb.Project, error)
	Close() error
}

// ServiceUsageClient reads and changes the state of project APIs.
type ServiceUsageClient interface {
	ServiceState(ctx context.Context, projectID, service string) (string, error)
	EnableServices(ctx context.Context, projectID string, services []string) error
}

// newDefaultClients builds clients backed by Google Cloud APIs using application default credentials.
func newDefaultClients(ctx context.Context) (ProjectsClient, ServiceUsageClient, error) {
	projectClient, err := resourcemanager.NewProjectsClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("create projects client: %w", err)
	}

	serviceUsageSvc, err := serviceusage.NewService(ctx)
	if err != nil {
		_ = projectClient.Close()
		return nil, nil, fmt.Errorf("create service usage service: %w", err)
	}

	return &defaultProjectsClient{client: projectClient},
		&defaultServiceUsageClient{service: serviceUsageSvc, pollInterval: constants.ServicePollInterval},
		nil
}

type defaultProjectsClient struct {
	client *resourcemanager.ProjectsClient
}

func (c *defaultProjectsClient) GetProject(ctx context.Context, name string) (*resourcemanagerpb.Project, error) {
	project, err := c.client.GetProject(ctx, &resourcemanagerpb.GetProjectRequest{Name: name})
	if err != nil {
		return nil, wrapError("get project", err)
	}
	return project, nil
}

func (c *defaultProjectsClient) Close() error {
	return c.client.Close()
}

type defaultServiceUsageClient struct {
	service      *serviceusage.Service
	pollInterval time.Duration
}

func (c *defaultServiceUsageClient) ServiceState(ctx context.Context, projectID, service string) (string, error) {
	svc, err := c.service.Services.Get(constants.ServiceName(projectID, service)).Context(ctx).Do()
	if err != nil {
		return "", wrapError("get service "+service, err)
	}
	return svc.State, nil
}

func (c *defaultServiceUsageClient) EnableServices(ctx context.Context, projectID string, services []string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.ServiceOperationTimeout)
	defer cancel()

	req := &serviceusage.BatchEnableServicesRequest{
		ServiceIds: services,
	}

	op, err := c.service.Services.BatchEnable(constants.ProjectName(projectID), req).Context(ctx).Do()
	if err != nil {
		return wrapError("batch enable services", err)
	}

	if op.Done {
		if op.Error != nil {
			return fmt.Errorf("batch enable services: %s", op.Error.Message)
		}
		return nil
	}

	return wrapError("wait for service enablement", c.waitForOperation(ctx, op.Name))
}

func (c *defaultServiceUsageClient) waitForOperation(ctx context.Context, name string) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		op, err := c.service.Operations.Get(name).Context(ctx).Do()
		if err != nil {
			return wrapError("poll service usage operation", err)
		}
		if op.Done {
			if op.Error != nil {
				return fmt.Errorf("operation error: %s", op.Error.Message)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func wrapError(action string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", action, err)
}
