// Package gcp reads project state from Google Cloud for the n8nctl operator commands.
// It never declares resources: everything it reads is also declared by the Pulumi program.
package gcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/n8n-self-host/n8n-gcp/internal/errors"
	"github.com/n8n-self-host/n8n-gcp/internal/providers/gcp/constants"
)

// Inspector answers questions about a Google Cloud project.
type Inspector struct {
	projects ProjectsClient
	services ServiceUsageClient
	logger   *slog.Logger
}

// NewInspector creates an Inspector backed by the Google Cloud APIs.
func NewInspector(ctx context.Context, logger *slog.Logger) (*Inspector, error) {
	projects, services, err := newDefaultClients(ctx)
	if err != nil {
		return nil, apperrors.ErrProviderRejection("failed to create Google Cloud clients", err)
	}
	return NewInspectorWithClients(projects, services, logger), nil
}

// NewInspectorWithClients creates an Inspector over the given clients.
func NewInspectorWithClients(projects ProjectsClient, services ServiceUsageClient, logger *slog.Logger) *Inspector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{projects: projects, services: services, logger: logger}
}

// Close releases the underlying connections.
func (i *Inspector) Close() error {
	if i.projects == nil {
		return nil
	}
	return i.projects.Close()
}

// ProjectNumber resolves the numeric id of a project.
func (i *Inspector) ProjectNumber(ctx context.Context, projectID string) (string, error) {
	project, err := i.projects.GetProject(ctx, constants.ProjectName(projectID))
	if err != nil {
		//nolint:exhaustive // only handling NotFound and PermissionDenied specifically
		switch status.Code(err) {
		case codes.NotFound:
			return "", apperrors.ErrProviderRejection(fmt.Sprintf("project %s not found", projectID), err)
		case codes.PermissionDenied:
			return "", apperrors.ErrProviderRejection(
				fmt.Sprintf("permission denied reading project %s (it may also not exist)", projectID), err)
		}
		return "", apperrors.ErrProviderRejection("failed to get project", err)
	}

	number, ok := strings.CutPrefix(project.GetName(), constants.ProjectNamePrefix)
	if !ok || number == "" {
		return "", apperrors.ErrProviderRejection(
			fmt.Sprintf("unexpected project name %q", project.GetName()), nil)
	}

	i.logger.Debug("resolved project number", "project", projectID, "number", number)
	return number, nil
}

// ServiceStatus is the state of one API in a project.
type ServiceStatus struct {
	Service string
	State   string
}

// Enabled reports whether the API is enabled.
func (s ServiceStatus) Enabled() bool {
	return s.State == constants.ServiceStateEnabled
}

// Report is the result of Diagnose.
type Report struct {
	ProjectID     string
	ProjectNumber string
	Services      []ServiceStatus
}

// Disabled lists the services that are not enabled, in the order they were checked.
func (r *Report) Disabled() []string {
	var disabled []string
	for _, s := range r.Services {
		if !s.Enabled() {
			disabled = append(disabled, s.Service)
		}
	}
	return disabled
}

// Healthy reports whether the project was reachable and every service is enabled.
func (r *Report) Healthy() bool {
	return r.ProjectNumber != "" && len(r.Disabled()) == 0
}

// Diagnose checks concurrently that the project is reachable and reads the state of each service.
// A service the caller may not read is reported as disabled; any other failure aborts.
func (i *Inspector) Diagnose(ctx context.Context, projectID string, services []string) (*Report, error) {
	report := &Report{
		ProjectID: projectID,
		Services:  make([]ServiceStatus, len(services)),
	}

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	g.Go(func() error {
		number, err := i.ProjectNumber(gctx, projectID)
		if err != nil {
			return err
		}
		mu.Lock()
		report.ProjectNumber = number
		mu.Unlock()
		return nil
	})

	for idx, service := range services {
		g.Go(func() error {
			state, err := i.services.ServiceState(gctx, projectID, service)
			switch {
			case err == nil:
			case isForbidden(err) || isNotFound(err):
				i.logger.Debug("service state unavailable", "service", service, "error", err)
				state = constants.ServiceStateDisabled
			default:
				return apperrors.ErrProviderRejection("failed to read state of "+service, err)
			}
			report.Services[idx] = ServiceStatus{Service: service, State: state}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return report, nil
}

// EnableServices enables the given APIs in one batch operation.
func (i *Inspector) EnableServices(ctx context.Context, projectID string, services []string) error {
	if len(services) == 0 {
		return nil
	}

	sorted := slices.Clone(services)
	slices.Sort(sorted)
	i.logger.Info("enabling services", "project", projectID, "services", sorted)

	if err := i.services.EnableServices(ctx, projectID, sorted); err != nil {
		return apperrors.ErrProviderRejection("failed to enable services", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound
	}
	return false
}

func isForbidden(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusForbidden
	}
	return false
}
