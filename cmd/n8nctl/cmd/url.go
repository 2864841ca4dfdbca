package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/n8n-self-host/n8n-gcp/internal/config"
	"github.com/n8n-self-host/n8n-gcp/internal/constants"
	"github.com/n8n-self-host/n8n-gcp/internal/providers/gcp"
	"github.com/n8n-self-host/n8n-gcp/internal/stack"
)

var urlCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the public host and URL of the n8n service",
	Long: `Resolve the project number through Resource Manager and print the deterministic host and
URL Cloud Run assigns to the service. Works before the first deployment.`,
	Args: cobra.NoArgs,
	RunE: urlRun,
}

func init() {
	rootCmd.AddCommand(urlCmd)
}

func urlRun(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadStackConfig(nil)
	if err != nil {
		return err
	}

	inspector, err := gcp.NewInspector(cmd.Context(), slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = inspector.Close() }()

	service := NewURLService(inspector, NewOutputWrapper())
	_, err = service.Resolve(cmd.Context(), cfg)
	return err
}

// ProjectNumberResolver resolves the numeric id of a project.
type ProjectNumberResolver interface {
	ProjectNumber(ctx context.Context, projectID string) (string, error)
}

// URLService handles service URL resolution.
type URLService struct {
	resolver ProjectNumberResolver
	output   OutputInterface
}

// NewURLService creates a new URLService with the provided dependencies.
func NewURLService(resolver ProjectNumberResolver, outputter OutputInterface) *URLService {
	return &URLService{resolver: resolver, output: outputter}
}

// Resolve prints and returns the service URL for cfg.
func (s *URLService) Resolve(ctx context.Context, cfg *config.DeploymentConfig) (string, error) {
	number, err := s.resolver.ProjectNumber(ctx, cfg.GCP.Project)
	if err != nil {
		return "", err
	}

	host := stack.ServiceHost(cfg.CloudRun.ServiceName, number, cfg.GCP.Region)
	url := constants.ServiceURLSchemePrefix + host

	s.output.KeyValue("Project number", number)
	s.output.KeyValue(constants.OutputServiceHost, host)
	s.output.KeyValue(constants.OutputDerivedServiceURL, s.output.Bold(url))
	return url, nil
}
