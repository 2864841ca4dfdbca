package cmd

import (
	"github.com/spf13/cobra"

	"github.com/n8n-self-host/n8n-gcp/internal/config"
	"github.com/n8n-self-host/n8n-gcp/internal/infra"
)

var validateOverrides []string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the stack configuration without contacting Google Cloud",
	Long: `Load the stack configuration file, apply N8N_GCP_* environment variables and --config
overrides, and report every missing or invalid key at once.

Examples:
  n8nctl validate --stack dev
  N8N_GCP_DB_TIER=db-f1-micro n8nctl validate --stack-file ./Pulumi.prod.yaml`,
	Args: cobra.NoArgs,
	RunE: validateRun,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringSliceVar(&validateOverrides, "config", []string{},
		"Configuration override in KEY=VALUE format (can be specified multiple times)")
}

func validateRun(_ *cobra.Command, _ []string) error {
	overrides, err := infra.ParseParameters(validateOverrides)
	if err != nil {
		return err
	}

	cfg, path, err := loadStackConfig(overrides)
	service := NewValidateService(NewOutputWrapper())
	return service.Report(path, cfg, err)
}

// ValidateService handles configuration validation output.
type ValidateService struct {
	output OutputInterface
}

// NewValidateService creates a new ValidateService with the provided dependencies.
func NewValidateService(outputter OutputInterface) *ValidateService {
	return &ValidateService{output: outputter}
}

// Report prints the resolved configuration, or returns the load error unchanged.
func (s *ValidateService) Report(path string, cfg *config.DeploymentConfig, loadErr error) error {
	if loadErr != nil {
		return loadErr
	}

	s.output.Infof("Loaded configuration from %s", s.output.Bold(path))
	s.output.Blank()

	rows := make([][]string, 0, len(cfg.Entries()))
	for _, e := range cfg.Entries() {
		rows = append(rows, []string{e.Key, e.Value})
	}
	s.output.Table([]string{"Key", "Value"}, rows)
	s.output.Blank()

	if cfg.AllowUnauthenticated {
		s.output.Warningf("The service will be publicly invokable (allowUnauthenticated=true)")
	}
	s.output.Successf("Configuration is valid")
	return nil
}
