package cmd

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/n8n-self-host/n8n-gcp/internal/config"
	"github.com/n8n-self-host/n8n-gcp/internal/constants"
	"github.com/n8n-self-host/n8n-gcp/internal/graph"
	"github.com/n8n-self-host/n8n-gcp/internal/stack"
)

var graphFormat string

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the resource graph the deployment declares",
	Long: `Build the resource graph from the stack configuration, check its role grants against the
least-privilege policy and print it.

Formats: text (topological levels), yaml, json, dot.

Examples:
  n8nctl graph
  n8nctl graph --format dot | dot -Tsvg > graph.svg`,
	Args: cobra.NoArgs,
	RunE: graphRun,
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVarP(&graphFormat, "format", "f", string(constants.FormatText),
		"Output format: text, yaml, json or dot")
}

func graphRun(_ *cobra.Command, _ []string) error {
	cfg, _, err := loadStackConfig(nil)
	if err != nil {
		return err
	}

	service := NewGraphService(NewOutputWrapper(), slog.Default())
	return service.Render(cfg, constants.OutputFormat(graphFormat))
}

var graphFormats = []constants.OutputFormat{
	constants.FormatText,
	constants.FormatYAML,
	constants.FormatJSON,
	constants.FormatDOT,
}

// GraphService handles resource graph rendering.
type GraphService struct {
	output OutputInterface
	logger *slog.Logger
}

// NewGraphService creates a new GraphService with the provided dependencies.
func NewGraphService(outputter OutputInterface, logger *slog.Logger) *GraphService {
	return &GraphService{output: outputter, logger: logger}
}

// Render audits the plan for cfg and writes it in format.
func (s *GraphService) Render(cfg *config.DeploymentConfig, format constants.OutputFormat) error {
	if !slices.Contains(graphFormats, format) {
		return fmt.Errorf("unsupported graph format: %s (supported: text, yaml, json, dot)", format)
	}

	g, err := stack.Audit(cfg, s.logger)
	if err != nil {
		return err
	}

	if err := graph.Render(s.output.Writer(), g, format); err != nil {
		return fmt.Errorf("failed to render graph: %w", err)
	}

	if format == constants.FormatText {
		s.output.Blank()
		s.output.Successf("%d resources, role grants within policy", len(g.Nodes()))
	}
	return nil
}
