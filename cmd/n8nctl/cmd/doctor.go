package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n8n-self-host/n8n-gcp/internal/config"
	"github.com/n8n-self-host/n8n-gcp/internal/constants"
	"github.com/n8n-self-host/n8n-gcp/internal/providers/gcp"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the target project is ready for a deployment",
	Long: `Check, concurrently, that the project is reachable and that every API the deployment
needs is enabled. With --fix, enable the missing APIs in one batch.

The Pulumi program enables the APIs itself; doctor helps diagnose credential and billing
problems before an update fails half way.`,
	Args: cobra.NoArgs,
	RunE: doctorRun,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Enable the APIs that are disabled")
}

func doctorRun(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadStackConfig(nil)
	if err != nil {
		return err
	}

	inspector, err := gcp.NewInspector(cmd.Context(), slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = inspector.Close() }()

	service := NewDoctorService(inspector, NewOutputWrapper())
	return service.Check(cmd.Context(), cfg, doctorFix)
}

// Diagnoser inspects a project and repairs its API enablement.
type Diagnoser interface {
	Diagnose(ctx context.Context, projectID string, services []string) (*gcp.Report, error)
	EnableServices(ctx context.Context, projectID string, services []string) error
}

// DoctorService handles project readiness checks.
type DoctorService struct {
	diagnoser Diagnoser
	output    OutputInterface
}

// NewDoctorService creates a new DoctorService with the provided dependencies.
func NewDoctorService(diagnoser Diagnoser, outputter OutputInterface) *DoctorService {
	return &DoctorService{diagnoser: diagnoser, output: outputter}
}

// Check reports the readiness of the project in cfg. It returns an error when the project is
// not ready and fix is off.
func (s *DoctorService) Check(ctx context.Context, cfg *config.DeploymentConfig, fix bool) error {
	report, err := s.diagnoser.Diagnose(ctx, cfg.GCP.Project, constants.RequiredServices)
	if err != nil {
		return err
	}

	total := len(report.Services) + 1
	s.output.StepSuccess(1, total, fmt.Sprintf("project %s reachable (number %s)",
		cfg.GCP.Project, report.ProjectNumber))
	for i, svc := range report.Services {
		msg := fmt.Sprintf("%s %s", svc.Service, s.output.StatusBadge(strings.ToLower(svc.State)))
		if svc.Enabled() {
			s.output.StepSuccess(i+2, total, msg)
		} else {
			s.output.StepError(i+2, total, msg)
		}
	}
	s.output.Blank()

	disabled := report.Disabled()
	if len(disabled) == 0 {
		s.output.Successf("Project %s is ready", cfg.GCP.Project)
		return nil
	}

	if !fix {
		s.output.Warningf("Run with --fix to enable:")
		s.output.List(disabled)
		return fmt.Errorf("%d required APIs are disabled", len(disabled))
	}

	s.output.Infof("Enabling %s", strings.Join(disabled, ", "))
	if err := s.diagnoser.EnableServices(ctx, cfg.GCP.Project, disabled); err != nil {
		return err
	}
	s.output.Successf("Enabled %d APIs on %s", len(disabled), cfg.GCP.Project)
	return nil
}
