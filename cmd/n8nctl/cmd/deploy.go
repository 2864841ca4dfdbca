package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/n8n-self-host/n8n-gcp/internal/infra"
	"github.com/n8n-self-host/n8n-gcp/internal/output"
)

var (
	deployOverrides []string
	destroyYes      bool
	showProgress    bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the changes an update would make",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDeploy(cmd, infra.OperationPreview)
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Create or update the n8n deployment",
	Long: `Validate the stack configuration locally, then run the Pulumi program to create or update
every resource of the deployment.

Examples:
  n8nctl up --stack dev
  n8nctl up --stack prod --config cloudRunMaxInstances=3 --config gcp:region=europe-west1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDeploy(cmd, infra.OperationUp)
	},
}

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Delete every resource of the deployment",
	Long: `Delete every resource of the stack. The enabled APIs are left enabled.
The Cloud SQL instance has deletion protection off, so its data is lost.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDeploy(cmd, infra.OperationDestroy)
	},
}

var outputsCmd = &cobra.Command{
	Use:   "outputs",
	Short: "Show the outputs of the last update",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		service := NewDeployService(infra.NewDeployer(slog.Default()), NewOutputWrapper())
		return service.Outputs(cmd.Context(), deployOptions(nil))
	},
}

func init() {
	rootCmd.AddCommand(previewCmd, upCmd, destroyCmd, outputsCmd)

	for _, c := range []*cobra.Command{previewCmd, upCmd} {
		c.Flags().StringSliceVar(&deployOverrides, "config", []string{},
			"Configuration override in KEY=VALUE format (can be specified multiple times)")
	}
	for _, c := range []*cobra.Command{previewCmd, upCmd, destroyCmd} {
		c.Flags().BoolVar(&showProgress, "progress", true, "Stream engine progress")
	}
	destroyCmd.Flags().BoolVarP(&destroyYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runDeploy(cmd *cobra.Command, operation string) error {
	overrides, err := infra.ParseParameters(deployOverrides)
	if err != nil {
		return err
	}

	if operation != infra.OperationDestroy {
		if _, path, loadErr := loadStackConfig(overrides); loadErr != nil {
			return fmt.Errorf("configuration in %s is not deployable: %w", path, loadErr)
		}
	}

	service := NewDeployService(infra.NewDeployer(slog.Default()), NewOutputWrapper())
	opts := deployOptions(overrides)

	switch operation {
	case infra.OperationPreview:
		return service.Preview(cmd.Context(), opts)
	case infra.OperationUp:
		return service.Up(cmd.Context(), opts)
	default:
		return service.Destroy(cmd.Context(), opts, destroyYes)
	}
}

func deployOptions(overrides map[string]string) *infra.Options {
	opts := &infra.Options{
		StackName: stackName,
		WorkDir:   workDir,
		Config:    overrides,
	}
	if showProgress {
		opts.Progress = output.Stdout
	}
	return opts
}

// ErrDestroyCancelled is returned when the operator declines the destroy prompt.
var ErrDestroyCancelled = errors.New("destroy cancelled")

// DeployService handles the engine operations.
type DeployService struct {
	deployer infra.Deployer
	output   OutputInterface
	now      func() time.Time
}

// NewDeployService creates a new DeployService with the provided dependencies.
func NewDeployService(deployer infra.Deployer, outputter OutputInterface) *DeployService {
	return &DeployService{deployer: deployer, output: outputter, now: time.Now}
}

// Preview shows the pending changes of the stack.
func (s *DeployService) Preview(ctx context.Context, opts *infra.Options) error {
	s.output.Infof("Previewing stack %s", s.output.Bold(opts.StackName))

	res, err := s.deployer.Preview(ctx, opts)
	if err != nil {
		return err
	}

	s.printChanges(res)
	if res.NoChanges() {
		s.output.Successf("Stack %s is up to date", opts.StackName)
	}
	return nil
}

// Up creates or updates the stack and prints its outputs.
func (s *DeployService) Up(ctx context.Context, opts *infra.Options) error {
	s.output.Infof("Updating stack %s", s.output.Bold(opts.StackName))
	start := s.now()

	res, err := s.deployer.Up(ctx, opts)
	if err != nil {
		return err
	}

	s.printChanges(res)
	s.printOutputs(res.Outputs)
	s.output.Successf("Stack %s %s in %s", opts.StackName, res.Status, output.Duration(s.now().Sub(start)))
	return nil
}

// Destroy deletes every resource of the stack after confirmation.
func (s *DeployService) Destroy(ctx context.Context, opts *infra.Options, yes bool) error {
	if !yes {
		s.output.Warningf("This deletes the n8n service, its database and its secrets")
		if !s.output.Confirm(fmt.Sprintf("Destroy stack %s?", opts.StackName)) {
			return ErrDestroyCancelled
		}
	}

	s.output.Infof("Destroying stack %s", s.output.Bold(opts.StackName))
	res, err := s.deployer.Destroy(ctx, opts)
	if err != nil {
		return err
	}

	s.printChanges(res)
	s.output.Successf("Stack %s destroyed", opts.StackName)
	return nil
}

// Outputs prints the outputs of the last update.
func (s *DeployService) Outputs(ctx context.Context, opts *infra.Options) error {
	outputs, err := s.deployer.Outputs(ctx, opts)
	if err != nil {
		return err
	}

	if len(outputs) == 0 {
		s.output.Warningf("Stack %s has no outputs, run n8nctl up first", opts.StackName)
		return nil
	}
	s.printOutputs(outputs)
	return nil
}

func (s *DeployService) printChanges(res *infra.Result) {
	if len(res.Changes) == 0 {
		return
	}

	rows := make([][]string, 0, len(res.Changes))
	for _, op := range slices.Sorted(maps.Keys(res.Changes)) {
		rows = append(rows, []string{op, strconv.Itoa(res.Changes[op])})
	}
	s.output.Blank()
	s.output.Table([]string{"Operation", "Resources"}, rows)
	s.output.Blank()
}

func (s *DeployService) printOutputs(outputs map[string]string) {
	for _, key := range slices.Sorted(maps.Keys(outputs)) {
		s.output.KeyValue(key, outputs[key])
	}
	s.output.Blank()
}
