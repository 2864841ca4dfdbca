// Package infra drives the n8n deployment program through the Pulumi automation API.
package infra

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optdestroy"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optpreview"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optup"

	"github.com/n8n-self-host/n8n-gcp/internal/constants"
	apperrors "github.com/n8n-self-host/n8n-gcp/internal/errors"
	"github.com/n8n-self-host/n8n-gcp/internal/logger"
)

const (
	// parameterSplitParts is the expected number of parts when splitting a KEY=VALUE parameter.
	parameterSplitParts = 2

	// SecretOutputMask replaces secret output values when printed.
	SecretOutputMask = "[secret]"
)

// Operation names reported in Result.
const (
	OperationPreview = "preview"
	OperationUp      = "up"
	OperationDestroy = "destroy"
)

// Options contains all options for one engine operation.
type Options struct {
	StackName string
	WorkDir   string            // Directory holding Pulumi.yaml
	Config    map[string]string // Stack configuration overrides, bare keys get the project namespace
	Progress  io.Writer         // Engine progress stream (optional)
}

// Result contains the result of an engine operation.
type Result struct {
	StackName string
	Operation string
	Status    string
	Changes   map[string]int // Resource operation counts, e.g. "create": 20
	Outputs   map[string]string
}

// NoChanges reports whether the operation left every resource as it was.
func (r *Result) NoChanges() bool {
	for op, count := range r.Changes {
		if op != "same" && count > 0 {
			return false
		}
	}
	return true
}

// Deployer defines the interface for driving the deployment.
type Deployer interface {
	// Preview computes the changes an update would make
	Preview(ctx context.Context, opts *Options) (*Result, error)
	// Up creates or updates the deployment
	Up(ctx context.Context, opts *Options) (*Result, error)
	// Destroy deletes every resource of the stack
	Destroy(ctx context.Context, opts *Options) (*Result, error)
	// Outputs retrieves the stack outputs of the last update
	Outputs(ctx context.Context, opts *Options) (map[string]string, error)
}

// Stack is the subset of an automation API stack the deployer uses.
type Stack interface {
	SetAllConfig(ctx context.Context, config auto.ConfigMap) error
	Preview(ctx context.Context, opts ...optpreview.Option) (auto.PreviewResult, error)
	Up(ctx context.Context, opts ...optup.Option) (auto.UpResult, error)
	Destroy(ctx context.Context, opts ...optdestroy.Option) (auto.DestroyResult, error)
	Outputs(ctx context.Context) (auto.OutputMap, error)
}

// StackOpener opens the named stack of the project in workDir, creating it when create is set.
type StackOpener func(ctx context.Context, stackName, workDir string, create bool) (Stack, error)

// OpenLocalStack opens a stack backed by a local Pulumi project directory.
func OpenLocalStack(ctx context.Context, stackName, workDir string, create bool) (Stack, error) {
	var (
		s   auto.Stack
		err error
	)
	if create {
		s, err = auto.UpsertStackLocalSource(ctx, stackName, workDir)
	} else {
		s, err = auto.SelectStackLocalSource(ctx, stackName, workDir)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// PulumiDeployer implements Deployer over the Pulumi automation API.
type PulumiDeployer struct {
	open   StackOpener
	logger *slog.Logger
}

// NewDeployer creates a Deployer using the local Pulumi workspace.
func NewDeployer(log *slog.Logger) *PulumiDeployer {
	return NewDeployerWithOpener(OpenLocalStack, log)
}

// NewDeployerWithOpener creates a Deployer over a custom stack opener.
func NewDeployerWithOpener(open StackOpener, log *slog.Logger) *PulumiDeployer {
	if log == nil {
		log = slog.Default()
	}
	return &PulumiDeployer{open: open, logger: log}
}

// Preview computes the changes an update would make.
func (d *PulumiDeployer) Preview(ctx context.Context, opts *Options) (*Result, error) {
	s, log, err := d.prepare(ctx, opts, true)
	if err != nil {
		return nil, err
	}

	log.Info("previewing stack")
	res, err := s.Preview(ctx, optpreview.ProgressStreams(progress(opts)))
	if err != nil {
		return nil, apperrors.ErrProviderRejection("preview failed", err)
	}

	changes := make(map[string]int, len(res.ChangeSummary))
	for op, count := range res.ChangeSummary {
		changes[string(op)] = count
	}

	return &Result{
		StackName: opts.StackName,
		Operation: OperationPreview,
		Status:    "succeeded",
		Changes:   changes,
	}, nil
}

// Up creates or updates the deployment.
func (d *PulumiDeployer) Up(ctx context.Context, opts *Options) (*Result, error) {
	s, log, err := d.prepare(ctx, opts, true)
	if err != nil {
		return nil, err
	}

	log.Info("updating stack")
	res, err := s.Up(ctx, optup.ProgressStreams(progress(opts)))
	if err != nil {
		return nil, apperrors.ErrProviderRejection("update failed", err)
	}

	return &Result{
		StackName: opts.StackName,
		Operation: OperationUp,
		Status:    res.Summary.Result,
		Changes:   resourceChanges(res.Summary),
		Outputs:   FormatOutputs(res.Outputs),
	}, nil
}

// Destroy deletes every resource of the stack.
func (d *PulumiDeployer) Destroy(ctx context.Context, opts *Options) (*Result, error) {
	s, log, err := d.prepare(ctx, opts, false)
	if err != nil {
		return nil, err
	}

	log.Info("destroying stack")
	res, err := s.Destroy(ctx, optdestroy.ProgressStreams(progress(opts)))
	if err != nil {
		return nil, apperrors.ErrProviderRejection("destroy failed", err)
	}

	return &Result{
		StackName: opts.StackName,
		Operation: OperationDestroy,
		Status:    res.Summary.Result,
		Changes:   resourceChanges(res.Summary),
	}, nil
}

// Outputs retrieves the stack outputs of the last update.
func (d *PulumiDeployer) Outputs(ctx context.Context, opts *Options) (map[string]string, error) {
	s, _, err := d.prepare(ctx, opts, false)
	if err != nil {
		return nil, err
	}

	outputs, err := s.Outputs(ctx)
	if err != nil {
		return nil, apperrors.ErrProviderRejection("failed to read stack outputs", err)
	}
	return FormatOutputs(outputs), nil
}

func (d *PulumiDeployer) prepare(ctx context.Context, opts *Options, create bool) (Stack, *slog.Logger, error) {
	if opts == nil || strings.TrimSpace(opts.StackName) == "" {
		return nil, nil, apperrors.ErrInvalidConfiguration("stack name is required", nil)
	}

	log := logger.DeriveLogger(logger.WithStack(ctx, opts.StackName), d.logger)
	log.Debug("opening stack", "work_dir", opts.WorkDir, "create", create)

	s, err := d.open(ctx, opts.StackName, opts.WorkDir, create)
	if err != nil {
		if auto.IsSelectStack404Error(err) {
			return nil, nil, apperrors.ErrProviderRejection(
				fmt.Sprintf("stack %s does not exist", opts.StackName), err)
		}
		return nil, nil, apperrors.ErrProviderRejection("failed to open stack", err)
	}

	if len(opts.Config) > 0 {
		if err := s.SetAllConfig(ctx, StackConfig(opts.Config)); err != nil {
			return nil, nil, apperrors.ErrProviderRejection("failed to set stack configuration", err)
		}
		log.Debug("applied configuration overrides", "keys", slices.Sorted(maps.Keys(opts.Config)))
	}

	return s, log, nil
}

// StackConfig converts configuration overrides into automation API values,
// qualifying bare keys with the project namespace.
func StackConfig(values map[string]string) auto.ConfigMap {
	config := make(auto.ConfigMap, len(values))
	for key, value := range values {
		config[constants.QualifiedConfigKey(key)] = auto.ConfigValue{Value: value}
	}
	return config
}

// FormatOutputs renders stack outputs as strings, masking secret values.
func FormatOutputs(outputs auto.OutputMap) map[string]string {
	result := make(map[string]string, len(outputs))
	for key, out := range outputs {
		if out.Secret {
			result[key] = SecretOutputMask
			continue
		}
		result[key] = fmt.Sprint(out.Value)
	}
	return result
}

// ParseParameters parses KEY=VALUE parameter strings.
func ParseParameters(params []string) (map[string]string, error) {
	result := make(map[string]string)

	for _, param := range params {
		parts := strings.SplitN(param, "=", parameterSplitParts)
		if len(parts) != parameterSplitParts || strings.TrimSpace(parts[0]) == "" {
			return nil, apperrors.ErrInvalidConfiguration(
				fmt.Sprintf("invalid parameter format: %s (expected KEY=VALUE)", param), nil)
		}
		result[strings.TrimSpace(parts[0])] = parts[1]
	}

	return result, nil
}

func resourceChanges(summary auto.UpdateSummary) map[string]int {
	if summary.ResourceChanges == nil {
		return map[string]int{}
	}
	return maps.Clone(*summary.ResourceChanges)
}

func progress(opts *Options) io.Writer {
	if opts.Progress == nil {
		return io.Discard
	}
	return opts.Progress
}
