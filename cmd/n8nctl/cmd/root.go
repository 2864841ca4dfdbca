package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/n8n-self-host/n8n-gcp/internal/config"
	"github.com/n8n-self-host/n8n-gcp/internal/constants"
	"github.com/n8n-self-host/n8n-gcp/internal/logger"
	"github.com/n8n-self-host/n8n-gcp/internal/output"
)

var (
	debug         bool
	timeout       string
	timeoutCancel context.CancelFunc
	verbose       bool
	stackName     string
	stackFile     string
	workDir       string
)

var rootCmd = &cobra.Command{
	Use:   constants.CLIName,
	Short: "Deploy and operate n8n on Google Cloud Run",
	Long: fmt.Sprintf(`%s - %s
Self-hosted n8n on Cloud Run, Cloud SQL and Secret Manager, driven by Pulumi`,
		constants.CLIName, *constants.GetVersion()),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		startTime := time.Now().UTC()
		cmd.SetContext(context.WithValue(cmd.Context(), constants.StartTimeCtxKey, startTime))
		printHeader(cmd)

		if verbose {
			output.Infof("CLI build: %s", output.Bold(*constants.GetVersion()))
			output.Infof("Verbose output enabled")
		}

		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}
		logger.Initialize(constants.CLI, logLevel)

		cmd.SetContext(logger.WithStack(cmd.Context(), stackName))

		if timeout == "0" {
			if verbose {
				output.Infof("Timeout disabled")
			}

			return nil
		}

		// NOTICE: this runs after flags are parsed but before the command runs
		timeoutDuration, err := parseTimeout(timeout)
		if err != nil {
			return fmt.Errorf("error parsing timeout: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeoutDuration)
		timeoutCancel = cancel // Store for cleanup in Execute()
		cmd.SetContext(ctx)

		if verbose {
			output.Infof("Timeout: %s", timeoutDuration)
			output.Infof("Stack: %s", output.Bold(stackName))
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if verbose {
			startTime := getStartTimeFromContext(cmd)
			if !startTime.IsZero() {
				output.Infof("Time elapsed: %s", output.Bold(output.Duration(time.Since(startTime))))
			}
		}
		if timeoutCancel != nil {
			timeoutCancel()
		}
	},
}

// Execute runs the root command and handles cleanup of timeout context.
func Execute() {
	err := rootCmd.Execute()
	if timeoutCancel != nil {
		timeoutCancel()
	}

	if err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// reportError prints err verbatim; provider messages may contain '%'.
func reportError(err error) {
	output.Errorf("%s", err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&timeout, "timeout", "30m", "Timeout for command execution (e.g., 10m, 30s, 1h)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debugging logs")
	rootCmd.PersistentFlags().StringVarP(&stackName, "stack", "s", constants.DefaultStackName, "Pulumi stack name")
	rootCmd.PersistentFlags().StringVar(&workDir, "work-dir", ".", "Directory holding Pulumi.yaml")
	rootCmd.PersistentFlags().StringVar(&stackFile, "stack-file", "",
		"Stack configuration file. Defaults to Pulumi.<stack>.yaml in the work directory")
}

// parseTimeout parses timeout string to time.Duration
// defaults to 30 minutes if empty
// Supports formats: "10m", "30s", "1h", "600" (number of seconds)
func parseTimeout(timeoutStr string) (time.Duration, error) {
	if timeoutStr == "" {
		timeoutStr = "30m"
	}

	// Try parsing as duration first (supports "10m", "30s", "1h", etc.)
	duration, err := time.ParseDuration(timeoutStr)
	if err == nil {
		return duration, nil
	}

	// If duration parsing fails, try parsing as seconds (integer)
	seconds, err := strconv.Atoi(timeoutStr)
	if err != nil {
		errMsg := fmt.Sprintf(
			"invalid timeout format: %s (use duration like '10m' or '30s', or seconds like '600')",
			timeoutStr)
		return 0, errors.New(errMsg)
	}

	return time.Duration(seconds) * time.Second, nil
}

func printHeader(cmd *cobra.Command) {
	output.Header(output.Bold(constants.CLIName + " " + cmd.CalledAs()))
}

func getStartTimeFromContext(cmd *cobra.Command) time.Time {
	startTime, ok := cmd.Context().Value(constants.StartTimeCtxKey).(time.Time)
	if !ok {
		return time.Time{}
	}
	return startTime
}

// resolveStackFile returns the stack configuration file the command reads.
func resolveStackFile() string {
	if stackFile != "" {
		return stackFile
	}
	return filepath.Join(workDir, constants.StackFileName(stackName))
}

// loadStackConfig loads and validates the stack configuration, with overrides taking precedence
// over N8N_GCP_* environment variables and the stack file.
func loadStackConfig(overrides map[string]string) (*config.DeploymentConfig, string, error) {
	path := resolveStackFile()
	file, err := config.NewFileSource(path)
	if err != nil {
		return nil, path, err
	}

	cfg, err := config.Load(config.LayeredSource{config.NewOverrideSource(overrides), file})
	return cfg, path, err
}

// RootCmd returns the root command for use by tools like doc generators.
func RootCmd() *cobra.Command {
	return rootCmd
}
