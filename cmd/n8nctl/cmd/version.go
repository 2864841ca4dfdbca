package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/n8n-self-host/n8n-gcp/internal/constants"
	"github.com/n8n-self-host/n8n-gcp/internal/output"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version of the CLI",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		output.KeyValue("CLI version", *constants.GetVersion())
		output.KeyValue("Pulumi project", constants.ProjectName)
		output.KeyValue("Go", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
