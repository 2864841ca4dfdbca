// Package constants defines global constants used throughout the n8n deployment.
package constants

var version = "0.0.0-development" // Updated by CI/CD pipeline at build time

// GetVersion returns the current version of the CLI.
func GetVersion() *string {
	return &version
}

// ProjectName is the Pulumi project name and the namespace of its stack configuration keys.
const ProjectName = "n8n-self-host-on-gcp"

// CLIName is the name of the operator CLI binary.
const CLIName = "n8nctl"
