package constants

import "strings"

// Fully qualified provider configuration keys.
const (
	ConfigKeyProject = "gcp:project"
	ConfigKeyRegion  = "gcp:region"
)

// Stack configuration keys under the ProjectName namespace.
const (
	ConfigKeyDBName               = "dbName"
	ConfigKeyDBUser               = "dbUser"
	ConfigKeyDBTier               = "dbTier"
	ConfigKeyDBVersion            = "dbVersion"
	ConfigKeyDBStorageSize        = "dbStorageSize"
	ConfigKeyServiceName          = "cloudRunServiceName"
	ConfigKeyServiceAccountName   = "serviceAccountName"
	ConfigKeyCPU                  = "cloudRunCpu"
	ConfigKeyMemory               = "cloudRunMemory"
	ConfigKeyMaxInstances         = "cloudRunMaxInstances"
	ConfigKeyContainerPort        = "cloudRunContainerPort"
	ConfigKeyTimezone             = "genericTimezone"
	ConfigKeyAllowUnauthenticated = "allowUnauthenticated"
)

// QualifiedConfigKey returns key prefixed with the project namespace, unless it already
// carries a namespace.
func QualifiedConfigKey(key string) string {
	if strings.Contains(key, ":") {
		return key
	}
	return ProjectName + ":" + key
}

// EnvPrefix is the prefix of environment variables that override stack file values in the CLI.
const EnvPrefix = "N8N_GCP"

// DefaultStackName is the Pulumi stack used by the CLI when none is given.
const DefaultStackName = "dev"

// StackFileName returns the Pulumi stack configuration file name for a stack.
func StackFileName(stack string) string {
	return "Pulumi." + stack + ".yaml"
}
