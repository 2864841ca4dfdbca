package constants

import "time"

const (
	// ProjectNamePrefix prefixes project ids and numbers in Resource Manager resource names.
	ProjectNamePrefix = "projects/"

	// ServicesSegment separates the project from the service id in Service Usage names.
	ServicesSegment = "/services/"

	// ServiceStateEnabled is the Service Usage state of an enabled API.
	ServiceStateEnabled = "ENABLED"

	// ServiceStateDisabled is the Service Usage state of a disabled API.
	ServiceStateDisabled = "DISABLED"

	// ServicePollInterval is the interval at which to poll a service enablement operation.
	ServicePollInterval = 5 * time.Second

	// ServiceOperationTimeout is the maximum time to wait for a batch enablement to complete.
	ServiceOperationTimeout = 5 * time.Minute
)

// ProjectName returns the Resource Manager name of a project id or number.
func ProjectName(project string) string {
	return ProjectNamePrefix + project
}

// ServiceName returns the Service Usage name of an API within a project.
func ServiceName(project, service string) string {
	return ProjectName(project) + ServicesSegment + service
}
