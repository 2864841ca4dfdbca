package constants

// Environment represents the execution environment (e.g., CLI, CI).
type Environment string

// Environment types for logger configuration.
const (
	Development Environment = "development"
	Production  Environment = "production"
	CLI         Environment = "cli"
)

// OutputFormat is a rendering format for the resource graph.
type OutputFormat string

// Supported graph output formats.
const (
	FormatText OutputFormat = "text"
	FormatYAML OutputFormat = "yaml"
	FormatJSON OutputFormat = "json"
	FormatDOT  OutputFormat = "dot"
)
