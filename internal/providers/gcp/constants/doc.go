// Package constants provides the Google Cloud API constants used by the n8nctl project checks:
//   - Resource Manager project names
//   - Service Usage states
//   - polling intervals and operation timeouts
package constants
