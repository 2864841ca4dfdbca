// Package testutil provides shared testing utilities and helpers.
package testutil

import (
	"encoding/json"
	"io"
	"log/slog"
	"maps"

	"gopkg.in/yaml.v3"

	"github.com/n8n-self-host/n8n-gcp/internal/config"
	"github.com/n8n-self-host/n8n-gcp/internal/constants"
)

// ConfigBuilder provides a fluent interface for building stack configuration in tests.
// Values are kept as the raw strings a stack file would hold.
type ConfigBuilder struct {
	values map[string]string
}

// NewConfigBuilder creates a new ConfigBuilder with a complete, valid configuration.
func NewConfigBuilder() *ConfigBuilder {
	b := &ConfigBuilder{values: map[string]string{
		constants.ConfigKeyProject: "test-project",
		constants.ConfigKeyRegion:  "us-central1",
	}}
	return b.
		With(constants.ConfigKeyDBName, "n8n").
		With(constants.ConfigKeyDBUser, "n8n-user").
		With(constants.ConfigKeyDBTier, "db-f1-micro").
		With(constants.ConfigKeyDBVersion, "POSTGRES_15").
		With(constants.ConfigKeyDBStorageSize, "10").
		With(constants.ConfigKeyServiceName, "n8n").
		With(constants.ConfigKeyServiceAccountName, "n8n-service-account").
		With(constants.ConfigKeyCPU, "1").
		With(constants.ConfigKeyMemory, "2Gi").
		With(constants.ConfigKeyMaxInstances, "1").
		With(constants.ConfigKeyContainerPort, "5678").
		With(constants.ConfigKeyTimezone, "UTC").
		With(constants.ConfigKeyAllowUnauthenticated, "true")
}

// With sets a key; bare keys get the project namespace.
func (b *ConfigBuilder) With(key, value string) *ConfigBuilder {
	b.values[constants.QualifiedConfigKey(key)] = value
	return b
}

// Without removes keys; bare keys get the project namespace.
func (b *ConfigBuilder) Without(keys ...string) *ConfigBuilder {
	for _, key := range keys {
		delete(b.values, constants.QualifiedConfigKey(key))
	}
	return b
}

// Source returns the values as a config.MapSource.
func (b *ConfigBuilder) Source() config.MapSource {
	return config.MapSource(maps.Clone(b.values))
}

// Build loads the values. It panics if they do not form a valid configuration.
func (b *ConfigBuilder) Build() *config.DeploymentConfig {
	cfg, err := config.Load(b.Source())
	if err != nil {
		panic("testutil: invalid configuration: " + err.Error())
	}
	return cfg
}

// JSON renders the values the way the Pulumi engine passes them in PULUMI_CONFIG.
func (b *ConfigBuilder) JSON() string {
	out, err := json.Marshal(b.values)
	if err != nil {
		panic(err)
	}
	return string(out)
}

// StackFile renders the values as a Pulumi.<stack>.yaml document.
func (b *ConfigBuilder) StackFile() []byte {
	out, err := yaml.Marshal(map[string]map[string]string{"config": b.values})
	if err != nil {
		panic(err)
	}
	return out
}

// SilentLogger creates a logger that discards all output.
func SilentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
