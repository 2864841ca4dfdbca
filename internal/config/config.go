// Package config loads the deployment parameters consumed by every resource component.
//
// Values come from a Source (the Pulumi stack configuration when running inside the engine,
// a stack file plus environment when running the CLI). Loading is a fail-fast gate: a missing
// or unusable key aborts before a single resource is declared.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/n8n-self-host/n8n-gcp/internal/constants"
	apperrors "github.com/n8n-self-host/n8n-gcp/internal/errors"
)

// DeploymentConfig is the full, validated parameter set of one stack.
// It is built once at the entry point and passed explicitly to each component.
type DeploymentConfig struct {
	GCP                  GCPConfig
	DB                   DatabaseConfig
	CloudRun             CloudRunConfig
	Timezone             string `validate:"required"`
	AllowUnauthenticated bool
}

// GCPConfig identifies the target project and region.
type GCPConfig struct {
	Project string `validate:"required"`
	Region  string `validate:"required"`
}

// DatabaseConfig describes the Cloud SQL instance, database and user.
// Tier and Version are passed through untouched; the provider rejects unknown values.
type DatabaseConfig struct {
	Name        string `validate:"required"`
	User        string `validate:"required"`
	Tier        string `validate:"required"`
	Version     string `validate:"required"`
	StorageSize int
}

// CloudRunConfig describes the n8n service and its identity.
// Numeric shape values are not range checked here; the provider rejects what it cannot use.
type CloudRunConfig struct {
	ServiceName        string `validate:"required"`
	ServiceAccountName string `validate:"required"`
	CPU                string `validate:"required"`
	Memory             string `validate:"required"`
	MaxInstances       int
	ContainerPort      int
}

// Entry is a single resolved configuration value, for display.
type Entry struct {
	Key   string
	Value string
}

var validate = validator.New()

// Load reads and validates every required key from src.
// Absent or blank keys yield a MissingConfiguration error naming all of them; keys that are
// present but not parsable as a number or boolean yield InvalidConfiguration.
func Load(src Source) (*DeploymentConfig, error) {
	if src == nil {
		return nil, apperrors.ErrMissingConfiguration("configuration source is required", nil)
	}

	r := &reader{src: src}
	cfg := &DeploymentConfig{
		GCP: GCPConfig{
			Project: r.requireString(constants.ConfigKeyProject),
			Region:  r.requireString(constants.ConfigKeyRegion),
		},
		DB: DatabaseConfig{
			Name:        r.requireString(constants.ConfigKeyDBName),
			User:        r.requireString(constants.ConfigKeyDBUser),
			Tier:        r.requireString(constants.ConfigKeyDBTier),
			Version:     r.requireString(constants.ConfigKeyDBVersion),
			StorageSize: r.requireInt(constants.ConfigKeyDBStorageSize),
		},
		CloudRun: CloudRunConfig{
			ServiceName:        r.requireString(constants.ConfigKeyServiceName),
			ServiceAccountName: r.requireString(constants.ConfigKeyServiceAccountName),
			CPU:                r.requireString(constants.ConfigKeyCPU),
			Memory:             r.requireString(constants.ConfigKeyMemory),
			MaxInstances:       r.requireInt(constants.ConfigKeyMaxInstances),
			ContainerPort:      r.requireInt(constants.ConfigKeyContainerPort),
		},
		Timezone:             r.requireString(constants.ConfigKeyTimezone),
		AllowUnauthenticated: r.requireBool(constants.ConfigKeyAllowUnauthenticated),
	}

	if err := r.err(); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, apperrors.ErrInvalidConfiguration("config validation failed", err)
	}

	return cfg, nil
}

// DBInstanceName is the deterministic Cloud SQL instance name.
func (c *DeploymentConfig) DBInstanceName() string {
	return c.CloudRun.ServiceName + constants.DBInstanceSuffix
}

// SecretPrefix is the prefix of every Secret Manager id owned by the stack.
func (c *DeploymentConfig) SecretPrefix() string {
	return c.CloudRun.ServiceName
}

// Entries returns the resolved values in a stable order, keyed by their qualified names.
func (c *DeploymentConfig) Entries() []Entry {
	return []Entry{
		{constants.ConfigKeyProject, c.GCP.Project},
		{constants.ConfigKeyRegion, c.GCP.Region},
		{constants.QualifiedConfigKey(constants.ConfigKeyDBName), c.DB.Name},
		{constants.QualifiedConfigKey(constants.ConfigKeyDBUser), c.DB.User},
		{constants.QualifiedConfigKey(constants.ConfigKeyDBTier), c.DB.Tier},
		{constants.QualifiedConfigKey(constants.ConfigKeyDBVersion), c.DB.Version},
		{constants.QualifiedConfigKey(constants.ConfigKeyDBStorageSize), strconv.Itoa(c.DB.StorageSize)},
		{constants.QualifiedConfigKey(constants.ConfigKeyServiceName), c.CloudRun.ServiceName},
		{constants.QualifiedConfigKey(constants.ConfigKeyServiceAccountName), c.CloudRun.ServiceAccountName},
		{constants.QualifiedConfigKey(constants.ConfigKeyCPU), c.CloudRun.CPU},
		{constants.QualifiedConfigKey(constants.ConfigKeyMemory), c.CloudRun.Memory},
		{constants.QualifiedConfigKey(constants.ConfigKeyMaxInstances), strconv.Itoa(c.CloudRun.MaxInstances)},
		{constants.QualifiedConfigKey(constants.ConfigKeyContainerPort), strconv.Itoa(c.CloudRun.ContainerPort)},
		{constants.QualifiedConfigKey(constants.ConfigKeyTimezone), c.Timezone},
		{constants.QualifiedConfigKey(constants.ConfigKeyAllowUnauthenticated), strconv.FormatBool(c.AllowUnauthenticated)},
	}
}

// reader collects every missing or malformed key so they can be reported at once.
type reader struct {
	src     Source
	missing []string
	invalid []string
}

func (r *reader) lookup(key string) (string, string, bool) {
	qualified := constants.QualifiedConfigKey(key)
	value, ok := r.src.Lookup(qualified)
	return qualified, value, ok
}

func (r *reader) requireString(key string) string {
	qualified, value, ok := r.lookup(key)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		r.missing = append(r.missing, qualified)
		return ""
	}
	return value
}

// requireInt accepts any present integer, including 0.
func (r *reader) requireInt(key string) int {
	qualified, value, ok := r.lookup(key)
	if !ok {
		r.missing = append(r.missing, qualified)
		return 0
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		r.invalid = append(r.invalid, fmt.Sprintf("%s: %q is not a number", qualified, value))
		return 0
	}
	return n
}

// requireBool accepts any present boolean, including false.
func (r *reader) requireBool(key string) bool {
	qualified, value, ok := r.lookup(key)
	if !ok {
		r.missing = append(r.missing, qualified)
		return false
	}

	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		r.invalid = append(r.invalid, fmt.Sprintf("%s: %q is not a boolean", qualified, value))
		return false
	}
	return b
}

func (r *reader) err() error {
	if len(r.missing) > 0 {
		return apperrors.ErrMissingConfiguration(
			"missing required configuration",
			fmt.Errorf("set %s via Pulumi config", strings.Join(r.missing, ", ")),
		)
	}
	if len(r.invalid) > 0 {
		return apperrors.ErrInvalidConfiguration(
			"invalid configuration",
			errors.New(strings.Join(r.invalid, "; ")),
		)
	}
	return nil
}
