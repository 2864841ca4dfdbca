package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"unicode"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	pulumiconfig "github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
	"github.com/spf13/viper"

	"github.com/n8n-self-host/n8n-gcp/internal/constants"
)

// Source resolves fully qualified configuration keys ("namespace:key").
// The boolean reports whether the key is present at all; a present empty string is
// distinguishable from an absent key.
type Source interface {
	Lookup(key string) (string, bool)
}

// PulumiSource reads the configuration of the running Pulumi stack.
type PulumiSource struct {
	ctx *pulumi.Context
}

// NewPulumiSource creates a Source backed by the stack configuration of ctx.
func NewPulumiSource(ctx *pulumi.Context) *PulumiSource {
	return &PulumiSource{ctx: ctx}
}

// Lookup implements Source.
func (s *PulumiSource) Lookup(key string) (string, bool) {
	value, err := pulumiconfig.Try(s.ctx, key)
	if err != nil {
		return "", false
	}
	return value, true
}

// MapSource is a static Source, mostly useful in tests.
type MapSource map[string]string

// Lookup implements Source.
func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// NewOverrideSource builds a MapSource from CLI overrides, qualifying bare keys with the
// project namespace.
func NewOverrideSource(values map[string]string) MapSource {
	m := make(MapSource, len(values))
	for key, value := range values {
		m[constants.QualifiedConfigKey(key)] = value
	}
	return m
}

// LayeredSource consults its sources in order and returns the first hit.
type LayeredSource []Source

// Lookup implements Source.
func (l LayeredSource) Lookup(key string) (string, bool) {
	for _, src := range l {
		if src == nil {
			continue
		}
		if value, ok := src.Lookup(key); ok {
			return value, true
		}
	}
	return "", false
}

// FileSource reads a Pulumi stack file (Pulumi.<stack>.yaml) through Viper, with
// N8N_GCP_* environment variables taking precedence over file values.
type FileSource struct {
	v *viper.Viper
}

// stackConfigSection is the top-level key of a Pulumi stack file holding configuration.
const stackConfigSection = "config"

// NewFileSource loads path. An empty path means "environment only".
func NewFileSource(path string) (*FileSource, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("stack file not found: %s", path)
			}
			return nil, fmt.Errorf("error loading stack file: %w", err)
		}
	}

	for _, key := range knownKeys() {
		_ = v.BindEnv(viperKey(key), EnvVarName(key))
	}

	return &FileSource{v: v}, nil
}

// Lookup implements Source.
func (s *FileSource) Lookup(key string) (string, bool) {
	k := viperKey(key)
	if !s.v.IsSet(k) {
		return "", false
	}
	return s.v.GetString(k), true
}

// EnvVarName maps a configuration key to its CLI environment override,
// e.g. "n8n-self-host-on-gcp:dbName" -> "N8N_GCP_DB_NAME" and "gcp:project" -> "N8N_GCP_PROJECT".
func EnvVarName(key string) string {
	if i := strings.LastIndex(key, ":"); i >= 0 {
		key = key[i+1:]
	}

	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return constants.EnvPrefix + "_" + b.String()
}

func viperKey(key string) string {
	return stackConfigSection + "." + key
}

func knownKeys() []string {
	keys := []string{constants.ConfigKeyProject, constants.ConfigKeyRegion}
	for _, k := range []string{
		constants.ConfigKeyDBName,
		constants.ConfigKeyDBUser,
		constants.ConfigKeyDBTier,
		constants.ConfigKeyDBVersion,
		constants.ConfigKeyDBStorageSize,
		constants.ConfigKeyServiceName,
		constants.ConfigKeyServiceAccountName,
		constants.ConfigKeyCPU,
		constants.ConfigKeyMemory,
		constants.ConfigKeyMaxInstances,
		constants.ConfigKeyContainerPort,
		constants.ConfigKeyTimezone,
		constants.ConfigKeyAllowUnauthenticated,
	} {
		keys = append(keys, constants.QualifiedConfigKey(k))
	}
	return keys
}
