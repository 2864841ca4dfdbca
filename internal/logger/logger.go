// Package logger configures structured logging for the CLI and the Pulumi program.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/n8n-self-host/n8n-gcp/internal/constants"
)

// Initialize sets up the global slog logger based on the environment
func Initialize(env constants.Environment, level slog.Level) *slog.Logger {
	logger := slog.New(newHandler(os.Stderr, env, level))
	slog.SetDefault(logger)
	slog.Debug("logger initialized", "env", env, "level", level)

	return logger
}

func newHandler(w io.Writer, env constants.Environment, level slog.Level) slog.Handler {
	if env == constants.Production {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}

	return tint.NewHandler(w, &tint.Options{
		Level:       level,
		TimeFormat:  time.TimeOnly,
		ReplaceAttr: replaceAttrForDev,
	})
}

// replaceAttrForDev flattens map values into "key.sub=value" pairs for terminal output.
func replaceAttrForDev(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindAny {
		return a
	}

	switch a.Value.Any().(type) {
	case map[string]string, map[string]any:
		return slog.String(a.Key, flattenMapAttr(a.Key, a.Value.Any()))
	}
	return a
}

func flattenMapAttr(prefix string, value any) string {
	var pairs []string

	add := func(key string, v any) {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch nested := v.(type) {
		case map[string]string, map[string]any:
			pairs = append(pairs, flattenMapAttr(full, nested))
		default:
			pairs = append(pairs, fmt.Sprintf("%s=%v", full, v))
		}
	}

	switch m := value.(type) {
	case map[string]string:
		for k, v := range m {
			add(k, v)
		}
	case map[string]any:
		for k, v := range m {
			add(k, v)
		}
	default:
		return fmt.Sprintf("%v", value)
	}

	sort.Strings(pairs)
	return strings.Join(pairs, " ")
}
