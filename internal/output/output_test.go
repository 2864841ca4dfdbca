package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	old := Stdout
	t.Cleanup(func() { Stdout = old })
	buf := &bytes.Buffer{}
	Stdout = buf
	return buf
}

func TestMessages(t *testing.T) {
	tests := []struct {
		name   string
		print  func(string, ...any)
		symbol string
	}{
		{"success", Successf, "✓"},
		{"info", Infof, "→"},
		{"warning", Warningf, "⚠"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureStdout(t)
			tt.print("stack %s ready", "dev")

			assert.Contains(t, buf.String(), tt.symbol)
			assert.Contains(t, buf.String(), "stack dev ready")
		})
	}
}

func TestErrorfWritesToStderr(t *testing.T) {
	stdout := captureStdout(t)
	old := Stderr
	t.Cleanup(func() { Stderr = old })
	stderr := &bytes.Buffer{}
	Stderr = stderr

	Errorf("missing %s", "gcp:project")

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "missing gcp:project")
}

func TestKeyValue(t *testing.T) {
	buf := captureStdout(t)

	KeyValue("gcp:region", "us-central1")
	KeyValue("serviceUrl", "https://n8n-1.us-central1.run.app")

	out := buf.String()
	assert.Contains(t, out, "gcp:region")
	assert.Contains(t, out, "us-central1")
	assert.Contains(t, out, "https://n8n-1.us-central1.run.app")
}

func TestSteps(t *testing.T) {
	buf := captureStdout(t)

	StepSuccess(1, 2, "project reachable")
	StepError(2, 2, "sqladmin.googleapis.com disabled")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[1/2]")
	assert.Contains(t, lines[0], "✓ project reachable")
	assert.Contains(t, lines[1], "✗ sqladmin.googleapis.com disabled")
}

func TestHeader(t *testing.T) {
	buf := captureStdout(t)

	Header("Deployment plan")

	assert.Contains(t, buf.String(), "Deployment plan")
	assert.Contains(t, buf.String(), "━━━━")
}

func TestTable(t *testing.T) {
	buf := captureStdout(t)

	Table([]string{"Resource", "Kind"}, [][]string{
		{"runApi", "api"},
		{"n8nDbInstance", "database", "ignored"},
	})

	out := buf.String()
	assert.Contains(t, out, "Resource")
	assert.Contains(t, out, "n8nDbInstance")
	assert.NotContains(t, out, "ignored")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 4)
}

func TestTable_NoHeaders(t *testing.T) {
	buf := captureStdout(t)

	Table(nil, [][]string{{"x"}})

	assert.Empty(t, buf.String())
}

func TestList(t *testing.T) {
	buf := captureStdout(t)

	List([]string{"run.googleapis.com", "sqladmin.googleapis.com"})

	assert.Equal(t, 2, strings.Count(buf.String(), "•"))
}

func TestStatusBadge(t *testing.T) {
	for _, status := range []string{"enabled", "DISABLED", "unknown", "pending"} {
		assert.Contains(t, StatusBadge(status), "● "+status)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{42 * time.Second, "42s"},
		{3*time.Minute + 5*time.Second, "3m 5s"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Duration(tt.in))
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			captureStdout(t)
			old := Stdin
			t.Cleanup(func() { Stdin = old })
			Stdin = strings.NewReader(tt.input)

			assert.Equal(t, tt.want, Confirm("Destroy stack dev?"))
		})
	}
}
