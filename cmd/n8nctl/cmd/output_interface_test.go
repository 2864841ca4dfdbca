package cmd

import (
	"bytes"
	"fmt"
	"io"
)

// mockOutputInterface records every output call for assertions.
type mockOutputInterface struct {
	calls   []call
	buf     bytes.Buffer
	confirm bool
}

type call struct {
	method string
	args   []any
}

func (m *mockOutputInterface) Infof(format string, a ...any) {
	m.calls = append(m.calls, call{method: "Infof", args: []any{fmt.Sprintf(format, a...)}})
}
func (m *mockOutputInterface) Errorf(format string, a ...any) {
	m.calls = append(m.calls, call{method: "Errorf", args: []any{fmt.Sprintf(format, a...)}})
}
func (m *mockOutputInterface) Successf(format string, a ...any) {
	m.calls = append(m.calls, call{method: "Successf", args: []any{fmt.Sprintf(format, a...)}})
}
func (m *mockOutputInterface) Warningf(format string, a ...any) {
	m.calls = append(m.calls, call{method: "Warningf", args: []any{fmt.Sprintf(format, a...)}})
}
func (m *mockOutputInterface) Table(headers []string, rows [][]string) {
	m.calls = append(m.calls, call{method: "Table", args: []any{headers, rows}})
}
func (m *mockOutputInterface) Blank() {
	m.calls = append(m.calls, call{method: "Blank", args: []any{}})
}
func (m *mockOutputInterface) Bold(text string) string {
	return text
}
func (m *mockOutputInterface) KeyValue(key, value string) {
	m.calls = append(m.calls, call{method: "KeyValue", args: []any{key, value}})
}
func (m *mockOutputInterface) StepSuccess(step, total int, message string) {
	m.calls = append(m.calls, call{method: "StepSuccess", args: []any{step, total, message}})
}
func (m *mockOutputInterface) StepError(step, total int, message string) {
	m.calls = append(m.calls, call{method: "StepError", args: []any{step, total, message}})
}
func (m *mockOutputInterface) List(items []string) {
	m.calls = append(m.calls, call{method: "List", args: []any{items}})
}
func (m *mockOutputInterface) StatusBadge(status string) string {
	return "● " + status
}
func (m *mockOutputInterface) Confirm(prompt string) bool {
	m.calls = append(m.calls, call{method: "Confirm", args: []any{prompt}})
	return m.confirm
}
func (m *mockOutputInterface) Writer() io.Writer {
	return &m.buf
}

// messages returns the first argument of every call to method.
func (m *mockOutputInterface) messages(method string) []any {
	var out []any
	for _, c := range m.calls {
		if c.method == method && len(c.args) > 0 {
			out = append(out, c.args[0])
		}
	}
	return out
}

// stepMessages returns the message of every call to a step method.
func (m *mockOutputInterface) stepMessages(method string) []string {
	var out []string
	for _, c := range m.calls {
		if c.method == method {
			out = append(out, c.args[2].(string))
		}
	}
	return out
}

// keyValues returns every KeyValue call as a map.
func (m *mockOutputInterface) keyValues() map[string]string {
	out := make(map[string]string)
	for _, c := range m.calls {
		if c.method == "KeyValue" {
			out[c.args[0].(string)] = c.args[1].(string)
		}
	}
	return out
}
