package cmd

import (
	"io"

	"github.com/n8n-self-host/n8n-gcp/internal/output"
)

// OutputInterface defines the interface for output operations to enable dependency injection and testing.
type OutputInterface interface {
	Infof(format string, a ...any)
	Errorf(format string, a ...any)
	Successf(format string, a ...any)
	Warningf(format string, a ...any)
	Table(headers []string, rows [][]string)
	Blank()
	Bold(text string) string
	KeyValue(key, value string)
	StepSuccess(step, total int, message string)
	StepError(step, total int, message string)
	List(items []string)
	StatusBadge(status string) string
	Confirm(prompt string) bool
	Writer() io.Writer
}

// outputWrapper wraps the global output package functions to implement OutputInterface.
type outputWrapper struct{}

// NewOutputWrapper creates a new output wrapper that implements OutputInterface.
func NewOutputWrapper() OutputInterface {
	return &outputWrapper{}
}

func (o *outputWrapper) Infof(format string, a ...any) {
	output.Infof(format, a...)
}

func (o *outputWrapper) Errorf(format string, a ...any) {
	output.Errorf(format, a...)
}

func (o *outputWrapper) Successf(format string, a ...any) {
	output.Successf(format, a...)
}

func (o *outputWrapper) Warningf(format string, a ...any) {
	output.Warningf(format, a...)
}

func (o *outputWrapper) Table(headers []string, rows [][]string) {
	output.Table(headers, rows)
}

func (o *outputWrapper) Blank() {
	output.Blank()
}

func (o *outputWrapper) Bold(text string) string {
	return output.Bold(text)
}

func (o *outputWrapper) KeyValue(key, value string) {
	output.KeyValue(key, value)
}

func (o *outputWrapper) StepSuccess(step, total int, message string) {
	output.StepSuccess(step, total, message)
}

func (o *outputWrapper) StepError(step, total int, message string) {
	output.StepError(step, total, message)
}

func (o *outputWrapper) List(items []string) {
	output.List(items)
}

func (o *outputWrapper) StatusBadge(status string) string {
	return output.StatusBadge(status)
}

func (o *outputWrapper) Confirm(prompt string) bool {
	return output.Confirm(prompt)
}

func (o *outputWrapper) Writer() io.Writer {
	return output.Stdout
}
