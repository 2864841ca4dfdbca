// Package errors provides the error taxonomy for building and applying the deployment.
// Every error is fatal: it is surfaced to the operator, never repaired locally.
package errors

import (
	"errors"
	"fmt"
)

// AppError represents a deployment error with a stable, programmatic code.
type AppError struct {
	// Code is the error code string for programmatic handling
	Code string
	// Message is a user-friendly error message
	Message string
	// Cause is the underlying error (for error wrapping)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is to work with AppError.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code != "" && e.Code == t.Code
	}
	return false
}

// Predefined error codes.
const (
	// ErrCodeMissingConfiguration marks a required key that is absent or empty.
	ErrCodeMissingConfiguration = "MISSING_CONFIGURATION"
	// ErrCodeInvalidConfiguration marks a key that is present but unusable.
	ErrCodeInvalidConfiguration = "INVALID_CONFIGURATION"
	// ErrCodeProviderRejection marks a refusal by the cloud provider or the engine.
	ErrCodeProviderRejection = "PROVIDER_REJECTION"
	// ErrCodeDependencyOrdering marks a resource declared before one of its producers.
	ErrCodeDependencyOrdering = "DEPENDENCY_ORDERING_VIOLATION"
	// ErrCodePolicyViolation marks a role grant outside the least-privilege policy.
	ErrCodePolicyViolation = "POLICY_VIOLATION"
)

// Sentinels for errors.Is comparisons.
var (
	ErrMissing  = &AppError{Code: ErrCodeMissingConfiguration}
	ErrInvalid  = &AppError{Code: ErrCodeInvalidConfiguration}
	ErrProvider = &AppError{Code: ErrCodeProviderRejection}
	ErrOrdering = &AppError{Code: ErrCodeDependencyOrdering}
	ErrPolicy   = &AppError{Code: ErrCodePolicyViolation}
)

// ErrMissingConfiguration creates a missing configuration error.
func ErrMissingConfiguration(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeMissingConfiguration, Message: message, Cause: cause}
}

// ErrInvalidConfiguration creates an invalid configuration error.
func ErrInvalidConfiguration(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeInvalidConfiguration, Message: message, Cause: cause}
}

// ErrProviderRejection wraps an error returned by the provisioning engine or a provider API.
func ErrProviderRejection(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeProviderRejection, Message: message, Cause: cause}
}

// ErrDependencyOrdering creates a dependency ordering violation.
func ErrDependencyOrdering(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeDependencyOrdering, Message: message, Cause: cause}
}

// ErrPolicyViolation creates a least-privilege policy violation.
func ErrPolicyViolation(message string, cause error) *AppError {
	return &AppError{Code: ErrCodePolicyViolation, Message: message, Cause: cause}
}

// GetErrorCode extracts the error code from an error.
// Returns empty string if the error is not an AppError.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetErrorMessage extracts a user-friendly message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// GetErrorDetails returns the underlying cause message if available, otherwise the main message.
func GetErrorDetails(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Cause != nil {
			return appErr.Cause.Error()
		}
		return appErr.Message
	}
	return err.Error()
}
