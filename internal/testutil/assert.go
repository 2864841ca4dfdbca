package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/n8n-self-host/n8n-gcp/internal/errors"
)

// AssertAppErrorCode checks if the error has a specific error code.
func AssertAppErrorCode(t *testing.T, err error, expectedCode string, _ ...any) bool {
	t.Helper()
	code := apperrors.GetErrorCode(err)
	if code != expectedCode {
		return assert.Fail(t, "Error code mismatch", "Expected error code %q, got %q (%v)", expectedCode, code, err)
	}
	return true
}

// AssertAppError checks both the code and the user-facing message of an error.
func AssertAppError(t *testing.T, err error, expectedCode, expectedMessage string) bool {
	t.Helper()
	if !AssertAppErrorCode(t, err, expectedCode) {
		return false
	}
	return assert.Equal(t, expectedMessage, apperrors.GetErrorMessage(err))
}
