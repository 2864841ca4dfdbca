package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNames(t *testing.T) {
	assert.Equal(t, "projects/test-project", ProjectName("test-project"))
	assert.Equal(t, "projects/test-project/services/run.googleapis.com",
		ServiceName("test-project", "run.googleapis.com"))
}
