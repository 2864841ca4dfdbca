package gcp

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"cloud.google.com/go/resourcemanager/apiv3/resourcemanagerpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/n8n-self-host/n8n-gcp/internal/errors"
)

type fakeProjects struct {
	name   string
	err    error
	asked  []string
	closed bool
}

func (f *fakeProjects) GetProject(_ context.Context, name string) (*resourcemanagerpb.Project, error) {
	f.asked = append(f.asked, name)
	if f.err != nil {
		return nil, f.err
	}
	return &resourcemanagerpb.Project{Name: f.name, ProjectId: "test-project"}, nil
}

func (f *fakeProjects) Close() error {
	f.closed = true
	return nil
}

type fakeServiceUsage struct {
	mu        sync.Mutex
	states    map[string]string
	errs      map[string]error
	enabled   []string
	enableErr error
}

func (f *fakeServiceUsage) ServiceState(_ context.Context, _, service string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[service]; ok {
		return "", err
	}
	return f.states[service], nil
}

func (f *fakeServiceUsage) EnableServices(_ context.Context, _ string, services []string) error {
	f.enabled = append(f.enabled, services...)
	return f.enableErr
}

func TestProjectNumber(t *testing.T) {
	tests := []struct {
		name       string
		projects   *fakeProjects
		wantNumber string
		wantErr    string
	}{
		{
			name:       "resolved",
			projects:   &fakeProjects{name: "projects/1234567890"},
			wantNumber: "1234567890",
		},
		{
			name:     "not found",
			projects: &fakeProjects{err: status.Error(codes.NotFound, "no such project")},
			wantErr:  "project test-project not found",
		},
		{
			name:     "permission denied",
			projects: &fakeProjects{err: status.Error(codes.PermissionDenied, "denied")},
			wantErr:  "permission denied reading project test-project",
		},
		{
			name:     "other failure",
			projects: &fakeProjects{err: errors.New("connection reset")},
			wantErr:  "failed to get project",
		},
		{
			name:     "malformed name",
			projects: &fakeProjects{name: "folders/1"},
			wantErr:  `unexpected project name "folders/1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inspector := NewInspectorWithClients(tt.projects, &fakeServiceUsage{}, nil)

			number, err := inspector.ProjectNumber(context.Background(), "test-project")

			assert.Equal(t, []string{"projects/test-project"}, tt.projects.asked)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrProvider)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNumber, number)
		})
	}
}

func TestDiagnose(t *testing.T) {
	services := []string{"run.googleapis.com", "sqladmin.googleapis.com", "secretmanager.googleapis.com"}

	usage := &fakeServiceUsage{
		states: map[string]string{
			"run.googleapis.com":      "ENABLED",
			"sqladmin.googleapis.com": "DISABLED",
		},
		errs: map[string]error{
			"secretmanager.googleapis.com": &googleapi.Error{Code: http.StatusForbidden},
		},
	}
	inspector := NewInspectorWithClients(&fakeProjects{name: "projects/42"}, usage, nil)

	report, err := inspector.Diagnose(context.Background(), "test-project", services)

	require.NoError(t, err)
	assert.Equal(t, "42", report.ProjectNumber)
	assert.Equal(t, []ServiceStatus{
		{Service: "run.googleapis.com", State: "ENABLED"},
		{Service: "sqladmin.googleapis.com", State: "DISABLED"},
		{Service: "secretmanager.googleapis.com", State: "DISABLED"},
	}, report.Services)
	assert.Equal(t, []string{"sqladmin.googleapis.com", "secretmanager.googleapis.com"}, report.Disabled())
	assert.False(t, report.Healthy())
}

func TestDiagnose_Healthy(t *testing.T) {
	usage := &fakeServiceUsage{states: map[string]string{"run.googleapis.com": "ENABLED"}}
	inspector := NewInspectorWithClients(&fakeProjects{name: "projects/42"}, usage, nil)

	report, err := inspector.Diagnose(context.Background(), "test-project", []string{"run.googleapis.com"})

	require.NoError(t, err)
	assert.True(t, report.Healthy())
	assert.Empty(t, report.Disabled())
}

func TestDiagnose_Failures(t *testing.T) {
	tests := []struct {
		name     string
		projects *fakeProjects
		usage    *fakeServiceUsage
		wantErr  string
	}{
		{
			name:     "unreachable project",
			projects: &fakeProjects{err: status.Error(codes.NotFound, "gone")},
			usage:    &fakeServiceUsage{},
			wantErr:  "not found",
		},
		{
			name:     "service usage failure",
			projects: &fakeProjects{name: "projects/42"},
			usage: &fakeServiceUsage{errs: map[string]error{
				"run.googleapis.com": &googleapi.Error{Code: http.StatusInternalServerError},
			}},
			wantErr: "failed to read state of run.googleapis.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inspector := NewInspectorWithClients(tt.projects, tt.usage, nil)

			report, err := inspector.Diagnose(context.Background(), "test-project", []string{"run.googleapis.com"})

			require.Error(t, err)
			assert.Nil(t, report)
			assert.ErrorIs(t, err, apperrors.ErrProvider)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnableServices(t *testing.T) {
	usage := &fakeServiceUsage{}
	inspector := NewInspectorWithClients(&fakeProjects{}, usage, nil)

	require.NoError(t, inspector.EnableServices(context.Background(), "test-project",
		[]string{"sqladmin.googleapis.com", "run.googleapis.com"}))
	assert.Equal(t, []string{"run.googleapis.com", "sqladmin.googleapis.com"}, usage.enabled)

	usage.enableErr = errors.New("quota exceeded")
	err := inspector.EnableServices(context.Background(), "test-project", []string{"run.googleapis.com"})
	assert.ErrorIs(t, err, apperrors.ErrProvider)
}

func TestEnableServices_NothingToDo(t *testing.T) {
	usage := &fakeServiceUsage{enableErr: errors.New("must not be called")}
	inspector := NewInspectorWithClients(&fakeProjects{}, usage, nil)

	assert.NoError(t, inspector.EnableServices(context.Background(), "test-project", nil))
	assert.Empty(t, usage.enabled)
}

func TestClose(t *testing.T) {
	projects := &fakeProjects{}
	inspector := NewInspectorWithClients(projects, &fakeServiceUsage{}, nil)

	require.NoError(t, inspector.Close())
	assert.True(t, projects.closed)
}
