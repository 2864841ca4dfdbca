package infra

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/auto"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optdestroy"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optpreview"
	"github.com/pulumi/pulumi/sdk/v3/go/auto/optup"
	"github.com/pulumi/pulumi/sdk/v3/go/common/apitype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/n8n-self-host/n8n-gcp/internal/errors"
	"github.com/n8n-self-host/n8n-gcp/internal/testutil"
)

type fakeStack struct {
	config     auto.ConfigMap
	configErr  error
	preview    auto.PreviewResult
	up         auto.UpResult
	destroy    auto.DestroyResult
	outputs    auto.OutputMap
	opErr      error
	operations []string
}

func (f *fakeStack) SetAllConfig(_ context.Context, config auto.ConfigMap) error {
	f.config = config
	return f.configErr
}

func (f *fakeStack) Preview(_ context.Context, _ ...optpreview.Option) (auto.PreviewResult, error) {
	f.operations = append(f.operations, OperationPreview)
	return f.preview, f.opErr
}

func (f *fakeStack) Up(_ context.Context, _ ...optup.Option) (auto.UpResult, error) {
	f.operations = append(f.operations, OperationUp)
	return f.up, f.opErr
}

func (f *fakeStack) Destroy(_ context.Context, _ ...optdestroy.Option) (auto.DestroyResult, error) {
	f.operations = append(f.operations, OperationDestroy)
	return f.destroy, f.opErr
}

func (f *fakeStack) Outputs(_ context.Context) (auto.OutputMap, error) {
	return f.outputs, f.opErr
}

type openCall struct {
	stack   string
	workDir string
	create  bool
}

func opener(s *fakeStack, err error, calls *[]openCall) StackOpener {
	return func(_ context.Context, stackName, workDir string, create bool) (Stack, error) {
		*calls = append(*calls, openCall{stack: stackName, workDir: workDir, create: create})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func TestUp(t *testing.T) {
	changes := map[string]int{"create": 20}
	s := &fakeStack{
		up: auto.UpResult{
			Summary: auto.UpdateSummary{Result: "succeeded", ResourceChanges: &changes},
			Outputs: auto.OutputMap{
				"serviceUrl":             {Value: "https://n8n-42.us-central1.run.app"},
				"cloudSqlConnectionName": {Value: "p:us-central1:n8n-db", Secret: true},
			},
		},
	}
	var calls []openCall
	d := NewDeployerWithOpener(opener(s, nil, &calls), testutil.SilentLogger())

	res, err := d.Up(context.Background(), &Options{
		StackName: "dev",
		WorkDir:   "/srv/n8n",
		Config:    map[string]string{"dbTier": "db-f1-micro", "gcp:region": "europe-west1"},
		Progress:  &bytes.Buffer{},
	})

	require.NoError(t, err)
	assert.Equal(t, []openCall{{stack: "dev", workDir: "/srv/n8n", create: true}}, calls)
	assert.Equal(t, auto.ConfigMap{
		"n8n-self-host-on-gcp:dbTier": {Value: "db-f1-micro"},
		"gcp:region":                  {Value: "europe-west1"},
	}, s.config)
	assert.Equal(t, OperationUp, res.Operation)
	assert.Equal(t, "succeeded", res.Status)
	assert.Equal(t, changes, res.Changes)
	assert.False(t, res.NoChanges())
	assert.Equal(t, map[string]string{
		"serviceUrl":             "https://n8n-42.us-central1.run.app",
		"cloudSqlConnectionName": SecretOutputMask,
	}, res.Outputs)
}

func TestPreview(t *testing.T) {
	s := &fakeStack{preview: auto.PreviewResult{
		ChangeSummary: map[apitype.OpType]int{apitype.OpType("same"): 20},
	}}
	var calls []openCall
	d := NewDeployerWithOpener(opener(s, nil, &calls), testutil.SilentLogger())

	res, err := d.Preview(context.Background(), &Options{StackName: "dev"})

	require.NoError(t, err)
	assert.Nil(t, s.config, "no overrides means no config write")
	assert.Equal(t, map[string]int{"same": 20}, res.Changes)
	assert.True(t, res.NoChanges())
}

func TestDestroyAndOutputsSelectExistingStack(t *testing.T) {
	s := &fakeStack{
		destroy: auto.DestroyResult{Summary: auto.UpdateSummary{Result: "succeeded"}},
		outputs: auto.OutputMap{"serviceHost": {Value: "n8n-42.us-central1.run.app"}},
	}
	var calls []openCall
	d := NewDeployerWithOpener(opener(s, nil, &calls), testutil.SilentLogger())

	res, err := d.Destroy(context.Background(), &Options{StackName: "dev"})
	require.NoError(t, err)
	assert.Equal(t, OperationDestroy, res.Operation)
	assert.Empty(t, res.Changes)

	outputs, err := d.Outputs(context.Background(), &Options{StackName: "dev"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"serviceHost": "n8n-42.us-central1.run.app"}, outputs)

	for _, call := range calls {
		assert.False(t, call.create)
	}
}

func TestDeployerFailures(t *testing.T) {
	tests := []struct {
		name     string
		opts     *Options
		stack    *fakeStack
		openErr  error
		wantCode string
		wantMsg  string
	}{
		{
			name:     "missing stack name",
			opts:     &Options{},
			stack:    &fakeStack{},
			wantCode: apperrors.ErrCodeInvalidConfiguration,
			wantMsg:  "stack name is required",
		},
		{
			name:     "open failure",
			opts:     &Options{StackName: "dev"},
			stack:    &fakeStack{},
			openErr:  errors.New("no Pulumi.yaml"),
			wantCode: apperrors.ErrCodeProviderRejection,
			wantMsg:  "failed to open stack",
		},
		{
			name:     "config failure",
			opts:     &Options{StackName: "dev", Config: map[string]string{"dbName": "n8n"}},
			stack:    &fakeStack{configErr: errors.New("locked")},
			wantCode: apperrors.ErrCodeProviderRejection,
			wantMsg:  "failed to set stack configuration",
		},
		{
			name:     "engine failure",
			opts:     &Options{StackName: "dev"},
			stack:    &fakeStack{opErr: errors.New("quota exceeded")},
			wantCode: apperrors.ErrCodeProviderRejection,
			wantMsg:  "update failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []openCall
			d := NewDeployerWithOpener(opener(tt.stack, tt.openErr, &calls), nil)

			res, err := d.Up(context.Background(), tt.opts)

			require.Error(t, err)
			assert.Nil(t, res)
			testutil.AssertAppError(t, err, tt.wantCode, tt.wantMsg)
		})
	}
}

func TestParseParameters(t *testing.T) {
	tests := []struct {
		name     string
		params   []string
		expected map[string]string
		wantErr  bool
	}{
		{
			name:     "empty",
			params:   nil,
			expected: map[string]string{},
		},
		{
			name:     "values may contain equals",
			params:   []string{"dbName=n8n", "genericTimezone=Europe/Rome", "x=a=b"},
			expected: map[string]string{"dbName": "n8n", "genericTimezone": "Europe/Rome", "x": "a=b"},
		},
		{
			name:     "empty value allowed",
			params:   []string{"dbTier="},
			expected: map[string]string{"dbTier": ""},
		},
		{
			name:    "missing separator",
			params:  []string{"dbName"},
			wantErr: true,
		},
		{
			name:    "missing key",
			params:  []string{"=n8n"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseParameters(tt.params)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
