package stack

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/require"

	"github.com/n8n-self-host/n8n-gcp/internal/config"
	"github.com/n8n-self-host/n8n-gcp/internal/constants"
	"github.com/n8n-self-host/n8n-gcp/internal/testutil"
)

const (
	testProject       = "test-project"
	testRegion        = "us-central1"
	testProjectNumber = "1234567890"
)

type recordedResource struct {
	Type         string
	Name         string
	Inputs       resource.PropertyMap
	Dependencies []string
}

type recordedCall struct {
	Token string
	Args  resource.PropertyMap
}

// mocks records every registration and answers provider reads with fixed values.
type mocks struct {
	mu        sync.Mutex
	resources []recordedResource
	calls     []recordedCall
}

func (m *mocks) NewResource(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
	var deps []string
	if args.RegisterRPC != nil {
		deps = args.RegisterRPC.GetDependencies()
	}

	m.mu.Lock()
	m.resources = append(m.resources, recordedResource{
		Type:         args.TypeToken,
		Name:         args.Name,
		Inputs:       args.Inputs,
		Dependencies: deps,
	})
	m.mu.Unlock()

	outputs := args.Inputs.Copy()
	switch args.TypeToken {
	case constants.TypeDatabaseInstance:
		outputs["connectionName"] = resource.NewStringProperty(fmt.Sprintf("%s:%s:%s",
			inputString(args.Inputs, "project"), inputString(args.Inputs, "region"), inputString(args.Inputs, "name")))
	case constants.TypeServiceAccount:
		outputs["email"] = resource.NewStringProperty(fmt.Sprintf("%s@%s.iam.gserviceaccount.com",
			inputString(args.Inputs, "accountId"), inputString(args.Inputs, "project")))
	case constants.TypeRandomPassword:
		outputs["result"] = resource.NewStringProperty(fakePassword(args.Name, args.Inputs))
	case constants.TypeCloudRunService:
		outputs["uri"] = resource.NewStringProperty("https://" + inputString(args.Inputs, "name") + "-abc123-uc.a.run.app")
	}

	return args.Name + "_id", outputs, nil
}

func (m *mocks) Call(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
	m.mu.Lock()
	m.calls = append(m.calls, recordedCall{Token: args.Token, Args: args.Args})
	m.mu.Unlock()

	if args.Token == constants.TypeGetProject {
		return resource.PropertyMap{
			"number":    resource.NewStringProperty(testProjectNumber),
			"projectId": resource.NewStringProperty(inputString(args.Args, "projectId")),
		}, nil
	}
	return resource.PropertyMap{}, nil
}

// fakePassword derives a deterministic result from the keepers, the way a real generator
// keeps its value while the keepers are unchanged.
func fakePassword(name string, inputs resource.PropertyMap) string {
	keepers, ok := inputs["keepers"]
	if !ok || !keepers.IsObject() {
		return "generated-" + name
	}
	obj := keepers.ObjectValue()
	return "generated-" + name + "-" + inputString(obj, keeperDBInstance) + "-" + inputString(obj, keeperDBUser)
}

func (m *mocks) byName(t *testing.T, name string) recordedResource {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.resources {
		if r.Name == name {
			return r
		}
	}
	require.FailNow(t, "resource not registered", name)
	return recordedResource{}
}

func (m *mocks) has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.resources {
		if r.Name == name {
			return true
		}
	}
	return false
}

func (m *mocks) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.resources))
	for _, r := range m.resources {
		out = append(out, r.Name)
	}
	return out
}

// dependsOn reports whether r lists the resource called name among its dependencies.
func (r recordedResource) dependsOn(name string) bool {
	for _, urn := range r.Dependencies {
		if strings.HasSuffix(urn, "::"+name) {
			return true
		}
	}
	return false
}

func unwrap(v resource.PropertyValue) resource.PropertyValue {
	for v.IsSecret() {
		v = v.SecretValue().Element
	}
	return v
}

func inputString(m resource.PropertyMap, key string) string {
	v, ok := m[resource.PropertyKey(key)]
	if !ok {
		return ""
	}
	v = unwrap(v)
	if !v.IsString() {
		return ""
	}
	return v.StringValue()
}

func inputObject(t *testing.T, m resource.PropertyMap, key string) resource.PropertyMap {
	t.Helper()
	v, ok := m[resource.PropertyKey(key)]
	require.True(t, ok, "missing input %s", key)
	v = unwrap(v)
	require.True(t, v.IsObject(), "input %s is not an object", key)
	return v.ObjectValue()
}

func inputArray(t *testing.T, m resource.PropertyMap, key string) []resource.PropertyValue {
	t.Helper()
	v, ok := m[resource.PropertyKey(key)]
	require.True(t, ok, "missing input %s", key)
	v = unwrap(v)
	require.True(t, v.IsArray(), "input %s is not an array", key)
	return v.ArrayValue()
}

func inputNumber(t *testing.T, m resource.PropertyMap, key string) float64 {
	t.Helper()
	v, ok := m[resource.PropertyKey(key)]
	require.True(t, ok, "missing input %s", key)
	v = unwrap(v)
	require.True(t, v.IsNumber(), "input %s is not a number", key)
	return v.NumberValue()
}

func inputBool(t *testing.T, m resource.PropertyMap, key string) bool {
	t.Helper()
	v, ok := m[resource.PropertyKey(key)]
	require.True(t, ok, "missing input %s", key)
	v = unwrap(v)
	require.True(t, v.IsBool(), "input %s is not a bool", key)
	return v.BoolValue()
}

func testConfig() *config.DeploymentConfig {
	return testutil.NewConfigBuilder().
		With(constants.ConfigKeyServiceName, "service-allow").
		Build()
}

// provisioned is what a mocked run produced.
type provisioned struct {
	mocks       *mocks
	deployment  *Deployment
	serviceHost string
	serviceURL  string
}

func awaitString(o pulumi.StringOutput) string {
	ch := make(chan string, 1)
	o.ApplyT(func(v string) string {
		ch <- v
		return v
	})
	return <-ch
}

func runProvision(t *testing.T, cfg *config.DeploymentConfig) (*provisioned, error) {
	t.Helper()

	p := &provisioned{mocks: &mocks{}}
	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		d, err := Provision(ctx, cfg)
		if err != nil {
			return err
		}
		p.deployment = d
		p.serviceHost = awaitString(d.Service.ServiceHost)
		p.serviceURL = awaitString(d.Service.ServiceURL)
		return nil
	}, pulumi.WithMocks(constants.ProjectName, constants.DefaultStackName, p.mocks))

	return p, err
}
