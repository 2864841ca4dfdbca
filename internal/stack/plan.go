// Package stack declares the n8n deployment on Google Cloud.
//
// Plan builds the explicit dependency graph of every resource from configuration alone.
// Provision validates and audits that graph, then declares each component in order,
// recording every declaration in a ledger that refuses out-of-order resources.
package stack

import (
	"github.com/n8n-self-host/n8n-gcp/internal/config"
	"github.com/n8n-self-host/n8n-gcp/internal/constants"
	"github.com/n8n-self-host/n8n-gcp/internal/graph"
	"github.com/n8n-self-host/n8n-gcp/internal/policy"
)

// planBuilder keeps the first error so the plan reads as a flat list of declarations.
type planBuilder struct {
	g   *graph.Graph
	err error
}

func (b *planBuilder) add(node graph.Node, prerequisites ...string) {
	if b.err != nil {
		return
	}
	if err := b.g.AddNode(node); err != nil {
		b.err = err
		return
	}
	b.g.Require(node.ID, prerequisites...)
}

func grantAttrs(role, memberKind, member, scope, target string) map[string]string {
	return map[string]string{
		graph.AttrRole:       role,
		graph.AttrMemberKind: memberKind,
		graph.AttrMember:     member,
		graph.AttrScope:      scope,
		graph.AttrTarget:     target,
	}
}

// Plan returns the validated dependency graph of the deployment described by cfg.
// The public invoker node is present only when unauthenticated access is enabled.
func Plan(cfg *config.DeploymentConfig) (*graph.Graph, error) {
	b := &planBuilder{g: graph.New()}

	for _, api := range requiredAPIs {
		b.add(graph.Node{ID: api.resource, Kind: graph.KindAPI, Type: constants.TypeProjectService,
			Attrs: map[string]string{"service": api.service}})
	}

	b.add(graph.Node{ID: constants.ResourceServiceAccount, Kind: graph.KindIdentity, Type: constants.TypeServiceAccount},
		constants.ResourceResourceManagerAPI)
	b.add(graph.Node{ID: constants.ResourceSQLClientRole, Kind: graph.KindGrant, Type: constants.TypeProjectIAMMember,
		Attrs: grantAttrs(constants.RoleCloudSQLClient, policy.MemberServiceAccount, constants.ResourceServiceAccount,
			policy.ScopeProject, cfg.GCP.Project)},
		constants.ResourceServiceAccount)

	b.add(graph.Node{ID: constants.ResourceDBPassword, Kind: graph.KindCredential, Type: constants.TypeRandomPassword})
	b.add(graph.Node{ID: constants.ResourceDBInstance, Kind: graph.KindDatabase, Type: constants.TypeDatabaseInstance},
		constants.ResourceSQLAdminAPI)
	b.add(graph.Node{ID: constants.ResourceDatabase, Kind: graph.KindDatabase, Type: constants.TypeDatabase},
		constants.ResourceDBInstance)
	b.add(graph.Node{ID: constants.ResourceDBUser, Kind: graph.KindDatabase, Type: constants.TypeDatabaseUser},
		constants.ResourceDBInstance, constants.ResourceDBPassword)

	b.add(graph.Node{ID: constants.ResourceEncryptionKey, Kind: graph.KindCredential, Type: constants.TypeRandomPassword})
	for _, s := range []struct{ secret, version, accessor, payload string }{
		{constants.ResourceDBPasswordSecret, constants.ResourceDBPasswordVersion, constants.ResourceDBPasswordAccessor, constants.ResourceDBPassword},
		{constants.ResourceEncKeySecret, constants.ResourceEncKeyVersion, constants.ResourceEncKeyAccessor, constants.ResourceEncryptionKey},
	} {
		b.add(graph.Node{ID: s.secret, Kind: graph.KindSecret, Type: constants.TypeSecret},
			constants.ResourceSecretManagerAPI)
		b.add(graph.Node{ID: s.version, Kind: graph.KindVersion, Type: constants.TypeSecretVersion},
			s.secret, s.payload)
		b.add(graph.Node{ID: s.accessor, Kind: graph.KindGrant, Type: constants.TypeSecretIAMMember,
			Attrs: grantAttrs(constants.RoleSecretAccessor, policy.MemberServiceAccount, constants.ResourceServiceAccount,
				policy.ScopeSecret, s.secret)},
			s.secret, constants.ResourceServiceAccount)
	}

	b.add(graph.Node{ID: constants.ResourceProjectLookup, Kind: graph.KindLookup, Type: constants.TypeGetProject},
		constants.ResourceResourceManagerAPI)

	serviceDeps := []string{
		constants.ResourceServiceAccount,
		constants.ResourceSQLClientRole,
		constants.ResourceDBInstance,
		constants.ResourceDatabase,
		constants.ResourceDBUser,
		constants.ResourceDBPasswordSecret,
		constants.ResourceDBPasswordVersion,
		constants.ResourceDBPasswordAccessor,
		constants.ResourceEncKeySecret,
		constants.ResourceEncKeyVersion,
		constants.ResourceEncKeyAccessor,
		constants.ResourceProjectLookup,
	}
	for _, api := range requiredAPIs {
		serviceDeps = append(serviceDeps, api.resource)
	}
	b.add(graph.Node{ID: constants.ResourceService, Kind: graph.KindService, Type: constants.TypeCloudRunService},
		serviceDeps...)

	if cfg.AllowUnauthenticated {
		b.add(graph.Node{ID: constants.ResourcePublicInvoker, Kind: graph.KindGrant, Type: constants.TypeCloudRunIAMMember,
			Attrs: grantAttrs(constants.RoleRunInvoker, policy.MemberAllUsers, constants.MemberAllUsers,
				policy.ScopeService, constants.ResourceService)},
			constants.ResourceService)
	}

	if b.err != nil {
		return nil, b.err
	}
	if err := b.g.Validate(); err != nil {
		return nil, err
	}
	return b.g, nil
}
