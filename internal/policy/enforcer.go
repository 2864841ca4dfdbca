// Package policy audits the role bindings of a deployment plan against a fixed
// least-privilege Casbin policy before anything is declared.
package policy

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"

	apperrors "github.com/n8n-self-host/n8n-gcp/internal/errors"
	"github.com/n8n-self-host/n8n-gcp/internal/graph"
)

const (
	modelFile  = "casbin/model.conf"
	policyFile = "casbin/policy.csv"
)

// Member kinds as they appear in grant nodes.
const (
	MemberServiceAccount = "serviceAccount"
	MemberAllUsers       = "allUsers"
)

// Scopes a grant may target.
const (
	ScopeProject = "project"
	ScopeSecret  = "secret"
	ScopeService = "service"
)

// scopeKinds maps a resource scope to the node kind its target must have.
var scopeKinds = map[string]graph.Kind{
	ScopeSecret:  graph.KindSecret,
	ScopeService: graph.KindService,
}

// Enforcer wraps the Casbin enforcer loaded with the embedded model and policy.
type Enforcer struct {
	enforcer *casbin.Enforcer
	logger   *slog.Logger
}

// NewEnforcer creates an enforcer from the embedded model and policy files.
func NewEnforcer(logger *slog.Logger) (*Enforcer, error) {
	modelText, err := CasbinFS.ReadFile(modelFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read casbin model: %w", err)
	}
	policyText, err := CasbinFS.ReadFile(policyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read casbin policy: %w", err)
	}

	m, err := model.NewModelFromString(string(modelText))
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, stringadapter.NewAdapter(string(policyText)))
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	logger.Debug("casbin enforcer initialized", "model", modelFile, "policy", policyFile)

	return &Enforcer{
		enforcer: enforcer,
		logger:   logger,
	}, nil
}

// Enforce reports whether a member kind may hold role on a scope.
func (e *Enforcer) Enforce(memberKind, scope, role string) (bool, error) {
	allowed, err := e.enforcer.Enforce(memberKind, scope, role)
	if err != nil {
		e.logger.Error("casbin enforcement error", "member", memberKind, "scope", scope, "role", role, "error", err)
		return false, fmt.Errorf("casbin enforcement failed: %w", err)
	}

	e.logger.Debug("casbin enforcement result", "member", memberKind, "scope", scope, "role", role, "allowed", allowed)
	return allowed, nil
}

// CheckGrants audits every grant node of g. All violations are reported in one error.
func (e *Enforcer) CheckGrants(g *graph.Graph) error {
	var violations []string

	for _, n := range g.NodesOfKind(graph.KindGrant) {
		problem, err := e.checkGrant(g, n)
		if err != nil {
			return err
		}
		if problem != "" {
			violations = append(violations, problem)
		}
	}

	if len(violations) > 0 {
		return apperrors.ErrPolicyViolation(
			"role grants outside the least-privilege policy",
			errors.New(strings.Join(violations, "; ")),
		)
	}
	return nil
}

func (e *Enforcer) checkGrant(g *graph.Graph, n *graph.Node) (string, error) {
	role := n.Attrs[graph.AttrRole]
	memberKind := n.Attrs[graph.AttrMemberKind]
	scope := n.Attrs[graph.AttrScope]
	if role == "" || memberKind == "" || scope == "" {
		return fmt.Sprintf("%s: grant is missing role, member or scope", n.ID), nil
	}

	allowed, err := e.Enforce(memberKind, scope, role)
	if err != nil {
		return "", err
	}
	if !allowed {
		return fmt.Sprintf("%s: %s may not hold %s on a %s", n.ID, memberKind, role, scope), nil
	}

	if memberKind == MemberServiceAccount {
		member := n.Attrs[graph.AttrMember]
		if node, ok := g.Node(member); !ok || node.Kind != graph.KindIdentity {
			return fmt.Sprintf("%s: member %q is not a planned service account", n.ID, member), nil
		}
	}

	if kind, ok := scopeKinds[scope]; ok {
		target := n.Attrs[graph.AttrTarget]
		if node, found := g.Node(target); !found || node.Kind != kind {
			return fmt.Sprintf("%s: target %q is not a planned %s", n.ID, target, scope), nil
		}
	}

	return "", nil
}
