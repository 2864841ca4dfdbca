// Package graph holds the explicit dependency graph of a deployment.
//
// Nodes are logical resources and an edge A -> B means "A must be created, and its outputs
// resolved, before B is declared". The graph is validated for unknown endpoints and cycles
// before any resource is handed to the provisioning engine, so an ordering mistake surfaces
// as a configuration error rather than as a half-applied stack.
package graph

import (
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/n8n-self-host/n8n-gcp/internal/errors"
)

// Kind classifies a node for rendering and auditing.
type Kind string

// Node kinds.
const (
	KindAPI        Kind = "api"
	KindIdentity   Kind = "identity"
	KindGrant      Kind = "grant"
	KindCredential Kind = "credential"
	KindDatabase   Kind = "database"
	KindSecret     Kind = "secret"
	KindVersion    Kind = "secret-version"
	KindLookup     Kind = "lookup"
	KindService    Kind = "service"
)

// Attribute keys carried by grant nodes.
const (
	AttrRole       = "role"
	AttrMemberKind = "memberKind"
	AttrMember     = "member"
	AttrScope      = "scope"
	AttrTarget     = "target"
)

// Node is a single declared resource (or provider read).
type Node struct {
	ID   string `json:"id" yaml:"id"`
	Kind Kind   `json:"kind" yaml:"kind"`
	Type string `json:"type" yaml:"type"`
	// Attrs carries audit metadata, e.g. role and member of a grant.
	Attrs map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// Edge orders From before To.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Graph is an insertion-ordered DAG of nodes and prerequisite edges.
type Graph struct {
	nodes map[string]*Node
	ids   []string
	edges []Edge

	// prerequisites maps a node to the nodes that must precede it
	prerequisites map[string][]string

	// dependents maps a node to the nodes that wait on it
	dependents map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:         make(map[string]*Node),
		prerequisites: make(map[string][]string),
		dependents:    make(map[string][]string),
	}
}

// AddNode registers a node. Node ids are unique.
func (g *Graph) AddNode(node Node) error {
	if node.ID == "" {
		return apperrors.ErrDependencyOrdering("graph node has empty ID", nil)
	}
	if _, exists := g.nodes[node.ID]; exists {
		return apperrors.ErrDependencyOrdering(fmt.Sprintf("duplicate graph node: %s", node.ID), nil)
	}

	n := node
	g.nodes[n.ID] = &n
	g.ids = append(g.ids, n.ID)
	return nil
}

// Require records that id must be declared after every prerequisite.
// Endpoints are checked by Validate, so nodes may be added in any order.
func (g *Graph) Require(id string, prerequisites ...string) {
	for _, p := range prerequisites {
		if slices.Contains(g.prerequisites[id], p) {
			continue
		}
		g.edges = append(g.edges, Edge{From: p, To: id})
		g.prerequisites[id] = append(g.prerequisites[id], p)
		g.dependents[p] = append(g.dependents[p], id)
	}
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.ids))
	for _, id := range g.ids {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodesOfKind returns the nodes of kind k in insertion order.
func (g *Graph) NodesOfKind(k Kind) []*Node {
	var out []*Node
	for _, id := range g.ids {
		if g.nodes[id].Kind == k {
			out = append(out, g.nodes[id])
		}
	}
	return out
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// Prerequisites returns the direct prerequisites of id.
func (g *Graph) Prerequisites(id string) []string {
	return slices.Clone(g.prerequisites[id])
}

// Dependents returns the nodes that directly wait on id.
func (g *Graph) Dependents(id string) []string {
	return slices.Clone(g.dependents[id])
}

// Validate checks that every edge joins known nodes and that the graph is acyclic.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if e.From == e.To {
			return apperrors.ErrDependencyOrdering(fmt.Sprintf("node %s depends on itself", e.From), nil)
		}
		if !g.Has(e.From) {
			return apperrors.ErrDependencyOrdering(
				fmt.Sprintf("node %s depends on unknown node %s", e.To, e.From), nil)
		}
		if !g.Has(e.To) {
			return apperrors.ErrDependencyOrdering(
				fmt.Sprintf("edge from %s targets unknown node %s", e.From, e.To), nil)
		}
	}

	if cycle := g.findCycle(); cycle != nil {
		return apperrors.ErrDependencyOrdering(
			fmt.Sprintf("circular dependency detected: %s", strings.Join(cycle, " -> ")), nil)
	}

	return nil
}

// findCycle runs a depth-first search over dependents and returns the first cycle found.
func (g *Graph) findCycle() []string {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(g.ids))
	var path []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		state[id] = inProgress
		path = append(path, id)

		for _, next := range g.dependents[id] {
			switch state[next] {
			case inProgress:
				start := slices.Index(path, next)
				cycle = append(slices.Clone(path[start:]), next)
				return true
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}

		path = path[:len(path)-1]
		state[id] = done
		return false
	}

	for _, id := range g.ids {
		if state[id] == unvisited && visit(id) {
			return cycle
		}
	}
	return nil
}

// Levels groups nodes by depth using Kahn's algorithm. Nodes in the same level have no
// ordering constraint between them; within a level, insertion order is kept.
func (g *Graph) Levels() ([][]string, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	inDegree := make(map[string]int, len(g.ids))
	for _, id := range g.ids {
		inDegree[id] = len(g.prerequisites[id])
	}

	var current []string
	for _, id := range g.ids {
		if inDegree[id] == 0 {
			current = append(current, id)
		}
	}

	var levels [][]string
	processed := 0
	for len(current) > 0 {
		levels = append(levels, current)
		processed += len(current)

		ready := make(map[string]bool)
		for _, id := range current {
			for _, dep := range g.dependents[id] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					ready[dep] = true
				}
			}
		}

		var next []string
		for _, id := range g.ids {
			if ready[id] {
				next = append(next, id)
			}
		}
		current = next
	}

	if processed != len(g.ids) {
		return nil, apperrors.ErrDependencyOrdering("graph contains a cycle", nil)
	}

	return levels, nil
}

// Order returns a deterministic topological order of every node.
func (g *Graph) Order() ([]string, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}

	order := make([]string, 0, len(g.ids))
	for _, level := range levels {
		order = append(order, level...)
	}
	return order, nil
}
