package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/n8n-self-host/n8n-gcp/internal/errors"
)

func newTestGraph(t *testing.T, ids ...string) *Graph {
	t.Helper()

	g := New()
	for _, id := range ids {
		require.NoError(t, g.AddNode(Node{ID: id, Kind: KindAPI}))
	}
	return g
}

func TestGraph_AddNode(t *testing.T) {
	g := New()

	require.NoError(t, g.AddNode(Node{ID: "a", Kind: KindAPI}))

	err := g.AddNode(Node{ID: "a", Kind: KindAPI})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrOrdering)
	assert.Contains(t, err.Error(), "duplicate graph node: a")

	err = g.AddNode(Node{Kind: KindAPI})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty ID")
}

func TestGraph_RequireIgnoresDuplicateEdges(t *testing.T) {
	g := newTestGraph(t, "a", "b")

	g.Require("b", "a")
	g.Require("b", "a")

	assert.Len(t, g.Edges(), 1)
	assert.Equal(t, []string{"a"}, g.Prerequisites("b"))
	assert.Equal(t, []string{"b"}, g.Dependents("a"))
}

func TestGraph_Validate(t *testing.T) {
	tests := []struct {
		name    string
		build   func(*Graph)
		errMsg  string
		wantErr bool
	}{
		{
			name:  "linear chain",
			build: func(g *Graph) { g.Require("b", "a"); g.Require("c", "b") },
		},
		{
			name:    "unknown prerequisite",
			build:   func(g *Graph) { g.Require("a", "ghost") },
			wantErr: true,
			errMsg:  "node a depends on unknown node ghost",
		},
		{
			name:    "unknown dependent",
			build:   func(g *Graph) { g.Require("ghost", "a") },
			wantErr: true,
			errMsg:  "targets unknown node ghost",
		},
		{
			name:    "self loop",
			build:   func(g *Graph) { g.Require("a", "a") },
			wantErr: true,
			errMsg:  "node a depends on itself",
		},
		{
			name: "three node cycle",
			build: func(g *Graph) {
				g.Require("b", "a")
				g.Require("c", "b")
				g.Require("a", "c")
			},
			wantErr: true,
			errMsg:  "circular dependency detected: a -> b -> c -> a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph(t, "a", "b", "c")
			tt.build(g)

			err := g.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrOrdering)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestGraph_Levels(t *testing.T) {
	g := newTestGraph(t, "api", "identity", "db", "grant", "service")
	g.Require("identity", "api")
	g.Require("db", "api")
	g.Require("grant", "identity")
	g.Require("service", "grant", "db")

	levels, err := g.Levels()

	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"api"},
		{"identity", "db"},
		{"grant"},
		{"service"},
	}, levels)
}

func TestGraph_OrderRespectsEveryEdge(t *testing.T) {
	g := newTestGraph(t, "e", "d", "c", "b", "a")
	g.Require("d", "e")
	g.Require("b", "c", "d")
	g.Require("a", "b")

	order, err := g.Order()
	require.NoError(t, err)
	require.Len(t, order, 5)

	position := make(map[string]int)
	for i, id := range order {
		position[id] = i
	}
	for _, e := range g.Edges() {
		assert.Less(t, position[e.From], position[e.To], "%s must precede %s", e.From, e.To)
	}
}

func TestGraph_OrderFailsOnCycle(t *testing.T) {
	g := newTestGraph(t, "a", "b")
	g.Require("a", "b")
	g.Require("b", "a")

	_, err := g.Order()

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrOrdering)
}

func TestGraph_NodesOfKind(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(Node{ID: "api", Kind: KindAPI}))
	require.NoError(t, g.AddNode(Node{ID: "grant-1", Kind: KindGrant}))
	require.NoError(t, g.AddNode(Node{ID: "grant-2", Kind: KindGrant}))

	grants := g.NodesOfKind(KindGrant)

	require.Len(t, grants, 2)
	assert.Equal(t, "grant-1", grants[0].ID)
	assert.Equal(t, "grant-2", grants[1].ID)
	assert.Empty(t, g.NodesOfKind(KindService))
}
