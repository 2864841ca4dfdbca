package graph

import (
	"fmt"
	"strings"

	apperrors "github.com/n8n-self-host/n8n-gcp/internal/errors"
)

// Ledger tracks which nodes of a validated graph have been declared to the engine.
// Declaring a node whose prerequisites are not all declared is refused.
type Ledger struct {
	graph    *Graph
	declared map[string]bool
	sequence []string
}

// NewLedger creates a ledger over g. The graph must already be valid.
func NewLedger(g *Graph) *Ledger {
	return &Ledger{
		graph:    g,
		declared: make(map[string]bool),
	}
}

// Declare marks id as declared.
func (l *Ledger) Declare(id string) error {
	if !l.graph.Has(id) {
		return apperrors.ErrDependencyOrdering(fmt.Sprintf("resource %s is not part of the plan", id), nil)
	}
	if l.declared[id] {
		return apperrors.ErrDependencyOrdering(fmt.Sprintf("resource %s declared twice", id), nil)
	}

	var missing []string
	for _, p := range l.graph.Prerequisites(id) {
		if !l.declared[p] {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return apperrors.ErrDependencyOrdering(
			fmt.Sprintf("resource %s declared before %s", id, strings.Join(missing, ", ")), nil)
	}

	l.declared[id] = true
	l.sequence = append(l.sequence, id)
	return nil
}

// Declared returns the declared ids in declaration order.
func (l *Ledger) Declared() []string {
	out := make([]string, len(l.sequence))
	copy(out, l.sequence)
	return out
}

// Pending returns the planned ids not yet declared, in insertion order.
func (l *Ledger) Pending() []string {
	var out []string
	for _, n := range l.graph.Nodes() {
		if !l.declared[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}
