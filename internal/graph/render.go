package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/n8n-self-host/n8n-gcp/internal/constants"
)

// Document is the serialisable form of a graph.
type Document struct {
	Nodes  []*Node    `json:"nodes" yaml:"nodes"`
	Edges  []Edge     `json:"edges" yaml:"edges"`
	Levels [][]string `json:"levels" yaml:"levels"`
}

// Export builds a Document. It fails if the graph is invalid.
func (g *Graph) Export() (*Document, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}

	return &Document{
		Nodes:  g.Nodes(),
		Edges:  g.Edges(),
		Levels: levels,
	}, nil
}

// Render writes the graph to w in the requested format.
func Render(w io.Writer, g *Graph, format constants.OutputFormat) error {
	doc, err := g.Export()
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case constants.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if encErr := enc.Encode(doc); encErr != nil {
			return fmt.Errorf("encode graph yaml: %w", encErr)
		}
		return enc.Close()
	case constants.FormatDOT:
		return renderDOT(w, doc)
	case constants.FormatText, "":
		return renderText(w, g, doc)
	default:
		return fmt.Errorf("unsupported graph format: %s", format)
	}
}

func renderText(w io.Writer, g *Graph, doc *Document) error {
	var b strings.Builder
	for i, level := range doc.Levels {
		fmt.Fprintf(&b, "level %d\n", i)
		for _, id := range level {
			n, _ := g.Node(id)
			fmt.Fprintf(&b, "  %-30s %-15s", id, n.Kind)
			if prereqs := g.Prerequisites(id); len(prereqs) > 0 {
				fmt.Fprintf(&b, " after %s", strings.Join(prereqs, ", "))
			}
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func renderDOT(w io.Writer, doc *Document) error {
	var b strings.Builder
	b.WriteString("digraph deployment {\n  rankdir=LR;\n")
	for _, n := range doc.Nodes {
		fmt.Fprintf(&b, "  %q [label=%q];\n", n.ID, n.ID+"\n"+string(n.Kind))
	}
	for _, e := range doc.Edges {
		fmt.Fprintf(&b, "  %q -> %q;\n", e.From, e.To)
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}
