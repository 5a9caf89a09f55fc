package optimizer

import (
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/arcaneflow/internal/graph"
)

// Report is the full outcome of one analysis pass.
type Report struct {
	Graph *graph.Graph
	// Findings holds each strategy's raw output, keyed by strategy name.
	Findings map[string]IDSet
	// Redundant is the union of all findings minus source and sink.
	Redundant IDSet
	// Kept lists source or sink ids a strategy flagged; they are never removed.
	Kept IDSet
}

// Render writes a human-readable description of the graph and findings.
func (r *Report) Render(w io.Writer) error {
	var b strings.Builder
	g := r.Graph

	fmt.Fprintf(&b, "states (%d):\n", g.NodeCount())
	for _, n := range g.Nodes() {
		fmt.Fprintf(&b, "  n%d %s\n", n.Index(), n.Set())
	}

	fmt.Fprintf(&b, "transitions (%d):\n", g.EdgeCount())
	for _, e := range g.Edges() {
		marker := ""
		switch {
		case r.Redundant.Has(e.StepID):
			marker = "  [redundant]"
		case r.Kept.Has(e.StepID):
			marker = "  [structural]"
		}
		fmt.Fprintf(&b, "  n%d -> n%d  %s (%s)%s\n", e.From.Index(), e.To.Index(), e.StepID, e.Signature.Kind(), marker)
	}

	cycles := g.SimpleCycles()
	fmt.Fprintf(&b, "cycles (%d):\n", len(cycles))
	for _, c := range cycles {
		parts := make([]string, 0, len(c)+1)
		for _, n := range c {
			parts = append(parts, fmt.Sprintf("n%d", n.Index()))
		}
		parts = append(parts, fmt.Sprintf("n%d", c[0].Index()))
		fmt.Fprintf(&b, "  %s\n", strings.Join(parts, " -> "))
	}

	fmt.Fprintf(&b, "redundant steps (%d):\n", len(r.Redundant))
	for _, id := range r.Redundant.Sorted() {
		fmt.Fprintf(&b, "  %s\n", id)
	}
	fmt.Fprintf(&b, "fingerprint: %016x\n", g.Fingerprint())

	_, err := io.WriteString(w, b.String())
	return err
}
