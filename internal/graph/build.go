package graph

import (
	"context"

	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/schema"
)

// Build walks source, steps, and sink in order and records the schema
// transition of every step that declares a signature. Steps without a
// signature are skipped: they add no edge and leave the state unchanged.
func Build(ctx context.Context, p *pipeline.Pipeline) *Graph {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting transformation graph construction.")

	g := New()
	current := g.Initial()
	skipped := 0

	for _, step := range p.All() {
		sig, ok := pipeline.TryGetSignature(step)
		if !ok {
			skipped++
			logger.Debug("Build: Step has no signature, skipping.", "step", step.ID())
			continue
		}

		next := g.AddState(schema.NextState(current.Set(), sig))
		// Both nodes come from g, so AddEdge cannot fail here.
		_, _ = g.AddEdge(current, next, step.ID(), sig, p.IsStructural(step.ID()))
		logger.Debug("Build: Recorded transition.",
			"step", step.ID(),
			"kind", sig.Kind(),
			"from", current.Set().String(),
			"to", next.Set().String(),
		)
		current = next
	}

	logger.Debug("Build: Graph construction complete.",
		"states", g.NodeCount(),
		"transitions", g.EdgeCount(),
		"unsigned_steps", skipped,
	)
	return g
}
