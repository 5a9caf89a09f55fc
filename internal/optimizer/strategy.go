package optimizer

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/arcaneflow/internal/graph"
)

// IDSet is a set of step ids.
type IDSet map[string]struct{}

// Add inserts ids into the set.
func (s IDSet) Add(ids ...string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Has reports membership.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Strategy analyzes a built graph and names the steps that can be dropped
// without changing the pipeline's schema trace. Strategies must treat the
// graph as read-only; the Optimizer runs them concurrently.
type Strategy interface {
	Name() string
	IdentifyRedundant(ctx context.Context, g *graph.Graph) (IDSet, error)
}

// RedundancyStrategy flags steps whose transition leaves the schema state
// unchanged.
type RedundancyStrategy struct{}

func (RedundancyStrategy) Name() string { return "redundancy" }

func (RedundancyStrategy) IdentifyRedundant(_ context.Context, g *graph.Graph) (IDSet, error) {
	out := IDSet{}
	for _, e := range g.Edges() {
		if e.IsSelfLoop() {
			out.Add(e.StepID)
		}
	}
	return out, nil
}

// CycleStrategy flags every step whose transition lies on a simple cycle:
// when the pipeline returns to a schema state it already held, the steps on
// that loop made no net change.
type CycleStrategy struct{}

func (CycleStrategy) Name() string { return "cycle" }

func (CycleStrategy) IdentifyRedundant(ctx context.Context, g *graph.Graph) (IDSet, error) {
	out := IDSet{}
	for _, cycle := range g.SimpleCycles() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, e := range g.CycleEdges(cycle) {
			out.Add(e.StepID)
		}
	}
	return out, nil
}

// DefaultStrategies returns the built-in strategies in their canonical order.
func DefaultStrategies() []Strategy {
	return []Strategy{RedundancyStrategy{}, CycleStrategy{}}
}

var builtins = map[string]func() Strategy{
	"redundancy": func() Strategy { return RedundancyStrategy{} },
	"cycle":      func() Strategy { return CycleStrategy{} },
}

// StrategiesByName resolves strategy names as used in pipeline files. An
// empty list resolves to DefaultStrategies.
func StrategiesByName(names ...string) ([]Strategy, error) {
	if len(names) == 0 {
		return DefaultStrategies(), nil
	}
	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		mk, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("unknown optimization strategy %q (known: %v)", name, slices.Sorted(maps.Keys(builtins)))
		}
		out = append(out, mk())
	}
	return out, nil
}
