package optimizer

import (
	"context"
	"fmt"

	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
	"github.com/specialistvlad/arcaneflow/internal/graph"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"golang.org/x/sync/errgroup"
)

// Optimizer builds a pipeline's transformation graph, runs its strategies
// over it, and prunes the steps they agree can go.
type Optimizer struct {
	strategies []Strategy
}

// New creates an Optimizer. With no strategies it uses DefaultStrategies.
func New(strategies ...Strategy) *Optimizer {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Optimizer{strategies: strategies}
}

// Strategies returns the configured strategies.
func (o *Optimizer) Strategies() []Strategy {
	out := make([]Strategy, len(o.strategies))
	copy(out, o.strategies)
	return out
}

// Analyze builds a fresh graph for p and runs every strategy against it.
// Strategies run concurrently; their findings are unioned.
func (o *Optimizer) Analyze(ctx context.Context, p *pipeline.Pipeline) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	g := graph.Build(ctx, p)

	findings := make([]IDSet, len(o.strategies))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, s := range o.strategies {
		eg.Go(func() error {
			ids, err := s.IdentifyRedundant(egCtx, g)
			if err != nil {
				return fmt.Errorf("strategy %s: %w", s.Name(), err)
			}
			findings[i] = ids
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Graph:     g,
		Findings:  make(map[string]IDSet, len(o.strategies)),
		Redundant: IDSet{},
		Kept:      IDSet{},
	}
	for i, s := range o.strategies {
		found := findings[i]
		if found == nil {
			found = IDSet{}
		}
		report.Findings[s.Name()] = found
		for id := range found {
			if p.IsStructural(id) {
				report.Kept.Add(id)
				continue
			}
			report.Redundant.Add(id)
		}
		logger.Debug("Strategy finished.", "strategy", s.Name(), "flagged", len(found))
	}
	return report, nil
}

// RedundantStepIDs returns the ids of the steps Optimize would remove.
func (o *Optimizer) RedundantStepIDs(ctx context.Context, p *pipeline.Pipeline) (IDSet, error) {
	report, err := o.Analyze(ctx, p)
	if err != nil {
		return nil, err
	}
	return report.Redundant, nil
}

// Optimize returns p itself when nothing is redundant, otherwise a new
// pipeline without the redundant steps. Source and sink are always kept.
func (o *Optimizer) Optimize(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Pipeline, error) {
	logger := ctxlog.FromContext(ctx)

	report, err := o.Analyze(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(report.Redundant) == 0 {
		logger.Debug("No redundant steps found, pipeline unchanged.")
		return p, nil
	}

	pruned := p.Without(report.Redundant)
	logger.Info("✂️ Pruned redundant steps",
		"removed", report.Redundant.Sorted(),
		"before", p.Len(),
		"after", pruned.Len(),
	)
	return pruned, nil
}

// Optimize runs the given strategies over p. With no strategies nothing is
// flagged and p is returned as is.
func Optimize(ctx context.Context, p *pipeline.Pipeline, strategies []Strategy) (*pipeline.Pipeline, error) {
	if len(strategies) == 0 {
		return p, nil
	}
	return New(strategies...).Optimize(ctx, p)
}

// RedundantStepIDs inspects p without building a new pipeline. With no
// strategies it uses DefaultStrategies.
func RedundantStepIDs(ctx context.Context, p *pipeline.Pipeline, strategies ...Strategy) (IDSet, error) {
	return New(strategies...).RedundantStepIDs(ctx, p)
}
