package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/arcaneflow/internal/config"
	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/registry"
)

// Build constructs a pipeline from a config model.
func Build(ctx context.Context, model *config.Model, r *registry.Registry, conv config.Converter, env *registry.Env) (*pipeline.Pipeline, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting pipeline construction.")

	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline definition: %w", err)
	}

	var errs []error
	build := func(b *config.Block) pipeline.Step {
		if b == nil {
			return nil
		}
		step, err := r.BuildStep(ctx, conv, env, b)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		logger.Debug("Build: Step created.", "step", step.ID())
		return step
	}

	source := build(model.Source())
	steps := make([]pipeline.Step, 0, len(model.Steps))
	for _, b := range model.Steps {
		if step := build(b); step != nil {
			steps = append(steps, step)
		}
	}
	sink := build(model.Sink())
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	logger.Debug("Build: Step creation complete.", "step_count", len(steps))

	p, err := pipeline.Build(source, steps, sink)
	if err != nil {
		return nil, err
	}
	logger.Info("Build: Pipeline construction successful.", "steps", p.Len())
	return p, nil
}
