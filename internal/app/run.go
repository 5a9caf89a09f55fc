package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/arcaneflow/internal/builder"
	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
	"github.com/specialistvlad/arcaneflow/internal/executor"
	"github.com/specialistvlad/arcaneflow/internal/optimizer"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/session"
)

// Run builds, optimizes and executes the loaded pipeline. With Explain set
// it prints the optimizer's report and returns without executing.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthCheckServer(ctx, a.config.HealthcheckPort)
		defer a.closeHealthCheckServer(ctx)
	}

	p, err := builder.Build(ctx, a.model, a.registry, a.converter, a.env())
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	a.logger.Debug("Pipeline built.", "steps", p.StepIDs())

	var names []string
	if s := a.model.Pipeline; s != nil {
		names = s.Strategies
	}
	strategies, err := optimizer.StrategiesByName(names...)
	if err != nil {
		return err
	}
	opt := optimizer.New(strategies...)

	if a.config.Explain {
		report, err := opt.Analyze(ctx, p)
		if err != nil {
			return fmt.Errorf("failed to analyze pipeline: %w", err)
		}
		return report.Render(a.outW)
	}

	if a.optimizationEnabled() {
		before := p.Len()
		if p, err = opt.Optimize(ctx, p); err != nil {
			return fmt.Errorf("failed to optimize pipeline: %w", err)
		}
		a.metrics.StepsPruned(before - p.Len())
	} else {
		a.logger.Debug("Optimization disabled.")
	}

	var res pipeline.Resource
	if db := a.model.Database; db != nil {
		sess, err := session.Open(ctx, db.Driver, db.DSN)
		if err != nil {
			return fmt.Errorf("failed to open database session: %w", err)
		}
		defer sess.Close()
		res = sess
	}

	ec, err := executor.New(executor.WithObserver(a.metrics)).Execute(ctx, p, res)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("📊 Pipeline stats", executor.StatsFrom(ec).LogAttrs()...)

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) optimizationEnabled() bool {
	if !a.config.Optimize {
		return false
	}
	if s := a.model.Pipeline; s != nil && s.Optimize != nil {
		return *s.Optimize
	}
	return true
}
