package optimizer

import (
	"context"

	"github.com/specialistvlad/arcaneflow/internal/pipeline"
)

// Builder assembles a pipeline like pipeline.Builder and optimizes it on
// Build. Optimization is enabled by default.
type Builder struct {
	inner     *pipeline.Builder
	optimizer *Optimizer
	enabled   bool
}

// NewBuilder creates an optimizing builder using opt, or the default
// optimizer when opt is nil.
func NewBuilder(opt *Optimizer) *Builder {
	if opt == nil {
		opt = New()
	}
	return &Builder{inner: pipeline.NewBuilder(), optimizer: opt, enabled: true}
}

func (b *Builder) SetSource(s pipeline.Step) *Builder {
	b.inner.SetSource(s)
	return b
}

func (b *Builder) Add(steps ...pipeline.Step) *Builder {
	b.inner.Add(steps...)
	return b
}

func (b *Builder) SetSink(s pipeline.Step) *Builder {
	b.inner.SetSink(s)
	return b
}

func (b *Builder) EnableOptimization() *Builder {
	b.enabled = true
	return b
}

func (b *Builder) DisableOptimization() *Builder {
	b.enabled = false
	return b
}

// Build validates the pipeline and, when enabled, optimizes it.
func (b *Builder) Build(ctx context.Context) (*pipeline.Pipeline, error) {
	p, err := b.inner.Build()
	if err != nil {
		return nil, err
	}
	if !b.enabled {
		return p, nil
	}
	return b.optimizer.Optimize(ctx, p)
}
