package pipeline

// Builder assembles a pipeline step by step.
type Builder struct {
	source Step
	steps  []Step
	sink   Step
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) SetSource(s Step) *Builder {
	b.source = s
	return b
}

func (b *Builder) Add(steps ...Step) *Builder {
	b.steps = append(b.steps, steps...)
	return b
}

func (b *Builder) SetSink(s Step) *Builder {
	b.sink = s
	return b
}

// Build validates the collected steps; see Build.
func (b *Builder) Build() (*Pipeline, error) {
	return Build(b.source, b.steps, b.sink)
}
