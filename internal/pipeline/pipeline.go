// Package pipeline defines the linear pipeline model: steps, the execution
// context threaded through them, the transactional resource contract, and
// the error kinds surfaced to callers.
package pipeline

import (
	"fmt"
	"slices"
)

// Pipeline is an immutable source -> steps -> sink sequence. Sink may be nil.
// Optimization produces a new Pipeline instead of modifying one.
type Pipeline struct {
	source Step
	steps  []Step
	sink   Step
}

// Build validates and assembles a pipeline. It fails with a ConfigurationError
// when the source is missing or when two steps share an id.
func Build(source Step, steps []Step, sink Step) (*Pipeline, error) {
	if source == nil {
		return nil, &ConfigurationError{Reason: "source is not defined"}
	}
	seen := make(map[string]struct{}, len(steps)+2)
	check := func(s Step) error {
		if s == nil {
			return &ConfigurationError{Reason: "nil step"}
		}
		id := s.ID()
		if id == "" {
			return &ConfigurationError{Reason: fmt.Sprintf("step of type %T has an empty id", s)}
		}
		if _, dup := seen[id]; dup {
			return &ConfigurationError{Reason: fmt.Sprintf("duplicate step id %q", id)}
		}
		seen[id] = struct{}{}
		return nil
	}
	if err := check(source); err != nil {
		return nil, err
	}
	for _, s := range steps {
		if err := check(s); err != nil {
			return nil, err
		}
	}
	if sink != nil {
		if err := check(sink); err != nil {
			return nil, err
		}
	}
	return &Pipeline{source: source, steps: slices.Clone(steps), sink: sink}, nil
}

func (p *Pipeline) Source() Step { return p.source }
func (p *Pipeline) Sink() Step   { return p.sink }

// Steps returns a copy of the transformation steps in order.
func (p *Pipeline) Steps() []Step {
	return slices.Clone(p.steps)
}

// All returns source, steps, and sink (when present) in execution order.
func (p *Pipeline) All() []Step {
	all := make([]Step, 0, len(p.steps)+2)
	all = append(all, p.source)
	all = append(all, p.steps...)
	if p.sink != nil {
		all = append(all, p.sink)
	}
	return all
}

// StepIDs returns the ids of the transformation steps in order.
func (p *Pipeline) StepIDs() []string {
	ids := make([]string, len(p.steps))
	for i, s := range p.steps {
		ids[i] = s.ID()
	}
	return ids
}

// IsStructural reports whether id names the source or the sink.
func (p *Pipeline) IsStructural(id string) bool {
	if p.source.ID() == id {
		return true
	}
	return p.sink != nil && p.sink.ID() == id
}

// Without returns a new pipeline whose steps exclude every id in drop,
// keeping the relative order of the rest. Source and sink are kept.
func (p *Pipeline) Without(drop map[string]struct{}) *Pipeline {
	kept := make([]Step, 0, len(p.steps))
	for _, s := range p.steps {
		if _, ok := drop[s.ID()]; ok {
			continue
		}
		kept = append(kept, s)
	}
	return &Pipeline{source: p.source, steps: kept, sink: p.sink}
}

// Len returns the number of transformation steps.
func (p *Pipeline) Len() int {
	return len(p.steps)
}
