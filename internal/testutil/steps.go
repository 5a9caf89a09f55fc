// Package testutil holds shared fixtures for package tests: stub steps, a
// resource that records its lifecycle, and a thread-safe log buffer.
package testutil

import (
	"context"

	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/schema"
)

// StubStep is a configurable pipeline step. Calls counts Execute invocations.
type StubStep struct {
	StepID string
	Fn     func(ctx context.Context, ec *pipeline.ExecutionContext) (*pipeline.ExecutionContext, error)
	Calls  int
}

func (s *StubStep) ID() string { return s.StepID }

func (s *StubStep) Execute(ctx context.Context, ec *pipeline.ExecutionContext) (*pipeline.ExecutionContext, error) {
	s.Calls++
	if s.Fn == nil {
		return ec, nil
	}
	return s.Fn(ctx, ec)
}

// SignedStub is a StubStep that declares a signature.
type SignedStub struct {
	StubStep
	Sig schema.Signature
}

func (s *SignedStub) Signature() schema.Signature { return s.Sig }

// Unsigned returns a pass-through step without a signature.
func Unsigned(id string) *StubStep {
	return &StubStep{StepID: id}
}

// Signed returns a pass-through step declaring in -> out.
func Signed(id string, in, out []string) *SignedStub {
	return &SignedStub{
		StubStep: StubStep{StepID: id},
		Sig:      schema.NewSignature("stub", schema.NewSet(in...), schema.NewSet(out...), nil),
	}
}

// Failing returns an unsigned step that always fails with err.
func Failing(id string, err error) *StubStep {
	return &StubStep{StepID: id, Fn: func(context.Context, *pipeline.ExecutionContext) (*pipeline.ExecutionContext, error) {
		return nil, err
	}}
}

// MustBuild assembles a pipeline and panics on configuration errors.
func MustBuild(source pipeline.Step, sink pipeline.Step, steps ...pipeline.Step) *pipeline.Pipeline {
	p, err := pipeline.Build(source, steps, sink)
	if err != nil {
		panic(err)
	}
	return p
}
