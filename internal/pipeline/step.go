package pipeline

import (
	"context"

	"github.com/specialistvlad/arcaneflow/internal/schema"
)

// Step is one unit of pipeline work: a source, a transformation, or a sink.
// ID must be stable and unique within a pipeline.
type Step interface {
	ID() string
	Execute(ctx context.Context, ec *ExecutionContext) (*ExecutionContext, error)
}

// Signer is the optional capability of a step that declares its effect on
// the column set. Steps without it are invisible to the optimizer.
type Signer interface {
	Signature() schema.Signature
}

// TryGetSignature returns the step's signature when it declares one.
func TryGetSignature(s Step) (schema.Signature, bool) {
	signer, ok := s.(Signer)
	if !ok {
		return schema.Signature{}, false
	}
	return signer.Signature(), true
}

// StepFunc adapts a plain function into a Step without a signature.
type StepFunc struct {
	StepID string
	Fn     func(ctx context.Context, ec *ExecutionContext) (*ExecutionContext, error)
}

func (s StepFunc) ID() string { return s.StepID }

func (s StepFunc) Execute(ctx context.Context, ec *ExecutionContext) (*ExecutionContext, error) {
	return s.Fn(ctx, ec)
}

// SignedStepFunc is a StepFunc that also declares a signature.
type SignedStepFunc struct {
	StepFunc
	Sig schema.Signature
}

func (s SignedStepFunc) Signature() schema.Signature { return s.Sig }
