package columns

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/arcaneflow/internal/frame"
	"github.com/specialistvlad/arcaneflow/internal/hcl"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/registry"
	"github.com/specialistvlad/arcaneflow/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// AddInput defines the arguments of an add_column block. Value may be any
// expression; it is converted to a plain Go value once at build time.
type AddInput struct {
	Column string    `flow:"column"`
	Value  cty.Value `flow:"value,optional"`
}

// Add appends a constant-valued column. Its signature is {} -> {column}.
type Add struct {
	id     string
	column string
	value  any
}

// NewAdd returns an Add step.
func NewAdd(id, column string, value any) (*Add, error) {
	if strings.TrimSpace(column) == "" {
		return nil, errors.New("column must not be empty")
	}
	return &Add{id: id, column: column, value: value}, nil
}

func buildAdd(_ context.Context, _ *registry.Env, id string, input any) (pipeline.Step, error) {
	in := input.(*AddInput)
	value, err := hcl.ToGoValue(in.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	return NewAdd(id, in.Column, value)
}

func (s *Add) ID() string { return s.id }

func (s *Add) Signature() schema.Signature {
	return schema.NewSignature(KindAdd, schema.NewSet(), schema.NewSet(s.column), map[string]any{"value": s.value})
}

func (s *Add) Execute(_ context.Context, ec *pipeline.ExecutionContext) (*pipeline.ExecutionContext, error) {
	f, err := frame.FromContext(ec, s.id)
	if err != nil {
		return nil, err
	}
	if err := f.AddColumn(s.column, s.value); err != nil {
		var schemaErr *pipeline.SchemaValidationError
		if errors.As(err, &schemaErr) {
			schemaErr.StepID = s.id
		}
		return nil, err
	}
	ec.Metadata.Set(MetaColumns, slices.Clone(f.Columns))
	return ec, nil
}
