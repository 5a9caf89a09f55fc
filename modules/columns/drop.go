package columns

import (
	"context"
	"errors"
	"slices"

	"github.com/specialistvlad/arcaneflow/internal/frame"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/registry"
	"github.com/specialistvlad/arcaneflow/internal/schema"
)

// DropInput defines the arguments of a drop_columns block.
type DropInput struct {
	Columns []string `flow:"columns"`
}

// Drop removes columns. Its signature is columns -> {}.
type Drop struct {
	id      string
	columns []string
}

// NewDrop returns a Drop step for a non-empty column list.
func NewDrop(id string, columns []string) (*Drop, error) {
	if len(columns) == 0 {
		return nil, errors.New("columns must not be empty")
	}
	return &Drop{id: id, columns: slices.Clone(columns)}, nil
}

func buildDrop(_ context.Context, _ *registry.Env, id string, input any) (pipeline.Step, error) {
	return NewDrop(id, input.(*DropInput).Columns)
}

func (s *Drop) ID() string { return s.id }

func (s *Drop) Signature() schema.Signature {
	return schema.NewSignature(KindDrop, schema.NewSet(s.columns...), schema.NewSet(), nil)
}

func (s *Drop) Execute(_ context.Context, ec *pipeline.ExecutionContext) (*pipeline.ExecutionContext, error) {
	f, err := frame.FromContext(ec, s.id)
	if err != nil {
		return nil, err
	}
	if err := f.Drop(s.columns...); err != nil {
		var schemaErr *pipeline.SchemaValidationError
		if errors.As(err, &schemaErr) {
			schemaErr.StepID = s.id
		}
		return nil, err
	}
	ec.Metadata.Set(MetaColumns, slices.Clone(f.Columns))
	return ec, nil
}
