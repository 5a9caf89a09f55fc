// Package validate provides the validate_schema step, which checks the frame
// against declared column types. It declares no signature, so the optimizer
// never removes it.
package validate

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/specialistvlad/arcaneflow/internal/config"
	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
	"github.com/specialistvlad/arcaneflow/internal/frame"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/registry"
)

var knownTypes = []string{
	frame.TypeBoolean,
	frame.TypeDatetime,
	frame.TypeFloat,
	frame.TypeInteger,
	frame.TypeString,
	frame.TypeUnknown,
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a validate_schema block.
type Input struct {
	Columns map[string]string `flow:"columns"`
	Strict  bool              `flow:"strict,optional"`
}

// Step validates the frame passing through it.
type Step struct {
	id     string
	schema frame.Schema
	strict bool
}

// New returns a validation step. Every type must be one of the frame type
// names.
func New(id string, columns map[string]string, strict bool) (*Step, error) {
	if len(columns) == 0 {
		return nil, errors.New("columns must not be empty")
	}
	var bad []string
	for _, col := range slices.Sorted(maps.Keys(columns)) {
		if !slices.Contains(knownTypes, columns[col]) {
			bad = append(bad, fmt.Sprintf("%s=%q", col, columns[col]))
		}
	}
	if len(bad) > 0 {
		return nil, fmt.Errorf("unknown column types %s (known: %s)", strings.Join(bad, ", "), strings.Join(knownTypes, ", "))
	}
	return &Step{id: id, schema: frame.Schema{Columns: maps.Clone(columns)}, strict: strict}, nil
}

func (s *Step) ID() string { return s.id }

func (s *Step) Execute(ctx context.Context, ec *pipeline.ExecutionContext) (*pipeline.ExecutionContext, error) {
	f, err := frame.FromContext(ec, s.id)
	if err != nil {
		return nil, err
	}

	err = s.schema.Validate(f)
	if err == nil {
		return ec, nil
	}
	var schemaErr *pipeline.SchemaValidationError
	if !errors.As(err, &schemaErr) {
		return nil, err
	}
	if !s.strict {
		schemaErr.Extra = nil
		if len(schemaErr.Missing) == 0 && len(schemaErr.Mismatched) == 0 {
			ctxlog.FromContext(ctx).Debug("Schema valid, extra columns ignored.", "step", s.id)
			return ec, nil
		}
	}
	schemaErr.StepID = s.id
	return nil, schemaErr
}

// Register registers the step with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep(config.RoleStep, "validate_schema", &registry.RegisteredStep{
		NewInput: func() any { return &Input{} },
		Build: func(_ context.Context, _ *registry.Env, id string, input any) (pipeline.Step, error) {
			in := input.(*Input)
			return New(id, in.Columns, in.Strict)
		},
	})
}
