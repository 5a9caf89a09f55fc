package columns

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
	"github.com/specialistvlad/arcaneflow/internal/frame"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/registry"
	"github.com/specialistvlad/arcaneflow/internal/schema"
)

// RenameInput defines the arguments of a rename_columns block.
type RenameInput struct {
	Mapping map[string]string `flow:"mapping"`
}

// Rename renames columns according to a fixed mapping. Its signature takes
// the mapping's keys to its values.
type Rename struct {
	id      string
	mapping map[string]string
}

// NewRename returns a Rename step. The mapping must not be empty.
func NewRename(id string, mapping map[string]string) (*Rename, error) {
	if len(mapping) == 0 {
		return nil, errors.New("mapping must not be empty")
	}
	return &Rename{id: id, mapping: maps.Clone(mapping)}, nil
}

func buildRename(_ context.Context, _ *registry.Env, id string, input any) (pipeline.Step, error) {
	return NewRename(id, input.(*RenameInput).Mapping)
}

func (s *Rename) ID() string { return s.id }

func (s *Rename) Signature() schema.Signature {
	from := slices.Sorted(maps.Keys(s.mapping))
	to := make([]string, 0, len(from))
	for _, k := range from {
		to = append(to, s.mapping[k])
	}
	return schema.NewSignature(KindRename, schema.NewSet(from...), schema.NewSet(to...), map[string]any{"mapping": s.mapping})
}

func (s *Rename) Execute(ctx context.Context, ec *pipeline.ExecutionContext) (*pipeline.ExecutionContext, error) {
	f, err := frame.FromContext(ec, s.id)
	if err != nil {
		return nil, err
	}
	if err := f.Rename(s.mapping); err != nil {
		return nil, err
	}
	ec.Metadata.Set(MetaColumns, slices.Clone(f.Columns))
	ctxlog.FromContext(ctx).Debug("Renamed columns.", "step", s.id, "columns", f.Columns)
	return ec, nil
}
