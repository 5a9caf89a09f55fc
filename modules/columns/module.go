// Package columns provides the column-shaping steps: rename_columns,
// drop_columns and add_column. Each declares a signature so the optimizer
// can reason about it.
package columns

import (
	"github.com/specialistvlad/arcaneflow/internal/config"
	"github.com/specialistvlad/arcaneflow/internal/registry"
)

// Signature kinds.
const (
	KindRename = "column_rename"
	KindDrop   = "column_drop"
	KindAdd    = "column_add"
)

// MetaColumns is the metadata key holding the column list after a step ran.
const MetaColumns = "columns"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the column steps with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep(config.RoleStep, "rename_columns", &registry.RegisteredStep{
		NewInput: func() any { return &RenameInput{} },
		Build:    buildRename,
	})
	r.RegisterStep(config.RoleStep, "drop_columns", &registry.RegisteredStep{
		NewInput: func() any { return &DropInput{} },
		Build:    buildDrop,
	})
	r.RegisterStep(config.RoleStep, "add_column", &registry.RegisteredStep{
		NewInput: func() any { return &AddInput{} },
		Build:    buildAdd,
	})
}
