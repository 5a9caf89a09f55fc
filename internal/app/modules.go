package app

import (
	"github.com/specialistvlad/arcaneflow/internal/registry"
	"github.com/specialistvlad/arcaneflow/modules/columns"
	"github.com/specialistvlad/arcaneflow/modules/csv"
	"github.com/specialistvlad/arcaneflow/modules/print"
	"github.com/specialistvlad/arcaneflow/modules/sqlsink"
	"github.com/specialistvlad/arcaneflow/modules/validate"
)

// coreModules is the definitive list of all modules that are compiled into
// the arcaneflow binary.
var coreModules = []registry.Module{
	&csv.Module{},
	&columns.Module{},
	&validate.Module{},
	&print.Module{},
	&sqlsink.Module{},
}
