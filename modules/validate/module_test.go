package validate

import (
	"context"
	"testing"

	"github.com/specialistvlad/arcaneflow/internal/config"
	"github.com/specialistvlad/arcaneflow/internal/frame"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, step pipeline.Step) error {
	t.Helper()
	f, err := frame.New([]string{"id", "name", "score"}, [][]any{
		{int64(1), "Ann", 9.5},
		{int64(2), "Bob", int64(7)},
	})
	require.NoError(t, err)
	ec := pipeline.NewExecutionContext()
	ec.Data = f
	_, err = step.Execute(context.Background(), ec)
	return err
}

func TestValidateSchema(t *testing.T) {
	t.Run("matching columns pass and no signature is declared", func(t *testing.T) {
		step := testutil.MustBuildBlock(t, &Module{}, nil, config.RoleStep, "validate_schema", `
columns = { id = "integer", name = "string", score = "float" }
strict  = true
`)
		_, signed := pipeline.TryGetSignature(step)
		assert.False(t, signed)
		assert.NoError(t, run(t, step))
	})

	t.Run("extra columns only fail in strict mode", func(t *testing.T) {
		lenient := testutil.MustBuildBlock(t, &Module{}, nil, config.RoleStep, "validate_schema", `columns = { id = "integer" }`)
		assert.NoError(t, run(t, lenient))

		strict := testutil.MustBuildBlock(t, &Module{}, nil, config.RoleStep, "validate_schema", `
columns = { id = "integer" }
strict  = true
`)
		err := run(t, strict)
		var schemaErr *pipeline.SchemaValidationError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, []string{"name", "score"}, schemaErr.Extra)
		assert.Equal(t, "step.validate_schema.test", schemaErr.StepID)
	})

	t.Run("missing and mismatched columns fail", func(t *testing.T) {
		step := testutil.MustBuildBlock(t, &Module{}, nil, config.RoleStep, "validate_schema", `
columns = { id = "string", email = "string" }
`)
		err := run(t, step)
		var schemaErr *pipeline.SchemaValidationError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, []string{"email"}, schemaErr.Missing)
		assert.Empty(t, schemaErr.Extra)
		assert.Equal(t, map[string][2]string{"id": {"integer", "string"}}, schemaErr.Mismatched)
	})

	t.Run("unknown type names are rejected at build time", func(t *testing.T) {
		_, err := testutil.BuildBlock(t, &Module{}, nil, config.RoleStep, "validate_schema", `columns = { id = "int" }`)
		assert.ErrorContains(t, err, `unknown column types id="int"`)
	})
}
