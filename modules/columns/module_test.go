package columns

import (
	"context"
	"testing"

	"github.com/specialistvlad/arcaneflow/internal/config"
	"github.com/specialistvlad/arcaneflow/internal/executor"
	"github.com/specialistvlad/arcaneflow/internal/frame"
	"github.com/specialistvlad/arcaneflow/internal/optimizer"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/schema"
	"github.com/specialistvlad/arcaneflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func people(t *testing.T) *frame.Frame {
	t.Helper()
	f, err := frame.New([]string{"id", "name"}, [][]any{{int64(1), "Ann"}, {int64(2), "Bob"}})
	require.NoError(t, err)
	return f
}

func execute(t *testing.T, step pipeline.Step, data any) (*pipeline.ExecutionContext, error) {
	t.Helper()
	ec := pipeline.NewExecutionContext()
	ec.Data = data
	return step.Execute(context.Background(), ec)
}

func TestRename(t *testing.T) {
	step := testutil.MustBuildBlock(t, &Module{}, nil, config.RoleStep, "rename_columns", `mapping = { name = "full_name" }`)

	t.Run("signature maps keys to values", func(t *testing.T) {
		sig, ok := pipeline.TryGetSignature(step)
		require.True(t, ok)
		assert.Equal(t, KindRename, sig.Kind())
		assert.Equal(t, []string{"name"}, sig.Input().Columns())
		assert.Equal(t, []string{"full_name"}, sig.Output().Columns())
		mapping, ok := sig.Property("mapping")
		require.True(t, ok)
		assert.Equal(t, map[string]string{"name": "full_name"}, mapping)
	})

	t.Run("renames the frame", func(t *testing.T) {
		ec, err := execute(t, step, people(t))
		require.NoError(t, err)
		f := ec.Data.(*frame.Frame)
		assert.Equal(t, []string{"id", "full_name"}, f.Columns)
		cols, _ := ec.Metadata.Get(MetaColumns)
		assert.Equal(t, []string{"id", "full_name"}, cols)
	})

	t.Run("rejects non-tabular input", func(t *testing.T) {
		_, err := execute(t, step, "not a frame")
		assert.ErrorContains(t, err, "step.rename_columns.test requires tabular input")
	})

	t.Run("empty mapping is a build error", func(t *testing.T) {
		_, err := testutil.BuildBlock(t, &Module{}, nil, config.RoleStep, "rename_columns", `mapping = {}`)
		assert.ErrorContains(t, err, "mapping must not be empty")
	})
}

func TestDrop(t *testing.T) {
	step := testutil.MustBuildBlock(t, &Module{}, nil, config.RoleStep, "drop_columns", `columns = ["name"]`)

	sig, ok := pipeline.TryGetSignature(step)
	require.True(t, ok)
	assert.Equal(t, KindDrop, sig.Kind())
	assert.Equal(t, []string{"name"}, sig.Input().Columns())
	assert.Equal(t, 0, sig.Output().Len())

	t.Run("drops the column", func(t *testing.T) {
		ec, err := execute(t, step, people(t))
		require.NoError(t, err)
		f := ec.Data.(*frame.Frame)
		assert.Equal(t, []string{"id"}, f.Columns)
		assert.Equal(t, [][]any{{int64(1)}, {int64(2)}}, f.Rows)
	})

	t.Run("absent column is a schema error", func(t *testing.T) {
		f, err := frame.New([]string{"id"}, nil)
		require.NoError(t, err)
		_, err = execute(t, step, f)
		var schemaErr *pipeline.SchemaValidationError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, "step.drop_columns.test", schemaErr.StepID)
		assert.Equal(t, []string{"name"}, schemaErr.Missing)
	})
}

func TestAdd(t *testing.T) {
	t.Run("adds a typed constant", func(t *testing.T) {
		step := testutil.MustBuildBlock(t, &Module{}, nil, config.RoleStep, "add_column", `
column = "score"
value  = 10
`)
		sig, ok := pipeline.TryGetSignature(step)
		require.True(t, ok)
		assert.Equal(t, 0, sig.Input().Len())
		assert.Equal(t, []string{"score"}, sig.Output().Columns())

		ec, err := execute(t, step, people(t))
		require.NoError(t, err)
		f := ec.Data.(*frame.Frame)
		assert.Equal(t, []any{int64(1), "Ann", int64(10)}, f.Rows[0])
	})

	t.Run("value defaults to null", func(t *testing.T) {
		step := testutil.MustBuildBlock(t, &Module{}, nil, config.RoleStep, "add_column", `column = "note"`)
		ec, err := execute(t, step, people(t))
		require.NoError(t, err)
		assert.Nil(t, ec.Data.(*frame.Frame).Rows[1][2])
	})

	t.Run("existing column is a schema error", func(t *testing.T) {
		step := testutil.MustBuildBlock(t, &Module{}, nil, config.RoleStep, "add_column", `
column = "name"
value  = "x"
`)
		_, err := execute(t, step, people(t))
		var schemaErr *pipeline.SchemaValidationError
		require.ErrorAs(t, err, &schemaErr)
		assert.Equal(t, []string{"name"}, schemaErr.Extra)
	})
}

// A rename followed by its inverse is a cycle of schema states. The
// optimizer drops both steps and the run still produces the source frame.
func TestRenameRoundTripIsPruned(t *testing.T) {
	ctx := context.Background()
	source := pipeline.SignedStepFunc{
		StepFunc: pipeline.StepFunc{StepID: "source", Fn: func(_ context.Context, ec *pipeline.ExecutionContext) (*pipeline.ExecutionContext, error) {
			ec.Data = people(t)
			return ec, nil
		}},
		Sig: schema.NewSignature("test_source", schema.NewSet(), schema.NewSet("id", "name"), nil),
	}
	there, err := NewRename("there", map[string]string{"name": "full_name"})
	require.NoError(t, err)
	back, err := NewRename("back", map[string]string{"full_name": "name"})
	require.NoError(t, err)
	keep, err := NewAdd("keep", "country", "NL")
	require.NoError(t, err)

	p := testutil.MustBuild(source, nil, there, back, keep)

	unoptimized, err := executor.Execute(ctx, p, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "country"}, unoptimized.Data.(*frame.Frame).Columns)

	optimized, err := optimizer.New().Optimize(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, optimized.StepIDs())

	ec, err := executor.Execute(ctx, optimized, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "country"}, ec.Data.(*frame.Frame).Columns)
	executed, _ := ec.Metadata.Get(pipeline.MetaStepsExecuted)
	assert.Equal(t, []string{"source", "keep"}, executed)
}

func TestRenameExecutionScenario(t *testing.T) {
	source := pipeline.StepFunc{StepID: "source", Fn: func(_ context.Context, ec *pipeline.ExecutionContext) (*pipeline.ExecutionContext, error) {
		f, err := frame.New([]string{"old"}, [][]any{{"v1"}, {"v2"}})
		if err != nil {
			return nil, err
		}
		ec.Data = f
		return ec, nil
	}}
	rename, err := NewRename("rename", map[string]string{"old": "new"})
	require.NoError(t, err)

	ec, err := executor.Execute(context.Background(), testutil.MustBuild(source, nil, rename), nil)
	require.NoError(t, err)

	f := ec.Data.(*frame.Frame)
	assert.Equal(t, []string{"new"}, f.Columns)
	assert.Equal(t, [][]any{{"v1"}, {"v2"}}, f.Rows)

	executed, ok := ec.Metadata.Get(pipeline.MetaStepsExecuted)
	require.True(t, ok)
	assert.Contains(t, executed, "rename")
	last, _ := ec.Metadata.Get(pipeline.MetaLastStep)
	assert.Equal(t, "rename", last)
}
