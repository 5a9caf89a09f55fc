package print

import (
	"bytes"
	"context"
	"testing"

	"github.com/specialistvlad/arcaneflow/internal/config"
	"github.com/specialistvlad/arcaneflow/internal/frame"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/registry"
	"github.com/specialistvlad/arcaneflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextWith(t *testing.T, rows int) *pipeline.ExecutionContext {
	t.Helper()
	data := make([][]any, rows)
	for i := range data {
		data[i] = []any{int64(i + 1), "row"}
	}
	f, err := frame.New([]string{"id", "label"}, data)
	require.NoError(t, err)
	ec := pipeline.NewExecutionContext()
	ec.Data = f
	return ec
}

func TestPrint(t *testing.T) {
	t.Run("prints up to the default limit", func(t *testing.T) {
		// --- Arrange ---
		var out bytes.Buffer
		sink := testutil.MustBuildBlock(t, &Module{}, &registry.Env{Out: &out}, config.RoleSink, "print", ``)

		// --- Act ---
		ec, err := sink.Execute(context.Background(), contextWith(t, 7))

		// --- Assert ---
		require.NoError(t, err)
		assert.Contains(t, out.String(), "id  label")
		assert.Contains(t, out.String(), "5   row")
		assert.NotContains(t, out.String(), "6   row")
		assert.Contains(t, out.String(), "... 2 more rows")

		printed, _ := ec.Metadata.Int(MetaPrintedRows)
		total, _ := ec.Metadata.Int(MetaTotalRows)
		assert.Equal(t, int64(5), printed)
		assert.Equal(t, int64(7), total)
	})

	t.Run("negative limit prints everything", func(t *testing.T) {
		var out bytes.Buffer
		sink := testutil.MustBuildBlock(t, &Module{}, &registry.Env{Out: &out}, config.RoleSink, "print", `limit = -1`)

		_, err := sink.Execute(context.Background(), contextWith(t, 7))
		require.NoError(t, err)
		assert.Contains(t, out.String(), "7   row")
		assert.NotContains(t, out.String(), "more rows")
	})

	t.Run("empty frame", func(t *testing.T) {
		var out bytes.Buffer
		sink := New("print", DefaultLimit, &out)

		_, err := sink.Execute(context.Background(), contextWith(t, 0))
		require.NoError(t, err)
		assert.Contains(t, out.String(), "(no rows)")
	})

	t.Run("zero limit is rejected", func(t *testing.T) {
		_, err := testutil.BuildBlock(t, &Module{}, nil, config.RoleSink, "print", `limit = 0`)
		assert.ErrorContains(t, err, "limit must not be zero")
	})
}
