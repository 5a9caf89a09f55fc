package sqlsink

import (
	"context"
	"testing"

	"github.com/specialistvlad/arcaneflow/internal/config"
	"github.com/specialistvlad/arcaneflow/internal/executor"
	"github.com/specialistvlad/arcaneflow/internal/frame"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/session"
	"github.com/specialistvlad/arcaneflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func source(t *testing.T) pipeline.Step {
	return pipeline.StepFunc{StepID: "source", Fn: func(_ context.Context, ec *pipeline.ExecutionContext) (*pipeline.ExecutionContext, error) {
		f, err := frame.New([]string{"id", "name"}, [][]any{
			{int64(1), "Ann"},
			{int64(2), "Bob"},
			{int64(3), nil},
		})
		require.NoError(t, err)
		ec.Data = f
		return ec, nil
	}}
}

func openSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func count(t *testing.T, s *session.Session, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM "`+table+`"`).Scan(&n))
	return n
}

func TestSink(t *testing.T) {
	ctx := context.Background()

	t.Run("writes every row and commits", func(t *testing.T) {
		sess := openSession(t)
		sink := testutil.MustBuildBlock(t, &Module{}, nil, config.RoleSink, "sql", `
table        = "people"
batch_size   = 2
create_table = true
`)
		p := testutil.MustBuild(source(t), sink)

		ec, err := executor.Execute(ctx, p, sess)
		require.NoError(t, err)

		assert.Equal(t, 3, count(t, sess, "people"))
		stats := executor.StatsFrom(ec)
		assert.Equal(t, executor.Stats{SourceRecords: 3, TransformedRecords: 3, InsertedRecords: 3}, stats)

		var name string
		require.NoError(t, sess.DB().QueryRow(`SELECT name FROM "people" WHERE id = '2'`).Scan(&name))
		assert.Equal(t, "Bob", name)
	})

	t.Run("failure rolls the transaction back", func(t *testing.T) {
		sess := openSession(t)
		require.NoError(t, sess.Acquire(ctx))
		require.NoError(t, sess.CreateTable(ctx, "people", []string{"id"}))
		require.NoError(t, sess.Release(ctx))

		// The table lacks the name column, so the insert fails.
		sink := testutil.MustBuildBlock(t, &Module{}, nil, config.RoleSink, "sql", `table = "people"`)
		p := testutil.MustBuild(source(t), sink)

		_, err := executor.Execute(ctx, p, sess)
		var stepErr *pipeline.StepExecutionError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, "sink.sql.test", stepErr.StepID)
		assert.Equal(t, 0, count(t, sess, "people"))
	})

	t.Run("requires a session", func(t *testing.T) {
		sink := testutil.MustBuildBlock(t, &Module{}, nil, config.RoleSink, "sql", `table = "people"`)
		p := testutil.MustBuild(source(t), sink)

		_, err := executor.Execute(ctx, p, nil)
		var resErr *pipeline.ResourceError
		require.ErrorAs(t, err, &resErr)
	})

	t.Run("rejects a foreign resource", func(t *testing.T) {
		sink := testutil.MustBuildBlock(t, &Module{}, nil, config.RoleSink, "sql", `table = "people"`)
		p := testutil.MustBuild(source(t), sink)

		_, err := executor.Execute(ctx, p, &testutil.RecordingResource{})
		require.Error(t, err)
		assert.ErrorContains(t, err, "not a database session")
	})
}

func TestBuild(t *testing.T) {
	t.Run("batch size defaults", func(t *testing.T) {
		step := testutil.MustBuildBlock(t, &Module{}, nil, config.RoleSink, "sql", `table = "t"`)
		assert.Equal(t, DefaultBatchSize, step.(*Sink).batchSize)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		_, err := testutil.BuildBlock(t, &Module{}, nil, config.RoleSink, "sql", `table = ""`)
		assert.ErrorContains(t, err, "table must not be empty")

		_, err = testutil.BuildBlock(t, &Module{}, nil, config.RoleSink, "sql", `
table      = "t"
batch_size = 0
`)
		assert.ErrorContains(t, err, "batch_size must be positive")
	})
}

func TestDriverValue(t *testing.T) {
	assert.Equal(t, int64(4), driverValue(4))
	assert.Nil(t, driverValue(nil))
	assert.Equal(t, "[a b]", driverValue([]any{"a", "b"}))
	assert.Equal(t, "x", driverValue("x"))
}
