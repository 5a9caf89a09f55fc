package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Session {
	t.Helper()
	s, err := Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func countRows(t *testing.T, s *Session, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM "+s.dialect.quote(table)).Scan(&n))
	return n
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open(ctx, "oracle", "x")
		require.ErrorContains(t, err, `unsupported driver "oracle"`)
	})

	t.Run("empty dsn", func(t *testing.T) {
		_, err := Open(ctx, "sqlite", " ")
		require.ErrorContains(t, err, "DSN must not be empty")
	})

	t.Run("malformed dsn is caught before connecting", func(t *testing.T) {
		_, err := Open(ctx, "mysql", "not a dsn")
		require.ErrorContains(t, err, "invalid mysql DSN")

		_, err = Open(ctx, "postgres", "postgres://user@host:notaport/db")
		require.ErrorContains(t, err, "invalid pgx DSN")
	})

	t.Run("aliases resolve", func(t *testing.T) {
		s, err := Open(ctx, "sqlite3", ":memory:")
		require.NoError(t, err)
		defer s.Close()
		assert.Equal(t, "sqlite", s.Driver())
	})
}

func TestDrivers(t *testing.T) {
	assert.Equal(t, []string{"mssql", "mysql", "pgx", "postgres", "postgresql", "sqlite", "sqlite3", "sqlserver"}, Drivers())
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"main"."orders"`, dialects["sqlite"].quote("main.orders"))
	assert.Equal(t, `"we""ird"`, dialects["pgx"].quote(`we"ird`))
	assert.Equal(t, "`orders`", dialects["mysql"].quote("orders"))
	assert.Equal(t, "[dbo].[orders]", dialects["sqlserver"].quote("dbo.orders"))
	assert.Equal(t, `"price.usd"`, dialects["sqlite"].quoteColumn("price.usd"))
	assert.Equal(t, `"a.""b"`, dialects["pgx"].quoteColumn(`a."b`))
	assert.Equal(t, "`x``y.z`", dialects["mysql"].quoteColumn("x`y.z"))
	assert.Equal(t, "[a]]b.c]", dialects["sqlserver"].quoteColumn("a]b.c"))
	assert.Equal(t, "$3", dialects["pgx"].placeholder(3))
	assert.Equal(t, "@p2", dialects["sqlserver"].placeholder(2))
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("release commits", func(t *testing.T) {
		s := openMemory(t)
		require.NoError(t, s.Acquire(ctx))
		require.NoError(t, s.CreateTable(ctx, "orders", []string{"id", "name"}))
		n, err := s.InsertBatches(ctx, "orders", []string{"id", "name"}, [][]any{{1, "a"}, {2, "b"}, {3, "c"}}, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		require.NoError(t, s.Release(ctx))

		assert.Equal(t, 3, countRows(t, s, "orders"))
	})

	t.Run("rollback discards and release is then a no-op", func(t *testing.T) {
		s := openMemory(t)
		require.NoError(t, s.Acquire(ctx))
		require.NoError(t, s.CreateTable(ctx, "orders", []string{"id"}))
		require.NoError(t, s.Release(ctx))

		require.NoError(t, s.Acquire(ctx))
		_, err := s.InsertBatches(ctx, "orders", []string{"id"}, [][]any{{1}}, 10)
		require.NoError(t, err)
		require.NoError(t, s.Rollback(ctx))
		require.NoError(t, s.Release(ctx))

		assert.Equal(t, 0, countRows(t, s, "orders"))
	})

	t.Run("double acquire fails", func(t *testing.T) {
		s := openMemory(t)
		require.NoError(t, s.Acquire(ctx))
		require.ErrorContains(t, s.Acquire(ctx), "already acquired")
	})

	t.Run("writes need a transaction", func(t *testing.T) {
		s := openMemory(t)
		_, err := s.Tx()
		require.ErrorIs(t, err, ErrNoTransaction)
		require.ErrorIs(t, s.CreateTable(ctx, "t", []string{"a"}), ErrNoTransaction)
		_, err = s.InsertBatches(ctx, "t", []string{"a"}, nil, 1)
		require.ErrorIs(t, err, ErrNoTransaction)
	})
}

func TestInsertBatches_Validation(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	require.NoError(t, s.Acquire(ctx))
	require.NoError(t, s.CreateTable(ctx, "t", []string{"a", "b"}))

	_, err := s.InsertBatches(ctx, "t", []string{"a", "b"}, [][]any{{1, 2}}, 0)
	require.ErrorContains(t, err, "batch size must be positive")

	n, err := s.InsertBatches(ctx, "t", []string{"a", "b"}, [][]any{{1, 2}, {3}}, 1)
	require.ErrorContains(t, err, "row 1 has 1 values, want 2")
	assert.Equal(t, int64(1), n)
}

func TestFromContext(t *testing.T) {
	ec := pipeline.NewExecutionContext()
	_, err := FromContext(ec)
	var resErr *pipeline.ResourceError
	require.ErrorAs(t, err, &resErr)

	s := openMemory(t)
	ec.BindResource(s)
	got, err := FromContext(ec)
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestInsertBatches_DottedColumns(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	require.NoError(t, s.Acquire(ctx))
	cols := []string{"price.usd", "main.name"}
	require.NoError(t, s.CreateTable(ctx, "main.prices", cols))

	n, err := s.InsertBatches(ctx, "main.prices", cols, [][]any{{1.5, "a"}, {2.5, "b"}}, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, s.Release(ctx))

	var total float64
	require.NoError(t, s.DB().QueryRow(`SELECT SUM("price.usd") FROM "main"."prices"`).Scan(&total))
	assert.Equal(t, 4.0, total)
}

func TestInsertBatches_ParameterLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("wide rows are split below the driver limit", func(t *testing.T) {
		s := openMemory(t)
		require.NoError(t, s.Acquire(ctx))

		cols := make([]string, 40)
		for i := range cols {
			cols[i] = fmt.Sprintf("c%d", i)
		}
		rows := make([][]any, 1000)
		for r := range rows {
			rows[r] = make([]any, len(cols))
			for c := range cols {
				rows[r][c] = r*len(cols) + c
			}
		}
		require.NoError(t, s.CreateTable(ctx, "wide", cols))

		n, err := s.InsertBatches(ctx, "wide", cols, rows, 1000)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), n)
		require.NoError(t, s.Release(ctx))
		assert.Equal(t, 1000, countRows(t, s, "wide"))
	})

	t.Run("rows per statement", func(t *testing.T) {
		cases := map[string]struct {
			driver  string
			batch   int
			columns int
			want    int
		}{
			"batch fits":          {"sqlite", 100, 3, 100},
			"sqlite capped":       {"sqlite", 1000, 40, 819},
			"sqlserver capped":    {"sqlserver", 1000, 3, 699},
			"postgres capped":     {"pgx", 100000, 1, 65535},
			"mysql unconstrained": {"mysql", 500, 10, 500},
		}
		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				s := &Session{dialect: dialects[tc.driver]}
				got, err := s.rowsPerStatement(tc.batch, tc.columns)
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			})
		}
	})

	t.Run("more columns than parameters", func(t *testing.T) {
		s := &Session{dialect: dialects["sqlserver"]}
		_, err := s.rowsPerStatement(10, 2100)
		require.ErrorContains(t, err, "2100 columns exceed the sqlserver limit of 2099 parameters per statement")
	})
}
