// Package sqlsink provides the "sql" sink, which writes the frame into a
// table through the run's database session.
package sqlsink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/specialistvlad/arcaneflow/internal/config"
	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
	"github.com/specialistvlad/arcaneflow/internal/frame"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/registry"
	"github.com/specialistvlad/arcaneflow/internal/session"
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 1000

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a sql sink block.
type Input struct {
	Table       string `flow:"table"`
	BatchSize   int    `flow:"batch_size,optional"`
	CreateTable bool   `flow:"create_table,optional"`
}

// Sink inserts every row of the frame into a table.
type Sink struct {
	id          string
	table       string
	batchSize   int
	createTable bool
}

// New validates the input and returns a Sink.
func New(id string, in *Input) (*Sink, error) {
	if strings.TrimSpace(in.Table) == "" {
		return nil, errors.New("table must not be empty")
	}
	if in.BatchSize <= 0 {
		return nil, fmt.Errorf("batch_size must be positive, got %d", in.BatchSize)
	}
	return &Sink{id: id, table: in.Table, batchSize: in.BatchSize, createTable: in.CreateTable}, nil
}

func (s *Sink) ID() string { return s.id }

func (s *Sink) Execute(ctx context.Context, ec *pipeline.ExecutionContext) (*pipeline.ExecutionContext, error) {
	logger := ctxlog.FromContext(ctx)

	f, err := frame.FromContext(ec, s.id)
	if err != nil {
		return nil, err
	}
	sess, err := session.FromContext(ec)
	if err != nil {
		return nil, err
	}

	if s.createTable {
		if err := sess.CreateTable(ctx, s.table, f.Columns); err != nil {
			return nil, err
		}
	}

	rows := make([][]any, len(f.Rows))
	for r, row := range f.Rows {
		out := make([]any, len(row))
		for i, v := range row {
			out[i] = driverValue(v)
		}
		rows[r] = out
	}

	n, err := sess.InsertBatches(ctx, s.table, f.Columns, rows, s.batchSize)
	if err != nil {
		return nil, err
	}
	ec.Metadata.Set(pipeline.MetaProcessedRows, n)
	logger.Info("Inserted records.", "table", s.table, "records", n, "driver", sess.Driver())
	return ec, nil
}

// driverValue narrows v to a type every database/sql driver accepts.
func driverValue(v any) any {
	switch x := v.(type) {
	case nil, int64, float64, bool, string, []byte, time.Time:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return fmt.Sprint(x)
	}
}

// Register registers the sink with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep(config.RoleSink, "sql", &registry.RegisteredStep{
		NewInput: func() any { return &Input{BatchSize: DefaultBatchSize} },
		Build: func(_ context.Context, _ *registry.Env, id string, input any) (pipeline.Step, error) {
			return New(id, input.(*Input))
		},
	})
}
