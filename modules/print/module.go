package print

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/arcaneflow/internal/config"
	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
	"github.com/specialistvlad/arcaneflow/internal/frame"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/registry"
)

// Metadata keys written by the print sink.
const (
	MetaPrintedRows = "printed_rows"
	MetaTotalRows   = "total_rows"
)

// DefaultLimit is the number of rows printed when no limit is set.
const DefaultLimit = 5

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the print sink.
type Input struct {
	Limit int `flow:"limit,optional"`
}

// Sink prints a preview of the frame.
type Sink struct {
	id    string
	limit int
	out   io.Writer
}

// New returns a print sink writing to out. A negative limit prints every row.
func New(id string, limit int, out io.Writer) *Sink {
	if out == nil {
		out = os.Stdout
	}
	return &Sink{id: id, limit: limit, out: out}
}

func (s *Sink) ID() string { return s.id }

func (s *Sink) Execute(ctx context.Context, ec *pipeline.ExecutionContext) (*pipeline.ExecutionContext, error) {
	ctxlog.FromContext(ctx).Info("Printing records", "step", s.id)

	f, err := frame.FromContext(ec, s.id)
	if err != nil {
		return nil, err
	}
	head := f.Head(s.limit)

	if f.Len() == 0 {
		fmt.Fprintln(s.out, "      (no rows)")
	} else if err := head.WriteTable(s.out); err != nil {
		return nil, fmt.Errorf("write preview: %w", err)
	}
	if head.Len() < f.Len() {
		fmt.Fprintf(s.out, "      ... %d more rows\n", f.Len()-head.Len())
	}

	ec.Metadata.Set(MetaPrintedRows, head.Len())
	ec.Metadata.Set(MetaTotalRows, f.Len())
	return ec, nil
}

// Register registers the sink with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep(config.RoleSink, "print", &registry.RegisteredStep{
		NewInput: func() any { return &Input{Limit: DefaultLimit} },
		Build: func(_ context.Context, env *registry.Env, id string, input any) (pipeline.Step, error) {
			in := input.(*Input)
			if in.Limit == 0 {
				return nil, errors.New("limit must not be zero")
			}
			var out io.Writer
			if env != nil {
				out = env.Out
			}
			return New(id, in.Limit, out), nil
		},
	})
}
