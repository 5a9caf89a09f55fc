// Package csv provides the "csv" source: it reads a delimited text file with
// a header row into a frame.Frame.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/specialistvlad/arcaneflow/internal/config"
	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
	"github.com/specialistvlad/arcaneflow/internal/frame"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/registry"
	"github.com/specialistvlad/arcaneflow/internal/schema"
)

// Kind is the signature kind of csv sources.
const Kind = "csv_source"

// MetaSource is the metadata key holding the path that was read.
const MetaSource = "source"

const utf8BOM = "\ufeff"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a csv source block.
type Input struct {
	Path       string   `flow:"path"`
	Delimiter  string   `flow:"delimiter,optional"`
	InferTypes bool     `flow:"infer_types,optional"`
	TrimSpace  bool     `flow:"trim_space,optional"`
	Columns    []string `flow:"columns,optional"`
}

// Source reads a CSV file. When columns are declared the header must match
// them exactly.
type Source struct {
	id         string
	path       string
	comma      rune
	inferTypes bool
	trimSpace  bool
	columns    []string
}

// New validates the input and returns a Source.
func New(id string, in *Input) (*Source, error) {
	if strings.TrimSpace(in.Path) == "" {
		return nil, errors.New("path must not be empty")
	}
	comma := ','
	if in.Delimiter != "" {
		r, size := utf8.DecodeRuneInString(in.Delimiter)
		if size != len(in.Delimiter) || r == '"' || r == '\r' || r == '\n' {
			return nil, fmt.Errorf("delimiter must be a single character other than quote or newline, got %q", in.Delimiter)
		}
		comma = r
	}
	return &Source{
		id:         id,
		path:       in.Path,
		comma:      comma,
		inferTypes: in.InferTypes,
		trimSpace:  in.TrimSpace,
		columns:    in.Columns,
	}, nil
}

func (s *Source) ID() string { return s.id }

// Path returns the file the source reads.
func (s *Source) Path() string { return s.path }

func (s *Source) Execute(ctx context.Context, ec *pipeline.ExecutionContext) (*pipeline.ExecutionContext, error) {
	logger := ctxlog.FromContext(ctx)

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	data, err := s.read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(s.columns) > 0 && !data.ColumnSet().Equal(schema.NewSet(s.columns...)) {
		return nil, &pipeline.SchemaValidationError{
			StepID:  s.id,
			Missing: schema.NewSet(s.columns...).Difference(data.ColumnSet()).Columns(),
			Extra:   data.ColumnSet().Difference(schema.NewSet(s.columns...)).Columns(),
			Detail:  "header does not match declared columns",
		}
	}

	ec.Data = data
	ec.Metadata.Set(MetaSource, s.path)
	logger.Info("Loaded records from source.", "path", s.path, "records", data.Len(), "columns", len(data.Columns))
	return ec, nil
}

func (s *Source) read(r io.Reader) (*frame.Frame, error) {
	cr := csv.NewReader(r)
	cr.Comma = s.comma
	cr.TrimLeadingSpace = s.trimSpace

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("file is empty, a header row is required")
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	var rows [][]any
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]any, len(rec))
		for i, cell := range rec {
			if s.trimSpace {
				cell = strings.TrimSpace(cell)
			}
			if s.inferTypes {
				row[i] = frame.ParseValue(cell)
			} else {
				row[i] = cell
			}
		}
		rows = append(rows, row)
	}
	return frame.New(header, rows)
}

// Declared is a Source whose columns are known up front. It declares the
// signature {} -> columns.
type Declared struct{ *Source }

func (d Declared) Signature() schema.Signature {
	return schema.NewSignature(Kind, schema.NewSet(), schema.NewSet(d.columns...), map[string]any{"path": d.path})
}

// Register registers the source with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterStep(config.RoleSource, "csv", &registry.RegisteredStep{
		NewInput: func() any { return &Input{Delimiter: ",", InferTypes: true} },
		Build: func(_ context.Context, env *registry.Env, id string, input any) (pipeline.Step, error) {
			in := input.(*Input)
			if env != nil && env.BaseDir != "" && !filepath.IsAbs(in.Path) {
				in.Path = filepath.Join(env.BaseDir, in.Path)
			}
			src, err := New(id, in)
			if err != nil {
				return nil, err
			}
			if len(in.Columns) == 0 {
				return src, nil
			}
			return Declared{src}, nil
		},
	})
}
