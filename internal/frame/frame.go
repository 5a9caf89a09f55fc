// Package frame is the tabular payload the shipped modules pass between
// steps as ExecutionContext.Data.
package frame

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/schema"
)

// Frame holds named columns and row-major values. Every row has exactly
// len(Columns) cells.
type Frame struct {
	Columns []string
	Rows    [][]any
}

// New validates the shape of the data and returns a Frame.
func New(columns []string, rows [][]any) (*Frame, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("frame: duplicate column %q", c)
		}
		seen[c] = struct{}{}
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("frame: row %d has %d cells, want %d", i, len(r), len(columns))
		}
	}
	return &Frame{Columns: columns, Rows: rows}, nil
}

// FromContext returns the Frame carried by ec, or an error naming stepID
// when the payload is missing or of another type.
func FromContext(ec *pipeline.ExecutionContext, stepID string) (*Frame, error) {
	f, ok := ec.Data.(*Frame)
	if !ok || f == nil {
		return nil, fmt.Errorf("%s requires tabular input, got %T", stepID, ec.Data)
	}
	return f, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Index returns the position of col, or -1.
func (f *Frame) Index(col string) int {
	return slices.Index(f.Columns, col)
}

// ColumnSet returns the column names as a schema.Set.
func (f *Frame) ColumnSet() schema.Set {
	return schema.NewSet(f.Columns...)
}

// Rename renames columns in place. Mapping keys that are not columns are
// ignored. Renaming onto a column that still exists is an error.
func (f *Frame) Rename(mapping map[string]string) error {
	renamed := slices.Clone(f.Columns)
	for i, c := range renamed {
		if to, ok := mapping[c]; ok {
			renamed[i] = to
		}
	}
	seen := make(map[string]struct{}, len(renamed))
	for _, c := range renamed {
		if _, dup := seen[c]; dup {
			return fmt.Errorf("frame: rename produces duplicate column %q", c)
		}
		seen[c] = struct{}{}
	}
	f.Columns = renamed
	return nil
}

// Drop removes columns. Every named column must exist.
func (f *Frame) Drop(cols ...string) error {
	var missing []string
	drop := make(map[int]struct{}, len(cols))
	for _, c := range cols {
		i := f.Index(c)
		if i < 0 {
			missing = append(missing, c)
			continue
		}
		drop[i] = struct{}{}
	}
	if len(missing) > 0 {
		return &pipeline.SchemaValidationError{Missing: missing, Detail: "cannot drop absent columns"}
	}

	keep := make([]int, 0, len(f.Columns)-len(drop))
	for i := range f.Columns {
		if _, ok := drop[i]; !ok {
			keep = append(keep, i)
		}
	}
	f.Columns = pick(f.Columns, keep)
	for r, row := range f.Rows {
		f.Rows[r] = pick(row, keep)
	}
	return nil
}

func pick[T any](in []T, idx []int) []T {
	out := make([]T, len(idx))
	for j, i := range idx {
		out[j] = in[i]
	}
	return out
}

// AddColumn appends a column holding value in every row.
func (f *Frame) AddColumn(name string, value any) error {
	if f.Index(name) >= 0 {
		return &pipeline.SchemaValidationError{Extra: []string{name}, Detail: "column already exists"}
	}
	f.Columns = append(f.Columns, name)
	for r := range f.Rows {
		f.Rows[r] = append(f.Rows[r], value)
	}
	return nil
}

// Records returns every row as a column-keyed map.
func (f *Frame) Records() []map[string]any {
	out := make([]map[string]any, len(f.Rows))
	for r, row := range f.Rows {
		rec := make(map[string]any, len(f.Columns))
		for i, c := range f.Columns {
			rec[c] = row[i]
		}
		out[r] = rec
	}
	return out
}

// Head returns a frame sharing the first n rows.
func (f *Frame) Head(n int) *Frame {
	if n < 0 || n > len(f.Rows) {
		n = len(f.Rows)
	}
	return &Frame{Columns: f.Columns, Rows: f.Rows[:n]}
}

// WriteTable renders the frame as an aligned text table.
func (f *Frame) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, c := range f.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)
	for _, row := range f.Rows {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			if v == nil {
				fmt.Fprint(tw, "<nil>")
				continue
			}
			fmt.Fprint(tw, v)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
