package frame

import (
	"maps"
	"slices"

	"github.com/specialistvlad/arcaneflow/internal/pipeline"
)

// Schema maps column names to type names.
type Schema struct {
	Columns map[string]string
}

// FromFrame infers a Schema. A column's type is the type shared by all its
// non-nil values; integers mixed with floats widen to float, any other mix
// or an all-nil column is unknown.
func FromFrame(f *Frame) Schema {
	s := Schema{Columns: make(map[string]string, len(f.Columns))}
	for i, c := range f.Columns {
		typ := ""
		for _, row := range f.Rows {
			if row[i] == nil {
				continue
			}
			typ = merge(typ, TypeOf(row[i]))
			if typ == TypeUnknown {
				break
			}
		}
		if typ == "" {
			typ = TypeUnknown
		}
		s.Columns[c] = typ
	}
	return s
}

func merge(have, next string) string {
	switch {
	case have == "" || have == next:
		return next
	case (have == TypeInteger && next == TypeFloat) || (have == TypeFloat && next == TypeInteger):
		return TypeFloat
	default:
		return TypeUnknown
	}
}

// Validate compares f against s and returns a *pipeline.SchemaValidationError
// listing missing columns, unexpected columns, and type mismatches.
func (s Schema) Validate(f *Frame) error {
	actual := FromFrame(f)

	var missing, extra []string
	mismatched := map[string][2]string{}
	for _, col := range slices.Sorted(maps.Keys(s.Columns)) {
		got, ok := actual.Columns[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		// A column without values carries no type evidence.
		if want := s.Columns[col]; got != want && !allNil(f, col) {
			mismatched[col] = [2]string{got, want}
		}
	}
	for _, col := range slices.Sorted(maps.Keys(actual.Columns)) {
		if _, ok := s.Columns[col]; !ok {
			extra = append(extra, col)
		}
	}

	if len(missing) == 0 && len(extra) == 0 && len(mismatched) == 0 {
		return nil
	}
	err := &pipeline.SchemaValidationError{Missing: missing, Extra: extra}
	if len(mismatched) > 0 {
		err.Mismatched = mismatched
	}
	return err
}

func allNil(f *Frame, col string) bool {
	i := f.Index(col)
	for _, row := range f.Rows {
		if row[i] != nil {
			return false
		}
	}
	return true
}
