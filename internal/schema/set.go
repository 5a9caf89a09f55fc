package schema

import (
	"slices"
	"strconv"
	"strings"
)

// Set is an immutable set of column names. The zero value is the empty set.
type Set struct {
	// cols is sorted and free of duplicates.
	cols []string
}

// NewSet builds a Set from the given column names. Duplicates are ignored.
func NewSet(cols ...string) Set {
	if len(cols) == 0 {
		return Set{}
	}
	c := slices.Clone(cols)
	slices.Sort(c)
	return Set{cols: slices.Compact(c)}
}

// Columns returns the members in ascending order.
func (s Set) Columns() []string {
	return slices.Clone(s.cols)
}

// Len returns the number of columns in the set.
func (s Set) Len() int {
	return len(s.cols)
}

// Has reports whether the column is a member.
func (s Set) Has(col string) bool {
	_, ok := slices.BinarySearch(s.cols, col)
	return ok
}

// Union returns s ∪ other.
func (s Set) Union(other Set) Set {
	out := make([]string, 0, len(s.cols)+len(other.cols))
	i, j := 0, 0
	for i < len(s.cols) && j < len(other.cols) {
		switch {
		case s.cols[i] < other.cols[j]:
			out = append(out, s.cols[i])
			i++
		case s.cols[i] > other.cols[j]:
			out = append(out, other.cols[j])
			j++
		default:
			out = append(out, s.cols[i])
			i++
			j++
		}
	}
	out = append(out, s.cols[i:]...)
	out = append(out, other.cols[j:]...)
	if len(out) == 0 {
		return Set{}
	}
	return Set{cols: out}
}

// Difference returns s - other.
func (s Set) Difference(other Set) Set {
	out := make([]string, 0, len(s.cols))
	for _, c := range s.cols {
		if !other.Has(c) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return Set{}
	}
	return Set{cols: out}
}

// Equal reports whether both sets hold exactly the same columns.
func (s Set) Equal(other Set) bool {
	return slices.Equal(s.cols, other.cols)
}

// Key returns the canonical encoding of the set. Each member is written as
// "<len>:<name>", so distinct sets always produce distinct keys even when
// column names contain separators.
func (s Set) Key() string {
	var b strings.Builder
	for _, c := range s.cols {
		b.WriteString(strconv.Itoa(len(c)))
		b.WriteByte(':')
		b.WriteString(c)
	}
	return b.String()
}

// String renders the set as {a, b, c}.
func (s Set) String() string {
	return "{" + strings.Join(s.cols, ", ") + "}"
}
