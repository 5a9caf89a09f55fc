package schema

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// Signature describes a transformation's effect on the column set: it needs
// the Input columns to be present and, after running, the Output columns
// exist. Columns it does not mention pass through unchanged.
//
// Signatures are values. Two signatures are equal when their input and output
// sets, kind, and properties (compared by their formatted string form) match.
type Signature struct {
	input      Set
	output     Set
	kind       string
	properties map[string]any
}

// NewSignature creates a Signature. The properties map is copied.
func NewSignature(kind string, input, output Set, properties map[string]any) Signature {
	var props map[string]any
	if len(properties) > 0 {
		props = maps.Clone(properties)
	}
	return Signature{
		input:      input,
		output:     output,
		kind:       kind,
		properties: props,
	}
}

func (s Signature) Input() Set   { return s.input }
func (s Signature) Output() Set  { return s.output }
func (s Signature) Kind() string { return s.kind }

// Properties returns a copy of the signature's properties.
func (s Signature) Properties() map[string]any {
	if s.properties == nil {
		return map[string]any{}
	}
	return maps.Clone(s.properties)
}

// Property returns a single property value.
func (s Signature) Property(name string) (any, bool) {
	v, ok := s.properties[name]
	return v, ok
}

// Key returns the canonical encoding used for equality and hashing.
func (s Signature) Key() string {
	var b strings.Builder
	writePart := func(p string) {
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	writePart(s.input.Key())
	writePart(s.output.Key())
	writePart(s.kind)
	for _, k := range slices.Sorted(maps.Keys(s.properties)) {
		writePart(k)
		writePart(fmt.Sprint(s.properties[k]))
	}
	return b.String()
}

// Hash returns a 64-bit digest of Key.
func (s Signature) Hash() uint64 {
	return xxh3.HashString(s.Key())
}

// Equal reports whether two signatures are value-equal.
func (s Signature) Equal(other Signature) bool {
	return s.Key() == other.Key()
}

// IsZero reports whether the signature declares nothing at all.
func (s Signature) IsZero() bool {
	return s.input.Len() == 0 && s.output.Len() == 0 && s.kind == "" && len(s.properties) == 0
}

func (s Signature) String() string {
	return fmt.Sprintf("%s %s -> %s", s.kind, s.input, s.output)
}
