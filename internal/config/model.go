package config

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// Block roles.
const (
	RoleSource = "source"
	RoleStep   = "step"
	RoleSink   = "sink"
)

// Model is the unified representation of one pipeline definition.
type Model struct {
	Pipeline *Settings
	Database *Database
	Sources  []*Block
	Steps    []*Block
	Sinks    []*Block
}

// Settings holds the `pipeline` block.
type Settings struct {
	// Optimize is nil when the file does not say; the CLI flag decides then.
	Optimize   *bool
	Strategies []string
}

// Database holds the `database` block.
type Database struct {
	Driver string
	DSN    string
}

// Block is a `source`, `step`, or `sink` block.
type Block struct {
	Role      string
	Kind      string
	Name      string
	Arguments map[string]hcl.Expression
	DeclRange hcl.Range
}

// ID returns the stable step id, <role>.<kind>.<name>.
func (b *Block) ID() string {
	return fmt.Sprintf("%s.%s.%s", b.Role, b.Kind, b.Name)
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{Pipeline: &Settings{}}
}

// Source returns the single source block.
func (m *Model) Source() *Block {
	if len(m.Sources) == 0 {
		return nil
	}
	return m.Sources[0]
}

// Sink returns the sink block or nil.
func (m *Model) Sink() *Block {
	if len(m.Sinks) == 0 {
		return nil
	}
	return m.Sinks[0]
}

// Validate checks the structural rules a definition must satisfy: exactly
// one source, at most one sink, and unique block ids.
func (m *Model) Validate() error {
	var errs []error
	switch len(m.Sources) {
	case 0:
		errs = append(errs, errors.New("no source block defined"))
	case 1:
	default:
		errs = append(errs, fmt.Errorf("exactly one source block is allowed, found %d", len(m.Sources)))
	}
	if len(m.Sinks) > 1 {
		errs = append(errs, fmt.Errorf("at most one sink block is allowed, found %d", len(m.Sinks)))
	}

	seen := map[string]hcl.Range{}
	for _, group := range [][]*Block{m.Sources, m.Steps, m.Sinks} {
		for _, b := range group {
			if prev, dup := seen[b.ID()]; dup {
				errs = append(errs, fmt.Errorf("duplicate block %s at %s (first defined at %s)", b.ID(), b.DeclRange, prev))
				continue
			}
			seen[b.ID()] = b.DeclRange
		}
	}
	if m.Database != nil && m.Database.Driver == "" {
		errs = append(errs, errors.New("database block requires a driver"))
	}
	return errors.Join(errs...)
}
