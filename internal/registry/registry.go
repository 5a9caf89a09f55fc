package registry

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/specialistvlad/arcaneflow/internal/config"
	"github.com/specialistvlad/arcaneflow/internal/ctxlog"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Env carries what a module may need from the application when building.
type Env struct {
	// Out receives human-readable output, such as previews.
	Out io.Writer
	// BaseDir resolves relative paths in arguments.
	BaseDir string
}

// BuildFunc constructs a step from its decoded input.
type BuildFunc func(ctx context.Context, env *Env, id string, input any) (pipeline.Step, error)

// RegisteredStep holds the compiled Go parts of one step kind.
type RegisteredStep struct {
	// NewInput returns a pointer to a fresh input struct with defaults set.
	// Nil means the kind takes no arguments.
	NewInput func() any
	Build    BuildFunc
}

type key struct {
	role string
	kind string
}

// Registry holds all registered step kinds for a single application instance.
type Registry struct {
	steps map[key]*RegisteredStep
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{steps: make(map[key]*RegisteredStep)}
}

// RegisterStep registers a kind for a role. Registering the same pair twice
// is a programming error and panics.
func (r *Registry) RegisterStep(role, kind string, handler *RegisteredStep) {
	k := key{role: role, kind: kind}
	if _, exists := r.steps[k]; exists {
		panic(fmt.Sprintf("%s kind '%s' already registered", role, kind))
	}
	r.steps[k] = handler
}

// Lookup returns the handler for a role and kind.
func (r *Registry) Lookup(role, kind string) (*RegisteredStep, bool) {
	h, ok := r.steps[key{role: role, kind: kind}]
	return h, ok
}

// Kinds returns the registered kinds for a role, sorted.
func (r *Registry) Kinds(role string) []string {
	var kinds []string
	for k := range maps.Keys(r.steps) {
		if k.role == role {
			kinds = append(kinds, k.kind)
		}
	}
	slices.Sort(kinds)
	return kinds
}

// Len returns the number of registered kinds across roles.
func (r *Registry) Len() int {
	return len(r.steps)
}

// BuildStep decodes a block's arguments into the kind's input struct and
// builds the step.
func (r *Registry) BuildStep(ctx context.Context, conv config.Converter, env *Env, b *config.Block) (pipeline.Step, error) {
	logger := ctxlog.FromContext(ctx).With("block", b.ID())
	handler, ok := r.Lookup(b.Role, b.Kind)
	if !ok {
		return nil, fmt.Errorf("%s: unknown %s kind %q (registered: %v)", b.DeclRange, b.Role, b.Kind, r.Kinds(b.Role))
	}

	var input any
	if handler.NewInput != nil {
		input = handler.NewInput()
		if err := conv.DecodeBody(ctx, input, b.Arguments, conv.EvalContext()); err != nil {
			return nil, fmt.Errorf("%s: failed to decode arguments for %s: %w", b.DeclRange, b.ID(), err)
		}
	} else if len(b.Arguments) > 0 {
		return nil, fmt.Errorf("%s: %s takes no arguments", b.DeclRange, b.ID())
	}
	logger.Debug("Block input decoded.", "input", input)

	step, err := handler.Build(ctx, env, b.ID(), input)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build %s: %w", b.DeclRange, b.ID(), err)
	}
	return step, nil
}
