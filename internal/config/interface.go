package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths, translates it into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter binds raw configuration to the Go types used by modules.
type Converter interface {
	// DecodeBody evaluates args and populates the tagged fields of target,
	// a pointer to a struct. Fields tagged `flow:"name"` are required,
	// `flow:"name,optional"` keep their preset value when absent.
	DecodeBody(ctx context.Context, target any, args map[string]hcl.Expression, evalCtx *hcl.EvalContext) error

	// ToGoValue converts a cty.Value into plain Go data.
	ToGoValue(v cty.Value) (any, error)

	// EvalContext returns the evaluation context step arguments are
	// evaluated in.
	EvalContext() *hcl.EvalContext
}
