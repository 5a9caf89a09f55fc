package testutil

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/arcaneflow/internal/config"
	hcladapter "github.com/specialistvlad/arcaneflow/internal/hcl"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/registry"
	"github.com/stretchr/testify/require"
)

// BuildBlock registers m in a fresh registry and builds the block described
// by role, kind and the HCL attribute body src. The block name is "test".
func BuildBlock(t *testing.T, m registry.Module, env *registry.Env, role, kind, src string) (pipeline.Step, error) {
	t.Helper()
	f, diags := hclsyntax.ParseConfig([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	attrs, diags := f.Body.JustAttributes()
	require.False(t, diags.HasErrors(), diags.Error())

	arguments := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		arguments[name] = attr.Expr
	}

	r := registry.New()
	m.Register(r)
	if env == nil {
		env = &registry.Env{}
	}
	conv := hcladapter.NewConverter(hcladapter.NewEvalContext(nil))
	b := &config.Block{Role: role, Kind: kind, Name: "test", Arguments: arguments}
	return r.BuildStep(context.Background(), conv, env, b)
}

// MustBuildBlock is BuildBlock that fails the test on error.
func MustBuildBlock(t *testing.T, m registry.Module, env *registry.Env, role, kind, src string) pipeline.Step {
	t.Helper()
	step, err := BuildBlock(t, m, env, role, kind, src)
	require.NoError(t, err)
	return step
}
