package graph

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/arcaneflow/internal/pipeline"
	"github.com/specialistvlad/arcaneflow/internal/schema"
	"github.com/specialistvlad/arcaneflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type edgeSummary struct {
	From, To   []string
	StepID     string
	Structural bool
}

func summarize(g *Graph) []edgeSummary {
	var out []edgeSummary
	for _, e := range g.Edges() {
		out = append(out, edgeSummary{
			From:       e.From.Set().Columns(),
			To:         e.To.Set().Columns(),
			StepID:     e.StepID,
			Structural: e.Structural,
		})
	}
	return out
}

func TestNew(t *testing.T) {
	g := New()
	require.Equal(t, 1, g.NodeCount())
	assert.Equal(t, 0, g.Initial().Set().Len())
	assert.Equal(t, 0, g.Initial().Index())
	assert.Same(t, g.Initial(), g.Final())
}

func TestAddState(t *testing.T) {
	g := New()
	a := g.AddState(schema.NewSet("a", "b"))
	b := g.AddState(schema.NewSet("b", "a"))
	assert.Same(t, a, b)
	assert.Same(t, g.Initial(), g.AddState(schema.NewSet()))
	assert.Equal(t, 2, g.NodeCount())
}

func TestAddEdge(t *testing.T) {
	t.Run("self loops and parallel edges are kept", func(t *testing.T) {
		g := New()
		a := g.AddState(schema.NewSet("a"))
		_, err := g.AddEdge(g.Initial(), a, "s1", schema.Signature{}, false)
		require.NoError(t, err)
		loop, err := g.AddEdge(a, a, "s2", schema.Signature{}, false)
		require.NoError(t, err)
		assert.True(t, loop.IsSelfLoop())
		_, err = g.AddEdge(a, a, "s3", schema.Signature{}, false)
		require.NoError(t, err)

		assert.Len(t, g.EdgesBetween(a, a), 2)
		assert.Equal(t, []*Node{a}, g.Successors(a))
	})

	t.Run("foreign nodes are rejected", func(t *testing.T) {
		g := New()
		other := New()
		foreign := other.AddState(schema.NewSet("x"))

		_, err := g.AddEdge(foreign, g.Initial(), "s", schema.Signature{}, false)
		assert.ErrorContains(t, err, "source node not found")
		_, err = g.AddEdge(g.Initial(), foreign, "s", schema.Signature{}, false)
		assert.ErrorContains(t, err, "destination node not found")
	})
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("records one edge per signed step", func(t *testing.T) {
		p := testutil.MustBuild(
			testutil.Signed("src", nil, []string{"old", "id"}),
			testutil.Signed("sink", []string{"new"}, []string{"new"}),
			testutil.Signed("rename", []string{"old"}, []string{"new"}),
			testutil.Unsigned("log"),
			testutil.Signed("drop", []string{"id"}, nil),
		)

		g := Build(ctx, p)

		want := []edgeSummary{
			{From: nil, To: []string{"id", "old"}, StepID: "src", Structural: true},
			{From: []string{"id", "old"}, To: []string{"id", "new"}, StepID: "rename"},
			{From: []string{"id", "new"}, To: []string{"new"}, StepID: "drop"},
			{From: []string{"new"}, To: []string{"new"}, StepID: "sink", Structural: true},
		}
		if diff := cmp.Diff(want, summarize(g)); diff != "" {
			t.Errorf("edges mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, 4, g.NodeCount())
		assert.Equal(t, []string{"new"}, g.Final().Set().Columns())
	})

	t.Run("unsigned pipeline has only the empty state", func(t *testing.T) {
		p := testutil.MustBuild(testutil.Unsigned("src"), nil, testutil.Unsigned("a"))
		g := Build(ctx, p)
		assert.Equal(t, 1, g.NodeCount())
		assert.Equal(t, 0, g.EdgeCount())
	})

	t.Run("revisited states reuse the node", func(t *testing.T) {
		p := testutil.MustBuild(
			testutil.Unsigned("src"), nil,
			testutil.Signed("s1", nil, []string{"a"}),
			testutil.Signed("s2", []string{"a"}, []string{"a", "b"}),
			testutil.Signed("s3", []string{"a", "b"}, []string{"a"}),
		)
		g := Build(ctx, p)
		edges := g.Edges()
		require.Len(t, edges, 3)
		assert.Same(t, edges[0].To, edges[2].To)
		assert.Equal(t, 3, g.NodeCount())
	})

	t.Run("is deterministic", func(t *testing.T) {
		p := testutil.MustBuild(
			testutil.Signed("src", nil, []string{"a", "b"}),
			nil,
			testutil.Signed("x", []string{"a"}, []string{"c"}),
			testutil.Signed("y", []string{"c"}, []string{"a"}),
		)
		g1 := Build(ctx, p)
		g2 := Build(ctx, p)
		assert.Equal(t, g1.Fingerprint(), g2.Fingerprint())
		if diff := cmp.Diff(summarize(g1), summarize(g2)); diff != "" {
			t.Errorf("rebuild differs (-first +second):\n%s", diff)
		}

		other := testutil.MustBuild(
			testutil.Signed("src", nil, []string{"a", "b"}),
			nil,
			testutil.Signed("x", []string{"a"}, []string{"c"}),
		)
		assert.NotEqual(t, g1.Fingerprint(), Build(ctx, other).Fingerprint())
	})

	t.Run("signature properties change the fingerprint", func(t *testing.T) {
		withValue := func(v string) *pipeline.Pipeline {
			add := &testutil.SignedStub{
				StubStep: testutil.StubStep{StepID: "add"},
				Sig:      schema.NewSignature("column_add", schema.NewSet(), schema.NewSet("c"), map[string]any{"value": v}),
			}
			return testutil.MustBuild(testutil.Signed("src", nil, []string{"a"}), nil, add)
		}
		assert.Equal(t, Build(ctx, withValue("x")).Fingerprint(), Build(ctx, withValue("x")).Fingerprint())
		assert.NotEqual(t, Build(ctx, withValue("x")).Fingerprint(), Build(ctx, withValue("y")).Fingerprint())
	})
}

func TestSimpleCycles(t *testing.T) {
	names := func(cycles [][]*Node) [][]int {
		var out [][]int
		for _, c := range cycles {
			var idx []int
			for _, n := range c {
				idx = append(idx, n.Index())
			}
			out = append(out, idx)
		}
		return out
	}

	t.Run("acyclic walk has no cycles", func(t *testing.T) {
		g := New()
		a := g.AddState(schema.NewSet("a"))
		ab := g.AddState(schema.NewSet("a", "b"))
		_, _ = g.AddEdge(g.Initial(), a, "1", schema.Signature{}, false)
		_, _ = g.AddEdge(a, ab, "2", schema.Signature{}, false)
		assert.Empty(t, g.SimpleCycles())
	})

	t.Run("self loop is a one-node cycle", func(t *testing.T) {
		g := New()
		a := g.AddState(schema.NewSet("a"))
		_, _ = g.AddEdge(g.Initial(), a, "1", schema.Signature{}, false)
		_, _ = g.AddEdge(a, a, "2", schema.Signature{}, false)
		assert.Equal(t, [][]int{{1}}, names(g.SimpleCycles()))
	})

	t.Run("parallel edges yield one cycle but all edges", func(t *testing.T) {
		g := New()
		a := g.AddState(schema.NewSet("a"))
		b := g.AddState(schema.NewSet("b"))
		_, _ = g.AddEdge(a, b, "x1", schema.Signature{}, false)
		_, _ = g.AddEdge(b, a, "y", schema.Signature{}, false)
		_, _ = g.AddEdge(a, b, "x2", schema.Signature{}, false)

		cycles := g.SimpleCycles()
		require.Len(t, cycles, 1)
		var ids []string
		for _, e := range g.CycleEdges(cycles[0]) {
			ids = append(ids, e.StepID)
		}
		assert.ElementsMatch(t, []string{"x1", "x2", "y"}, ids)
	})

	t.Run("overlapping cycles are each reported once", func(t *testing.T) {
		g := New()
		a := g.AddState(schema.NewSet("a"))
		b := g.AddState(schema.NewSet("b"))
		c := g.AddState(schema.NewSet("c"))
		_, _ = g.AddEdge(a, b, "ab", schema.Signature{}, false)
		_, _ = g.AddEdge(b, a, "ba", schema.Signature{}, false)
		_, _ = g.AddEdge(b, c, "bc", schema.Signature{}, false)
		_, _ = g.AddEdge(c, a, "ca", schema.Signature{}, false)
		assert.Equal(t, [][]int{{1, 2}, {1, 2, 3}}, names(g.SimpleCycles()))
	})
}

func TestBuildWithPipelineFuncs(t *testing.T) {
	sig := schema.NewSignature("rename", schema.NewSet("a"), schema.NewSet("b"), nil)
	src := pipeline.SignedStepFunc{StepFunc: pipeline.StepFunc{StepID: "src"}, Sig: schema.NewSignature("src", schema.NewSet(), schema.NewSet("a"), nil)}
	step := pipeline.SignedStepFunc{StepFunc: pipeline.StepFunc{StepID: "r"}, Sig: sig}
	p, err := pipeline.Build(src, []pipeline.Step{step}, nil)
	require.NoError(t, err)

	g := Build(context.Background(), p)
	require.Equal(t, 2, g.EdgeCount())
	assert.True(t, g.Edges()[1].Signature.Equal(sig))
}
