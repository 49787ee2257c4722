package sir_test

import (
	"testing"

	"github.com/robertringler/aion/effect"
	"github.com/robertringler/aion/sir"
	"github.com/stretchr/testify/require"
)

func buildAddGraph(t *testing.T) *sir.Graph {
	t.Helper()
	g := sir.NewGraph(sir.WithName("add"))
	c1 := sir.NewConst("c1", int64(42))
	c2 := sir.NewConst("c2", int64(1))
	a := sir.NewApply("a", "op_+")
	a.Metadata.Effects = []effect.Effect{effect.Pure}
	require.NoError(t, g.AddVertex(c1))
	require.NoError(t, g.AddVertex(c2))
	require.NoError(t, g.AddVertex(a))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e1", []string{"c1"}, []string{"a"})))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e2", []string{"c2"}, []string{"a"})))
	return g
}

func TestRoundTrip(t *testing.T) {
	g := buildAddGraph(t)
	b1, err := g.Serialize()
	require.NoError(t, err)

	back, err := sir.FromJSON(b1)
	require.NoError(t, err)

	b2, err := back.Serialize()
	require.NoError(t, err)
	require.Equal(t, b1, b2)
}

func TestCloneIsolation(t *testing.T) {
	g := buildAddGraph(t)
	clone := g.Clone()

	for _, v := range clone.Vertices() {
		require.False(t, g.HasVertex(v.ID), "clone vertex ids must be fresh")
	}

	require.NoError(t, clone.AddVertex(sir.NewConst("extra", int64(7))))
	require.False(t, g.HasVertex("extra"))
}

func TestTopologicalStability(t *testing.T) {
	g1 := buildAddGraph(t)

	g2 := sir.NewGraph(sir.WithName("add"))
	require.NoError(t, g2.AddVertex(sir.NewApply("a", "op_+")))
	require.NoError(t, g2.AddVertex(sir.NewConst("c2", int64(1))))
	require.NoError(t, g2.AddVertex(sir.NewConst("c1", int64(42))))
	require.NoError(t, g2.AddEdge(sir.NewDataFlowEdge("e2", []string{"c2"}, []string{"a"})))
	require.NoError(t, g2.AddEdge(sir.NewDataFlowEdge("e1", []string{"c1"}, []string{"a"})))

	order1, err := g1.TopologicalOrder()
	require.NoError(t, err)
	order2, err := g2.TopologicalOrder()
	require.NoError(t, err)

	require.Equal(t, idsOf(order1), idsOf(order2))
}

func idsOf(verts []*sir.Vertex) []string {
	out := make([]string, len(verts))
	for i, v := range verts {
		out[i] = v.ID
	}
	return out
}

func TestVerifyMemorySafetyDetectsUseAfterFree(t *testing.T) {
	g := sir.NewGraph()
	require.NoError(t, g.AddVertex(sir.NewAlloc("alloc", 8).WithRegion("heap")))
	require.NoError(t, g.AddVertex(sir.NewApply("free", "free")))
	require.NoError(t, g.AddVertex(sir.NewLoad("load")))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e1", []string{"alloc"}, []string{"free"})))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e2", []string{"free"}, []string{"load"})))

	// Load's only predecessor is "free" (an Apply), not an Alloc/Parameter.
	violations := g.VerifyMemorySafety()
	require.NotEmpty(t, violations)
}

func TestVerifyMemorySafetyDetectsUseAfterMove(t *testing.T) {
	g := sir.NewGraph()
	require.NoError(t, g.AddVertex(sir.NewApply("mover", "id")))
	require.NoError(t, g.AddVertex(sir.NewApply("moved_to", "noop")))
	require.NoError(t, g.AddVertex(sir.NewApply("used_later", "use")))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e1", []string{"mover"}, []string{"moved_to"})))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e2", []string{"mover"}, []string{"used_later"})))
	require.NoError(t, g.AddEdge(sir.NewRegionEdge("r1", "mover", "moved_to", "heap", "heap", sir.TransferMove)))

	// "moved_to" sorts before "used_later" in the tied ready set, so
	// the move target lands strictly before "used_later" in
	// topological order: mover's data-flow edge to "used_later" is a
	// use of mover after it moved ownership to "moved_to".
	violations := g.VerifyMemorySafety()
	require.NotEmpty(t, violations)
	found := false
	for _, v := range violations {
		if len(v.VertexIDs) == 1 && v.VertexIDs[0] == "mover" {
			found = true
		}
	}
	require.True(t, found, "expected a violation naming mover, got %+v", violations)
}

func TestVerifyMemorySafetyAllowsMoveTargetReference(t *testing.T) {
	g := sir.NewGraph()
	require.NoError(t, g.AddVertex(sir.NewApply("mover", "id")))
	require.NoError(t, g.AddVertex(sir.NewApply("moved_to", "noop")))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e1", []string{"mover"}, []string{"moved_to"})))
	require.NoError(t, g.AddEdge(sir.NewRegionEdge("r1", "mover", "moved_to", "heap", "heap", sir.TransferMove)))

	// The only edge sourced at "mover" is the move itself, which does
	// not count as a use after the move.
	violations := g.VerifyMemorySafety()
	require.Empty(t, violations)
}
