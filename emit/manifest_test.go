package emit_test

import (
	"testing"

	"github.com/robertringler/aion/emit"
	"github.com/robertringler/aion/proof"
	"github.com/robertringler/aion/region"
	"github.com/robertringler/aion/scheduler"
	"github.com/robertringler/aion/sir"
	"github.com/stretchr/testify/require"
)

func buildKernelGraph(t *testing.T) *sir.Graph {
	t.Helper()
	g := sir.NewGraph(sir.WithName("kernel"))
	alloc := sir.NewAlloc("a1", 256).WithRegion("heap")
	k := sir.NewKernelLaunch("k1", [3]int{16, 16, 1}, [3]int{16, 16, 1})
	require.NoError(t, g.AddVertex(alloc))
	require.NoError(t, g.AddVertex(k))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e1", []string{"a1"}, []string{"k1"})))
	return g
}

func TestBuildManifestCoversSchedule(t *testing.T) {
	g := buildKernelGraph(t)
	sched := scheduler.NewCausalScheduler().Schedule(g)

	mgr := region.NewManager()
	mgr.DeclareRegion(&region.Region{ID: "heap", Name: "heap", Kind: region.Heap, MaxSize: 1 << 20, Alignment: 8})

	terms := []*proof.Term{proof.NewTerm(proof.BoundedResources, "bounded")}

	m, err := emit.BuildManifest(g, sched, mgr, terms)
	require.NoError(t, err)
	require.Len(t, m.Vertices, 2)
	require.Len(t, m.Edges, 1)
	require.Len(t, m.Regions, 1)
	require.Equal(t, "heap", m.Regions[0].ID)

	caps := m.CapsSection()
	require.Len(t, caps, 1)

	sirBytes, err := emit.SIRSection(g)
	require.NoError(t, err)
	require.NotEmpty(t, sirBytes)

	proofBytes, err := m.ProofSection()
	require.NoError(t, err)
	require.NotEmpty(t, proofBytes)
}

func TestBuildManifestRejectsPartialSchedule(t *testing.T) {
	g := buildKernelGraph(t)
	partial := scheduler.Result{Tasks: nil}

	_, err := emit.BuildManifest(g, partial, nil, nil)
	require.ErrorIs(t, err, emit.ErrNoSchedule)
}
