package proof_test

import (
	"testing"

	"github.com/robertringler/aion/effect"
	"github.com/robertringler/aion/proof"
	"github.com/robertringler/aion/region"
	"github.com/robertringler/aion/sir"
	"github.com/stretchr/testify/require"
)

func buildSafeGraph(t *testing.T) *sir.Graph {
	t.Helper()
	b := sir.NewBuilder("safe")
	b.Alloc(64)
	alloc := b.Current()
	b.Load(alloc)
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestSynthesizeMemorySafetyAcceptsWellOrderedUse(t *testing.T) {
	g := buildSafeGraph(t)
	s := proof.NewSynthesizer()
	term, err := s.SynthesizeMemorySafety(g, nil)
	require.NoError(t, err)
	require.Equal(t, proof.MemorySafety, term.Kind)

	v := proof.NewVerifier()
	require.True(t, v.Verify(term))
}

func TestSynthesizeMemorySafetyRejectsUseOfFreedBlock(t *testing.T) {
	b := sir.NewBuilder("freed")
	b.Alloc(64)
	allocVertex := b.Current()
	b.Load(allocVertex)
	g, err := b.Build()
	require.NoError(t, err)

	mgr := region.NewManager()
	mgr.DeclareRegion(&region.Region{ID: "heap", Kind: region.Heap, Lifetime: region.StaticLifetime})
	alloc, err := mgr.Allocate("heap", 64, 1, allocVertex)
	require.NoError(t, err)
	require.NoError(t, mgr.Free(alloc.ID, "freer"))

	s := proof.NewSynthesizer()
	_, err = s.SynthesizeMemorySafety(g, mgr.FreedAllocationVertices())
	require.Error(t, err)
	require.NotEmpty(t, s.Errors)
}

func buildDeadlockGraph(t *testing.T) *sir.Graph {
	t.Helper()
	g := sir.NewGraph()

	a := sir.NewApply("sync_a", "f")
	a.Metadata.Effects = []effect.Effect{effect.ThreadJoin}
	bv := sir.NewApply("sync_b", "g")
	bv.Metadata.Effects = []effect.Effect{effect.ThreadJoin}

	require.NoError(t, g.AddVertex(a))
	require.NoError(t, g.AddVertex(bv))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e1", []string{"sync_a"}, []string{"sync_b"})))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e2", []string{"sync_b"}, []string{"sync_a"})))
	return g
}

func TestSynthesizeDeadlockFreedomRejectsCycle(t *testing.T) {
	g := buildDeadlockGraph(t)
	s := proof.NewSynthesizer()
	_, err := s.SynthesizeDeadlockFreedom(g)
	require.Error(t, err)
	require.NotEmpty(t, s.Errors)
}

func TestSynthesizeDeadlockFreedomAcceptsAcyclic(t *testing.T) {
	g := buildSafeGraph(t)
	s := proof.NewSynthesizer()
	term, err := s.SynthesizeDeadlockFreedom(g)
	require.NoError(t, err)
	require.Equal(t, proof.DeadlockFreedom, term.Kind)
}

func TestSynthesizeBoundedResourcesRejectsUnboundedAlloc(t *testing.T) {
	g := sir.NewGraph()
	v := sir.NewAlloc("alloc1", 0)
	v.Value = "unknown size"
	require.NoError(t, g.AddVertex(v))

	s := proof.NewSynthesizer()
	_, err := s.SynthesizeBoundedResources(g)
	require.Error(t, err)
}

func TestCapabilityBitmapOnlySetsVerifiedBits(t *testing.T) {
	g := buildSafeGraph(t)
	s := proof.NewSynthesizer()
	mem, err := s.SynthesizeMemorySafety(g, nil)
	require.NoError(t, err)

	bogus := proof.NewTerm(proof.RaceFreedom, "race_free(program)")
	bogus.Evidence["has_races"] = true

	bitmap := proof.GenerateCapabilityBitmap([]*proof.Term{mem, bogus})
	require.NotZero(t, bitmap&(1<<uint(proof.MemorySafety)))
	require.Zero(t, bitmap&(1<<uint(proof.RaceFreedom)))
}

func TestDictRoundTrip(t *testing.T) {
	term := proof.NewTerm(proof.TypeSoundness, "well_typed(program)", "axiom1")
	d := term.ToDict()
	back, err := proof.FromDict(d)
	require.NoError(t, err)
	require.Equal(t, term.Kind, back.Kind)
	require.Equal(t, term.Conclusion, back.Conclusion)
}

func TestRewritePreservesMemorySafetyRejectsNewUnaccountedAlloc(t *testing.T) {
	oldGraph := sir.NewGraph()
	newGraph := sir.NewGraph()
	require.NoError(t, newGraph.AddVertex(sir.NewAlloc("extra", 8)))

	require.False(t, proof.RewritePreserves(oldGraph, newGraph, proof.MemorySafety))
}
