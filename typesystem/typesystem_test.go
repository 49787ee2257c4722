package typesystem_test

import (
	"testing"

	"github.com/robertringler/aion/region"
	"github.com/robertringler/aion/sir"
	"github.com/robertringler/aion/typesystem"
	"github.com/stretchr/testify/require"
)

func TestSubtypeIntByWidth(t *testing.T) {
	require.True(t, typesystem.Subtype(typesystem.I32, typesystem.I64))
	require.False(t, typesystem.Subtype(typesystem.I64, typesystem.I32))
}

func TestSubtypePointerSameRegion(t *testing.T) {
	p32 := typesystem.Ptr(typesystem.I32, "heap")
	p64 := typesystem.Ptr(typesystem.I64, "heap")
	require.True(t, typesystem.Subtype(p32, p64))

	other := typesystem.Ptr(typesystem.I64, "gpu_global")
	require.False(t, typesystem.Subtype(p32, other))
}

func TestUnifyEqualReturnsSame(t *testing.T) {
	require.True(t, typesystem.Unify(typesystem.I64, typesystem.I64).Equal(typesystem.I64))
}

func TestUnifyIncompatibleReturnsNil(t *testing.T) {
	require.Nil(t, typesystem.Unify(typesystem.Bool, typesystem.I64))
}

func TestLinearContextDoubleConsume(t *testing.T) {
	lc := typesystem.NewLinearContext().AddResource("r1", true)
	lc2, err := lc.Consume("r1")
	require.NoError(t, err)
	require.Empty(t, lc2.CheckAllConsumed())

	_, err = lc2.Consume("r1")
	require.ErrorIs(t, err, typesystem.ErrDoubleConsume)
}

func TestLinearContextUnconsumedReported(t *testing.T) {
	lc := typesystem.NewLinearContext().AddResource("r1", true)
	require.Equal(t, []string{"r1"}, lc.CheckAllConsumed())
}

func TestTypeEqualHashConsistency(t *testing.T) {
	a := typesystem.Refinement(typesystem.I64, "x > 0")
	b := typesystem.Refinement(typesystem.I64, "x > 0")
	c := typesystem.Refinement(typesystem.I64, "x < 0")
	require.True(t, a.Equal(b))
	require.Equal(t, a.Key(), b.Key())
	require.False(t, a.Equal(c))
}

func TestCheckSafetyNilManagerSkipsRegionPasses(t *testing.T) {
	g := sir.NewGraph()
	require.NoError(t, g.AddVertex(sir.NewAlloc("alloc", 8).WithRegion("heap")))
	require.NoError(t, g.AddVertex(sir.NewLoad("load")))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e1", []string{"alloc"}, []string{"load"})))

	c := typesystem.NewChecker()
	violations := c.CheckSafety(g, nil)
	require.Empty(t, violations)
}

func TestCheckSafetyWiresRegionManager(t *testing.T) {
	g := sir.NewGraph()
	require.NoError(t, g.AddVertex(sir.NewApply("v1", "alloc")))
	require.NoError(t, g.AddVertex(sir.NewApply("freer", "free")))
	require.NoError(t, g.AddVertex(sir.NewApply("vuse", "use")))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e1", []string{"v1"}, []string{"freer"})))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e2", []string{"freer"}, []string{"vuse"})))

	mgr := region.NewManager()
	mgr.DeclareRegion(&region.Region{ID: "heap", Kind: region.Heap, Lifetime: region.StaticLifetime})
	alloc, err := mgr.Allocate("heap", 8, 1, "v1")
	require.NoError(t, err)
	_, err = mgr.TransferOwnership(alloc.BlockID, "v1", "vuse", region.CloneTransfer)
	require.NoError(t, err)
	require.NoError(t, mgr.Free(alloc.ID, "freer"))

	c := typesystem.NewChecker()
	violations := c.CheckSafety(g, mgr)
	require.NotEmpty(t, violations)
}
