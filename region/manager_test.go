package region_test

import (
	"testing"

	"github.com/robertringler/aion/region"
	"github.com/robertringler/aion/sir"
	"github.com/stretchr/testify/require"
)

func TestAllocateRespectsMaxSize(t *testing.T) {
	m := region.NewManager()
	m.DeclareRegion(&region.Region{ID: "heap", Kind: region.Heap, MaxSize: 16, Alignment: 1, Lifetime: region.StaticLifetime})

	_, err := m.Allocate("heap", 10, 1, "v1")
	require.NoError(t, err)

	_, err = m.Allocate("heap", 10, 1, "v2")
	require.ErrorIs(t, err, region.ErrOutOfRegion)
}

func TestDoubleFreeRejected(t *testing.T) {
	m := region.NewManager()
	m.DeclareRegion(&region.Region{ID: "heap", Kind: region.Heap, Lifetime: region.StaticLifetime})
	alloc, err := m.Allocate("heap", 8, 1, "v1")
	require.NoError(t, err)

	require.NoError(t, m.Free(alloc.ID, "freer"))
	require.ErrorIs(t, m.Free(alloc.ID, "freer"), region.ErrDoubleFree)
}

func TestFreeWhileBorrowedRejected(t *testing.T) {
	m := region.NewManager()
	m.DeclareRegion(&region.Region{ID: "heap", Kind: region.Heap, Lifetime: region.StaticLifetime})
	alloc, err := m.Allocate("heap", 8, 1, "v1")
	require.NoError(t, err)

	_, err = m.BorrowBlock(alloc.BlockID, region.Immutable, "v2", region.StaticLifetime)
	require.NoError(t, err)

	require.ErrorIs(t, m.Free(alloc.ID, "freer"), region.ErrBorrowedAtFree)
}

func TestMutualExclusivityOfBorrows(t *testing.T) {
	m := region.NewManager()
	m.DeclareRegion(&region.Region{ID: "heap", Kind: region.Heap, Lifetime: region.StaticLifetime})
	alloc, err := m.Allocate("heap", 8, 1, "v1")
	require.NoError(t, err)

	_, err = m.BorrowBlock(alloc.BlockID, region.Mutable, "v2", region.StaticLifetime)
	require.NoError(t, err)

	_, err = m.BorrowBlock(alloc.BlockID, region.Immutable, "v3", region.StaticLifetime)
	require.ErrorIs(t, err, region.ErrConflictingBorrow)
}

func TestMoveRequiresOwnership(t *testing.T) {
	m := region.NewManager()
	m.DeclareRegion(&region.Region{ID: "heap", Kind: region.Heap, Lifetime: region.StaticLifetime})
	alloc, err := m.Allocate("heap", 8, 1, "v1")
	require.NoError(t, err)

	_, err = m.TransferOwnership(alloc.BlockID, "not-the-owner", "v2", region.Move)
	require.ErrorIs(t, err, region.ErrNotOwner)

	_, err = m.TransferOwnership(alloc.BlockID, "v1", "v2", region.Move)
	require.NoError(t, err)
}

func TestCheckSafetyDetectsReferenceAfterFree(t *testing.T) {
	g := sir.NewGraph()
	require.NoError(t, g.AddVertex(sir.NewApply("v1", "alloc")))
	require.NoError(t, g.AddVertex(sir.NewApply("freer", "free")))
	require.NoError(t, g.AddVertex(sir.NewApply("vuse", "use")))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e1", []string{"v1"}, []string{"freer"})))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e2", []string{"freer"}, []string{"vuse"})))

	m := region.NewManager()
	m.DeclareRegion(&region.Region{ID: "heap", Kind: region.Heap, Lifetime: region.StaticLifetime})
	alloc, err := m.Allocate("heap", 8, 1, "v1")
	require.NoError(t, err)
	_, err = m.TransferOwnership(alloc.BlockID, "v1", "vuse", region.CloneTransfer)
	require.NoError(t, err)
	require.NoError(t, m.Free(alloc.ID, "freer"))

	violations := m.CheckSafety(g)
	require.Len(t, violations, 1)
	require.Equal(t, []string{"vuse"}, violations[0].VertexIDs)
}

func TestCheckSafetyAllowsReferenceBeforeFree(t *testing.T) {
	g := sir.NewGraph()
	require.NoError(t, g.AddVertex(sir.NewApply("v1", "alloc")))
	require.NoError(t, g.AddVertex(sir.NewApply("vuse", "use")))
	require.NoError(t, g.AddVertex(sir.NewApply("freer", "free")))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e1", []string{"v1"}, []string{"vuse"})))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e2", []string{"vuse"}, []string{"freer"})))

	m := region.NewManager()
	m.DeclareRegion(&region.Region{ID: "heap", Kind: region.Heap, Lifetime: region.StaticLifetime})
	alloc, err := m.Allocate("heap", 8, 1, "v1")
	require.NoError(t, err)
	_, err = m.TransferOwnership(alloc.BlockID, "v1", "vuse", region.CloneTransfer)
	require.NoError(t, err)
	require.NoError(t, m.Free(alloc.ID, "freer"))

	violations := m.CheckSafety(g)
	require.Empty(t, violations)
}

func TestCrossRegionTransferValidity(t *testing.T) {
	host := &region.Region{ID: "heap", Kind: region.Heap}
	gpuA := &region.Region{ID: "gpuA", Kind: region.GpuGlobal}
	gpuB := &region.Region{ID: "gpuB", Kind: region.GpuGlobal}
	fpga := &region.Region{ID: "fpga", Kind: region.FpgaBram}

	require.True(t, host.CanTransferTo(gpuA))
	require.True(t, gpuA.CanTransferTo(gpuB))
	require.False(t, gpuA.CanTransferTo(fpga))
}
