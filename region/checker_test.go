package region_test

import (
	"testing"

	"github.com/robertringler/aion/diag"
	"github.com/robertringler/aion/region"
	"github.com/robertringler/aion/sir"
	"github.com/stretchr/testify/require"
)

func TestBorrowCheckerDetectsUseAfterMove(t *testing.T) {
	g := sir.NewGraph()
	require.NoError(t, g.AddVertex(sir.NewApply("mover", "id")))
	require.NoError(t, g.AddVertex(sir.NewApply("moved_to", "noop")))
	require.NoError(t, g.AddVertex(sir.NewApply("used_later", "use")))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e1", []string{"mover"}, []string{"moved_to"})))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e2", []string{"mover"}, []string{"used_later"})))

	m := region.NewManager()
	m.DeclareRegion(&region.Region{ID: "heap", Kind: region.Heap, Lifetime: region.StaticLifetime})
	alloc, err := m.Allocate("heap", 8, 1, "mover")
	require.NoError(t, err)
	_, err = m.BorrowBlock(alloc.BlockID, region.Immutable, "used_later", region.StaticLifetime)
	require.NoError(t, err)
	_, err = m.TransferOwnership(alloc.BlockID, "mover", "moved_to", region.Move)
	require.NoError(t, err)

	violations := region.NewBorrowChecker().Run(g, m)
	require.Len(t, violations, 1)
	require.Equal(t, []string{"used_later"}, violations[0].VertexIDs)
}

func TestBorrowCheckerAllowsMoveTargetOnly(t *testing.T) {
	g := sir.NewGraph()
	require.NoError(t, g.AddVertex(sir.NewApply("mover", "id")))
	require.NoError(t, g.AddVertex(sir.NewApply("moved_to", "noop")))
	require.NoError(t, g.AddEdge(sir.NewDataFlowEdge("e1", []string{"mover"}, []string{"moved_to"})))

	m := region.NewManager()
	m.DeclareRegion(&region.Region{ID: "heap", Kind: region.Heap, Lifetime: region.StaticLifetime})
	alloc, err := m.Allocate("heap", 8, 1, "mover")
	require.NoError(t, err)
	_, err = m.TransferOwnership(alloc.BlockID, "mover", "moved_to", region.Move)
	require.NoError(t, err)

	violations := region.NewBorrowChecker().Run(g, m)
	require.Empty(t, violations)
}

func TestBorrowCheckerFlagsConcurrentMutableBorrows(t *testing.T) {
	g := sir.NewGraph()
	m := region.NewManager()
	m.DeclareRegion(&region.Region{ID: "heap", Kind: region.Heap, Lifetime: region.StaticLifetime})
	alloc, err := m.Allocate("heap", 8, 1, "v1")
	require.NoError(t, err)

	_, err = m.BorrowBlock(alloc.BlockID, region.Mutable, "v2", region.StaticLifetime)
	require.NoError(t, err)

	violations := region.NewBorrowChecker().Run(g, m)
	require.Empty(t, violations, "a single mutable borrow is not itself a violation")

	block := m.Block(alloc.BlockID)
	block.Borrows = append(block.Borrows, &region.Borrow{ID: "extra", BlockID: block.ID, Kind: region.Exclusive, Borrower: "v3"})

	violations = region.NewBorrowChecker().Run(g, m)
	require.NotEmpty(t, violations)
	require.Equal(t, diag.BorrowViolation, violations[0].Kind)
}
