package region

import (
	"github.com/robertringler/aion/diag"
	"github.com/robertringler/aion/sir"
)

// BorrowChecker is a distinct pass over a graph and its Manager:
// it verifies borrow compatibility (testable property 6: at most one
// mutable borrow per block, no immutable borrow coexisting with a
// mutable one) and that moved blocks are not subsequently used. It
// does not check lifetimes. It never mutates the Manager; it only
// reports violations.
type BorrowChecker struct{}

// NewBorrowChecker returns a ready-to-use BorrowChecker.
func NewBorrowChecker() *BorrowChecker { return &BorrowChecker{} }

// Run checks every block's live borrows and, for every move recorded
// in m's transfer log, that no other vertex recorded against the moved
// block sits after the move's source vertex in g's topological order.
func (bc *BorrowChecker) Run(g *sir.Graph, m *Manager) []diag.Violation {
	var violations []diag.Violation
	violations = append(violations, bc.checkExclusivity(m)...)
	violations = append(violations, bc.checkMovedNotUsed(g, m)...)
	return violations
}

func (bc *BorrowChecker) checkExclusivity(m *Manager) []diag.Violation {
	var out []diag.Violation
	for _, b := range m.blocks {
		mutableCount := 0
		immutableCount := 0
		for _, borrow := range b.Borrows {
			if borrow.Kind == Mutable || borrow.Kind == Exclusive {
				mutableCount++
			} else {
				immutableCount++
			}
		}
		if mutableCount > 1 {
			out = append(out, diag.New(diag.BorrowViolation, "block %s has %d concurrent mutable borrows", b.ID, mutableCount))
		}
		if mutableCount >= 1 && immutableCount > 0 {
			out = append(out, diag.New(diag.BorrowViolation, "block %s has a mutable borrow coexisting with %d immutable borrows", b.ID, immutableCount))
		}
	}
	return out
}

// checkMovedNotUsed flags a vertex recorded against a block (as its
// allocator, a transfer party, or a borrower) that occurs, in g's
// topological order, after that block moved away from it — not merely
// any data-flow successor, which by construction sits later than its
// predecessor regardless of whether it touches the moved block at all.
func (bc *BorrowChecker) checkMovedNotUsed(g *sir.Graph, m *Manager) []diag.Violation {
	var out []diag.Violation
	order, _ := g.TopologicalOrder()
	indexOf := make(map[string]int, len(order))
	for i, v := range order {
		indexOf[v.ID] = i
	}

	for _, t := range m.transfers {
		if t.Kind != Move {
			continue
		}
		moveIdx, ok := indexOf[t.From]
		if !ok {
			continue
		}
		allocID, ok := m.blockToAlloc[t.BlockID]
		if !ok {
			continue
		}
		alloc := m.allocations[allocID]
		if alloc == nil {
			continue
		}
		for _, ref := range alloc.ReferencedBy {
			if ref == t.From || ref == t.To {
				continue
			}
			if idx, ok := indexOf[ref]; ok && idx > moveIdx {
				out = append(out, diag.New(diag.BorrowViolation, "vertex %s used after moving block %s", ref, t.BlockID).WithVertices(ref))
			}
		}
	}
	return out
}
