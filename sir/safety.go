package sir

import "github.com/robertringler/aion/diag"

// VerifyMemorySafety is a fast structural check, not a replacement for
// the region/borrow model's full safety pass: every Load must have at
// least one Alloc/Parameter predecessor, and no vertex may be used as
// the source of any edge after being the source of a move RegionEdge.
func (g *Graph) VerifyMemorySafety() []diag.Violation {
	var violations []diag.Violation

	for _, v := range g.Vertices() {
		if v.VType != Load {
			continue
		}
		ok := false
		for _, p := range g.Predecessors(v.ID) {
			if p.VType == Alloc || p.VType == Parameter {
				ok = true
				break
			}
		}
		if !ok {
			violations = append(violations, diag.New(diag.MemorySafetyViolation, "load %s has no Alloc/Parameter predecessor", v.ID).WithVertices(v.ID))
		}
	}

	order, _ := g.TopologicalOrder()
	indexOf := make(map[string]int, len(order))
	for i, v := range order {
		indexOf[v.ID] = i
	}

	// movedAt[src] is the topological index of the earliest move
	// target src's ownership was transferred to; any edge sourced at
	// src whose target sits strictly later than that index is a use of
	// src after it gave up ownership.
	movedAt := map[string]int{}
	for _, e := range g.RegionEdges() {
		kind, _ := e.Attributes["kind"].(RegionTransferKind)
		if kind != TransferMove {
			continue
		}
		for _, src := range e.Sources {
			for _, dst := range e.Targets {
				dstIdx, ok := indexOf[dst]
				if !ok {
					continue
				}
				if cur, seen := movedAt[src]; !seen || dstIdx < cur {
					movedAt[src] = dstIdx
				}
			}
		}
	}

	for _, v := range order {
		moveIdx, wasMoved := movedAt[v.ID]
		if !wasMoved {
			continue
		}
		for _, e := range g.Edges() {
			if !containsStr(e.Sources, v.ID) {
				continue
			}
			usedLater := false
			for _, dst := range e.Targets {
				if dstIdx, ok := indexOf[dst]; ok && dstIdx > moveIdx {
					usedLater = true
					break
				}
			}
			if usedLater {
				violations = append(violations, diag.New(diag.MemorySafetyViolation, "vertex %s used as edge source after being moved", v.ID).WithVertices(v.ID))
				break
			}
		}
	}
	return violations
}
