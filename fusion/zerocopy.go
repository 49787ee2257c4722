package fusion

import "github.com/robertringler/aion/sir"

// FuseWithZeroCopy runs the zero-copy pass of §4.6 over a clone of g:
// every Apply vertex whose callee name contains "memcpy" or "copy" and
// whose first data-flow predecessor and first data-flow successor share
// a region is bypassed — every predecessor wired directly to every
// successor — and the transfer vertex removed. Only that first pair's
// regions are compared; the other predecessors and successors are not
// checked. This is the core's cross-language transfer
// eliminator generalized to any region-tagged vertex pair, not only
// the host/device boundary.
func FuseWithZeroCopy(g *sir.Graph) *sir.Graph {
	optimized := g.Clone()

	for _, v := range optimized.Vertices() {
		if v.VType != sir.Apply || !isMemcpyLike(v) {
			continue
		}
		preds := optimized.Predecessors(v.ID)
		succs := optimized.Successors(v.ID)
		if len(preds) == 0 || len(succs) == 0 {
			continue
		}
		if preds[0].Metadata.Region != succs[0].Metadata.Region {
			continue
		}

		for _, p := range preds {
			for _, s := range succs {
				edgeID := "zc_" + p.ID + "_" + s.ID
				_ = optimized.AddEdge(sir.NewDataFlowEdge(edgeID, []string{p.ID}, []string{s.ID}))
			}
		}
		_ = optimized.RemoveVertex(v.ID)
	}

	return optimized
}
