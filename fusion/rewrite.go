package fusion

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/robertringler/aion/effect"
	"github.com/robertringler/aion/proof"
	"github.com/robertringler/aion/sir"
)

// Result is the outcome of Optimize: the rewritten graph, the fused
// and removed vertices for inspection, the proofs adapted through the
// rewrite tactic, and the cumulative speedup estimate.
type Result struct {
	Graph            *sir.Graph
	FusedVertexIDs   []string
	RemovedVertexIDs []string
	Proofs           []*proof.Term
	SpeedupEstimate  float64
}

// Optimize clones g (Clone mints fresh vertex/edge identities, so
// detection must run against the same identities the rewrite will
// mutate), detects every pattern once against the clone, then applies
// each legal one in priority order, re-deriving proofs through
// proof.SynthesizeForRewrite after every successful rewrite. Running
// Optimize again on its own output is a no-op once no new pattern is
// detected (testable property 9, fusion idempotence).
func Optimize(g *sir.Graph, proofs []*proof.Term) Result {
	optimized := g.Clone()
	originalForProofs := optimized.Clone()
	patterns := Detect(optimized)
	if len(patterns) == 0 {
		return Result{Graph: optimized, Proofs: proofs, SpeedupEstimate: 1.0}
	}

	var fusedIDs, removedIDs []string
	speedup := 1.0
	currentProofs := proofs

	for _, p := range patterns {
		if !p.CanFuse(optimized) {
			continue
		}
		fused, removed, ok := fuseOne(optimized, p)
		if !ok {
			continue
		}
		fusedIDs = append(fusedIDs, fused)
		removedIDs = append(removedIDs, removed...)
		speedup *= p.EstimatedSpeedup

		if currentProofs != nil {
			currentProofs = proof.SynthesizeForRewrite(originalForProofs, optimized, currentProofs)
		}
	}

	return Result{Graph: optimized, FusedVertexIDs: fusedIDs, RemovedVertexIDs: removedIDs, Proofs: currentProofs, SpeedupEstimate: speedup}
}

// fuseOne constructs the fused vertex for p's kind, rewires every edge
// crossing the constituent boundary onto it, and removes the
// constituents. Returns the fused vertex id, the removed ids, and
// whether the rewrite happened (false when the pattern's vertices are
// no longer all present, e.g. a prior pattern already consumed one).
func fuseOne(g *sir.Graph, p Pattern) (string, []string, bool) {
	for _, id := range p.VertexIDs {
		if !g.HasVertex(id) {
			return "", nil, false
		}
	}

	fused := buildFusedVertex(g, p)
	if fused == nil {
		return "", nil, false
	}
	if err := g.AddVertex(fused); err != nil {
		return "", nil, false
	}

	rewire(g, p.VertexIDs, fused.ID)

	for _, id := range p.VertexIDs {
		_ = g.RemoveVertex(id)
	}
	return fused.ID, p.VertexIDs, true
}

func buildFusedVertex(g *sir.Graph, p Pattern) *sir.Vertex {
	id := "fused_" + uuid.NewString()
	effects := unionEffects(g, p.VertexIDs)
	provenance := sir.Provenance{SourceLanguage: "fused"}.WithTransformation(fmt.Sprintf("%s_fusion", lowerKind(p.Kind)))

	switch p.Kind {
	case KernelFusion:
		grid, block := maxParallelism(g, p.VertexIDs)
		v := sir.NewKernelLaunch(id, grid, block)
		v.Metadata.Affinity = p.HardwareTarget
		v.Metadata.Effects = effects
		v.Metadata.Provenance = provenance
		return v
	case MemoryCoalescing:
		v := sir.NewApply(id, "coalesced_load")
		v.Metadata.Effects = []effect.Effect{effect.Read}
		v.Metadata.Provenance = provenance
		return v
	default:
		v := sir.NewApply(id, fusedName(p.Kind))
		v.Metadata.Effects = effects
		v.Metadata.Affinity = p.HardwareTarget
		v.Metadata.Provenance = provenance
		return v
	}
}

func fusedName(k Kind) string {
	switch k {
	case PolyglotPipeline:
		return "fused_polyglot_kernel"
	case CpuDeviceTransferElimination:
		return "fused_transfer"
	case DataflowFusion:
		return "fused_dataflow"
	case LoopFusion:
		return "fused_loop"
	case PipelineFusion:
		return "fused_pipeline"
	default:
		return "fused_kernel"
	}
}

func lowerKind(k Kind) string {
	return toLower(k.String())
}

func unionEffects(g *sir.Graph, ids []string) []effect.Effect {
	seen := map[effect.Effect]bool{}
	var out []effect.Effect
	for _, id := range ids {
		v := g.GetVertexByID(id)
		if v == nil {
			continue
		}
		for _, e := range v.Metadata.Effects {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}

func maxParallelism(g *sir.Graph, ids []string) (grid, block [3]int) {
	grid, block = [3]int{1, 1, 1}, [3]int{1, 1, 1}
	for _, id := range ids {
		v := g.GetVertexByID(id)
		if v == nil {
			continue
		}
		for i := 0; i < 3; i++ {
			if v.Metadata.Parallelism.Grid[i] > grid[i] {
				grid[i] = v.Metadata.Parallelism.Grid[i]
			}
			if v.Metadata.Parallelism.Block[i] > block[i] {
				block[i] = v.Metadata.Parallelism.Block[i]
			}
		}
	}
	return grid, block
}

// rewire redirects every edge touching a constituent vertex around
// fusedID: edges entirely internal to the constituent set are dropped
// (they vanish with the fusion), edges crossing the boundary have
// their constituent-side endpoints replaced by fusedID and are
// re-added under a fresh identity.
func rewire(g *sir.Graph, constituents []string, fusedID string) {
	inSet := make(map[string]bool, len(constituents))
	for _, id := range constituents {
		inSet[id] = true
	}

	for _, e := range g.Edges() {
		touches := false
		for _, id := range append(append([]string{}, e.Sources...), e.Targets...) {
			if inSet[id] {
				touches = true
				break
			}
		}
		if !touches {
			continue
		}
		if allIn(e.Sources, inSet) && allIn(e.Targets, inSet) {
			continue // interior edge, absorbed by the fused vertex
		}

		newSources := remap(e.Sources, inSet, fusedID)
		newTargets := remap(e.Targets, inSet, fusedID)
		replacement := e.Retarget(fmt.Sprintf("%s_rw_%s", e.ID, uuid.NewString()), newSources, newTargets)
		_ = g.AddEdge(replacement)
	}
}

func allIn(ids []string, set map[string]bool) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !set[id] {
			return false
		}
	}
	return true
}

func remap(ids []string, set map[string]bool, fusedID string) []string {
	out := make([]string, 0, len(ids))
	seenFused := false
	for _, id := range ids {
		if set[id] {
			if !seenFused {
				out = append(out, fusedID)
				seenFused = true
			}
			continue
		}
		out = append(out, id)
	}
	return out
}
