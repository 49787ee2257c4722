package fusion

import (
	"github.com/robertringler/aion/effect"
	"github.com/robertringler/aion/sir"
)

// Kind enumerates the fusion pattern catalog of §4.6. PolyglotPipeline
// is kept as a single kind covering every cross-language chain
// (host→native, native→GPU, host→native→GPU, ...), rather than
// splitting by source-language pair: spec.md describes one unified
// pattern, not the three-way split the evidence format's origin used.
type Kind int

const (
	PolyglotPipeline Kind = iota
	KernelFusion
	MemoryCoalescing
	CpuDeviceTransferElimination
	LoopFusion
	DataflowFusion
	PipelineFusion
)

var kindNames = [...]string{
	"PolyglotPipeline", "KernelFusion", "MemoryCoalescing",
	"CpuDeviceTransferElimination", "LoopFusion", "DataflowFusion", "PipelineFusion",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// baseSpeedup gives each kind's heuristic per-pattern constant (§4.6
// step 5); detectors may scale it by pattern size.
var baseSpeedup = map[Kind]float64{
	PolyglotPipeline:             3.0,
	KernelFusion:                 2.0,
	MemoryCoalescing:             1.4,
	CpuDeviceTransferElimination: 1.3,
	LoopFusion:                   1.25,
	DataflowFusion:               2.0,
	PipelineFusion:               1.3,
}

// Pattern is a detected fusion opportunity: the constituent vertex
// identities, the kind, the estimated speedup, and the hardware target
// the fused vertex should carry.
type Pattern struct {
	Kind             Kind
	VertexIDs        []string
	EstimatedSpeedup float64
	HardwareTarget   sir.HardwareAffinity
}

// CanFuse is the legality predicate of §4.6: the union of effects may
// have at most one distinct non-empty write region.
func (p Pattern) CanFuse(g *sir.Graph) bool {
	writeRegions := map[string]bool{}
	for _, id := range p.VertexIDs {
		v := g.GetVertexByID(id)
		if v == nil {
			continue
		}
		if hasWrite(v.Metadata.Effects) && v.Metadata.Region != "" {
			writeRegions[v.Metadata.Region] = true
		}
	}
	return len(writeRegions) <= 1
}

func hasWrite(effects []effect.Effect) bool {
	for _, e := range effects {
		if e == effect.Write {
			return true
		}
	}
	return false
}
