package emit

import (
	"github.com/robertringler/aion/proof"
	"github.com/robertringler/aion/region"
	"github.com/robertringler/aion/scheduler"
	"github.com/robertringler/aion/sir"
)

// VertexManifest is the backend-facing view of one scheduled vertex:
// type, effects, region, hardware affinity, parallelism, and
// provenance (§4.8), plus the device it was scheduled onto.
type VertexManifest struct {
	ID          string               `json:"id"`
	Type        string               `json:"type"`
	Effects     []string             `json:"effects"`
	Region      string               `json:"region,omitempty"`
	Affinity    string               `json:"hardware_affinity"`
	Parallelism sir.ParallelismHints `json:"parallelism"`
	Provenance  sir.Provenance       `json:"provenance"`
	Device      string               `json:"device,omitempty"`
	StartTime   float64              `json:"start_time"`
	EndTime     float64              `json:"end_time"`
}

// EdgeManifest is the backend-facing view of one hyperedge.
type EdgeManifest struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Sources    []string               `json:"sources"`
	Targets    []string               `json:"targets"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// RegionSummary lists one declared region's storage shape.
type RegionSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Kind      string `json:"kind"`
	SizeBytes int64  `json:"size_bytes"`
	Alignment int    `json:"alignment"`
}

// Manifest is the complete backend emit contract (§4.8): scheduled
// vertices and edges, a region summary, the `.aion_caps` capability
// byte, and the `.aion_proof` envelope — everything an LLVM/WASM
// emitter needs without depending on sir, region, proof, or scheduler
// directly.
type Manifest struct {
	Vertices       []VertexManifest `json:"vertices"`
	Edges          []EdgeManifest   `json:"edges"`
	Regions        []RegionSummary  `json:"regions"`
	CapabilityByte byte             `json:"capability_byte"`
	ProofEnvelope  proof.Envelope   `json:"proof_envelope"`
}

var regionKindNames = [...]string{
	"stack", "heap", "thread-local", "gpu-global", "gpu-shared",
	"fpga-bram", "fpga-lut", "static", "wasm-linear", "jvm-heap",
}

func regionKindName(k region.Kind) string {
	if int(k) < 0 || int(k) >= len(regionKindNames) {
		return "unknown"
	}
	return regionKindNames[k]
}

// BuildManifest assembles the backend emit contract for g, scheduled
// by sched with the given region manager and proof terms. The
// vertices are enumerated in the schedule's task order — the order a
// backend should emit them in — rather than g's own topological order,
// since the schedule may have reordered independent vertices across
// devices. ErrNoSchedule is returned when sched's task set does not
// cover every vertex of g.
func BuildManifest(g *sir.Graph, sched scheduler.Result, mgr *region.Manager, terms []*proof.Term) (*Manifest, error) {
	allVertices := g.Vertices()
	if len(sched.Tasks) < len(allVertices) {
		return nil, ErrNoSchedule
	}

	byID := make(map[string]*sir.Vertex, len(allVertices))
	for _, v := range allVertices {
		byID[v.ID] = v
	}

	m := &Manifest{}
	for _, t := range sched.Tasks {
		v, ok := byID[t.VertexID]
		if !ok {
			return nil, ErrNoSchedule
		}
		effects := make([]string, len(v.Metadata.Effects))
		for i, e := range v.Metadata.Effects {
			effects[i] = e.String()
		}
		var device string
		if t.AssignedDevice != nil {
			device = t.AssignedDevice.ID
		}
		m.Vertices = append(m.Vertices, VertexManifest{
			ID: v.ID, Type: v.VType.String(), Effects: effects,
			Region: v.Metadata.Region, Affinity: v.Metadata.Affinity.String(),
			Parallelism: v.Metadata.Parallelism, Provenance: v.Metadata.Provenance,
			Device: device, StartTime: t.StartTime, EndTime: t.EndTime,
		})
	}

	for _, e := range g.Edges() {
		m.Edges = append(m.Edges, EdgeManifest{
			ID: e.ID, Type: e.Type.String(), Sources: e.Sources, Targets: e.Targets,
			Attributes: e.Attributes,
		})
	}

	if mgr != nil {
		for _, r := range mgr.Regions() {
			m.Regions = append(m.Regions, RegionSummary{
				ID: r.ID, Name: r.Name, Kind: regionKindName(r.Kind),
				SizeBytes: r.MaxSize, Alignment: r.Alignment,
			})
		}
	}

	m.CapabilityByte = proof.GenerateCapabilityBitmap(terms)
	dicts := make([]proof.Dict, len(terms))
	for i, t := range terms {
		dicts[i] = t.ToDict()
	}
	m.ProofEnvelope = proof.Envelope{Version: "1.0", Proofs: dicts}
	return m, nil
}
