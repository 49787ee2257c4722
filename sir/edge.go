package sir

// EdgeType tags the variant of a SIR hyperedge.
type EdgeType int

const (
	DataFlow EdgeType = iota
	ControlFlow
	EffectEdgeType
	ParallelEdgeType
	MemoryEdgeType
	RegionEdgeType
)

func (t EdgeType) String() string {
	switch t {
	case DataFlow:
		return "DataFlow"
	case ControlFlow:
		return "ControlFlow"
	case EffectEdgeType:
		return "EffectEdge"
	case ParallelEdgeType:
		return "ParallelEdge"
	case MemoryEdgeType:
		return "MemoryEdge"
	case RegionEdgeType:
		return "RegionEdge"
	default:
		return "Unknown"
	}
}

// ParallelismKind names the flavor of parallelism a ParallelEdge declares.
type ParallelismKind int

const (
	SIMD ParallelismKind = iota
	SIMT
	ThreadLevel
	TaskLevel
	Pipeline
	Dataflow
)

// ControlFlowKind names the flavor of control transfer a ControlFlow
// edge represents.
type ControlFlowKind int

const (
	Sequential ControlFlowKind = iota
	BranchTaken
	LoopEntry
	LoopBack
	LoopExit
	Call
	ReturnFlow
	Exception
)

// MemoryAccessKind names the kind of access a MemoryEdge declares.
type MemoryAccessKind int

const (
	MemRead MemoryAccessKind = iota
	MemWrite
	MemAtomic
)

// RegionTransferKind names the kind of cross-region transfer a
// RegionEdge declares.
type RegionTransferKind int

const (
	TransferCopy RegionTransferKind = iota
	TransferMove
	TransferBorrow
)

// EdgeMetadata carries lightweight attributes shared by every edge
// variant.
type EdgeMetadata struct {
	Weight           float64
	EstimatedLatency float64
	BandwidthDemand  float64
	Affinity         HardwareAffinity
	CriticalPath     bool
}

// Edge is a typed hyperedge over two ordered vertex-identity lists.
// Variant-specific data lives in Attributes by convention (ordering
// mode for EffectEdge, parallelism kind for ParallelEdge, access kind
// and region name for MemoryEdge, transfer kind and region names for
// RegionEdge, port index for DataFlow, condition label for
// ControlFlow).
type Edge struct {
	ID         string
	Type       EdgeType
	Sources    []string
	Targets    []string
	Attributes map[string]interface{}
	Metadata   EdgeMetadata
}

func newEdge(id string, t EdgeType, sources, targets []string) *Edge {
	return &Edge{ID: id, Type: t, Sources: sources, Targets: targets, Attributes: map[string]interface{}{}}
}

// NewDataFlowEdge connects producer(s) to consumer(s).
func NewDataFlowEdge(id string, sources, targets []string) *Edge {
	return newEdge(id, DataFlow, sources, targets)
}

// NewControlFlowEdge connects control-flow predecessor(s) to successor(s).
func NewControlFlowEdge(id string, sources, targets []string, kind ControlFlowKind, condition string) *Edge {
	e := newEdge(id, ControlFlow, sources, targets)
	e.Attributes["kind"] = kind
	if condition != "" {
		e.Attributes["condition"] = condition
	}
	return e
}

// NewEffectEdge orders effectful vertices under the given mode
// ("seq", "par", "atomic").
func NewEffectEdge(id string, sources, targets []string, ordering string) *Edge {
	e := newEdge(id, EffectEdgeType, sources, targets)
	e.Attributes["ordering"] = ordering
	return e
}

// NewParallelEdge declares targets independently executable under kind.
func NewParallelEdge(id string, sources, targets []string, kind ParallelismKind, simdWidth, threadCount, warpSize int, hwTag HardwareAffinity) *Edge {
	e := newEdge(id, ParallelEdgeType, sources, targets)
	e.Attributes["kind"] = kind
	e.Attributes["simd_width"] = simdWidth
	e.Attributes["thread_count"] = threadCount
	e.Attributes["warp_size"] = warpSize
	e.Metadata.Affinity = hwTag
	return e
}

// NewMemoryEdge declares a memory access on a named region between
// two vertices.
func NewMemoryEdge(id, source, target, region string, kind MemoryAccessKind) *Edge {
	e := newEdge(id, MemoryEdgeType, []string{source}, []string{target})
	e.Attributes["region"] = region
	e.Attributes["kind"] = kind
	return e
}

// NewRegionEdge declares a cross-region transfer between two vertices.
func NewRegionEdge(id, source, target, fromRegion, toRegion string, kind RegionTransferKind) *Edge {
	e := newEdge(id, RegionEdgeType, []string{source}, []string{target})
	e.Attributes["from_region"] = fromRegion
	e.Attributes["to_region"] = toRegion
	e.Attributes["kind"] = kind
	return e
}

// Ordering returns the EffectEdge ordering attribute, or "" for other
// edge types (used by effect.EdgeView).
func (e *Edge) Ordering() string {
	if o, ok := e.Attributes["ordering"].(string); ok {
		return o
	}
	return ""
}

// Retarget returns a copy of e under a fresh identity with its
// Sources/Targets replaced wholesale, keeping Type, Attributes, and
// Metadata. Used by rewrite passes (fusion) that redirect an edge
// around a set of vertices being collapsed into one.
func (e *Edge) Retarget(newID string, sources, targets []string) *Edge {
	cp := *e
	cp.ID = newID
	cp.Sources = append([]string(nil), sources...)
	cp.Targets = append([]string(nil), targets...)
	cp.Attributes = make(map[string]interface{}, len(e.Attributes))
	for k, v := range e.Attributes {
		cp.Attributes[k] = v
	}
	return &cp
}

func (e *Edge) clone(newID string, remap map[string]string) *Edge {
	cp := *e
	cp.ID = newID
	cp.Sources = remapIDs(e.Sources, remap)
	cp.Targets = remapIDs(e.Targets, remap)
	cp.Attributes = make(map[string]interface{}, len(e.Attributes))
	for k, v := range e.Attributes {
		cp.Attributes[k] = v
	}
	return &cp
}

func remapIDs(ids []string, remap map[string]string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if n, ok := remap[id]; ok {
			out[i] = n
		} else {
			out[i] = id
		}
	}
	return out
}
