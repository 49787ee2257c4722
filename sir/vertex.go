package sir

import "github.com/robertringler/aion/effect"

// VertexType tags the variant of a SIR vertex.
type VertexType int

const (
	Const VertexType = iota
	Alloc
	Load
	Store
	Apply
	Phi
	Parameter
	Return
	Branch
	Merge
	KernelLaunch
)

func (t VertexType) String() string {
	switch t {
	case Const:
		return "Const"
	case Alloc:
		return "Alloc"
	case Load:
		return "Load"
	case Store:
		return "Store"
	case Apply:
		return "Apply"
	case Phi:
		return "Phi"
	case Parameter:
		return "Parameter"
	case Return:
		return "Return"
	case Branch:
		return "Branch"
	case Merge:
		return "Merge"
	case KernelLaunch:
		return "KernelLaunch"
	default:
		return "Unknown"
	}
}

// HardwareAffinity names a vertex's or edge's preferred execution device.
type HardwareAffinity int

const (
	AffinityAny HardwareAffinity = iota
	AffinityCPU
	AffinityGPU
	AffinityFPGA
	AffinityWASM
	AffinityJVM
	AffinityTPU
)

func (a HardwareAffinity) String() string {
	switch a {
	case AffinityCPU:
		return "CPU"
	case AffinityGPU:
		return "GPU"
	case AffinityFPGA:
		return "FPGA"
	case AffinityWASM:
		return "WASM"
	case AffinityJVM:
		return "JVM"
	case AffinityTPU:
		return "TPU"
	default:
		return "ANY"
	}
}

// ParallelismHints captures grid/block/warp/SIMD sizing metadata.
type ParallelismHints struct {
	Grid      [3]int
	Block     [3]int
	WarpSize  int
	SIMDWidth int
}

// Provenance records where a vertex came from and what has been done
// to it since.
type Provenance struct {
	SourceLanguage  string
	File            string
	Line            int
	Column          int
	OriginalName    string
	Transformations []string
}

// WithTransformation returns a copy of p with an additional
// transformation entry appended, for recording rewrite history.
func (p Provenance) WithTransformation(name string) Provenance {
	p.Transformations = append(append([]string{}, p.Transformations...), name)
	return p
}

// VertexMetadata carries the attributes attached to every vertex:
// inferred type (opaque to sir; populated by package typesystem),
// effect set, lifetime tag, region tag, hardware affinity,
// parallelism hints, and provenance.
type VertexMetadata struct {
	Type        interface{} // populated by typesystem.Type; opaque here to avoid an import cycle
	Effects     []effect.Effect
	Lifetime    string
	Region      string
	Affinity    HardwareAffinity
	Parallelism ParallelismHints
	Provenance  Provenance
	// FeatureTags names hardware capabilities a scheduled device must
	// advertise to run this vertex (e.g. "fp16", "tensor-core").
	FeatureTags []string
}

// Vertex is a node in the SIR hypergraph. Identity is stable once
// assigned; metadata may be refined in place before emission.
type Vertex struct {
	ID       string
	VType    VertexType
	Value    interface{}
	Metadata VertexMetadata
}

// IsSyncPoint reports whether v is a synchronization vertex for the
// purposes of deadlock analysis: it carries ThreadJoin, ChannelRecv,
// Barrier, or AtomicRmw among its declared effects.
func (v *Vertex) IsSyncPoint() bool {
	for _, e := range v.Metadata.Effects {
		switch e {
		case effect.ThreadJoin, effect.ChannelRecv, effect.Barrier, effect.AtomicRmw:
			return true
		}
	}
	return false
}

// IsRoot reports whether v may introduce capabilities without
// inheriting them from a predecessor (KernelLaunch, Parameter).
func (v *Vertex) IsRoot() bool {
	return v.VType == KernelLaunch || v.VType == Parameter
}

// --- constructors ---

// NewConst builds a Const vertex carrying a literal value.
func NewConst(id string, value interface{}) *Vertex {
	return &Vertex{ID: id, VType: Const, Value: value}
}

// NewAlloc builds an Alloc vertex with the given byte size.
func NewAlloc(id string, size int64) *Vertex {
	return &Vertex{ID: id, VType: Alloc, Value: size, Metadata: VertexMetadata{Effects: []effect.Effect{effect.Alloc}}}
}

// NewLoad builds a Load vertex.
func NewLoad(id string) *Vertex {
	return &Vertex{ID: id, VType: Load, Metadata: VertexMetadata{Effects: []effect.Effect{effect.Read}}}
}

// NewStore builds a Store vertex.
func NewStore(id string) *Vertex {
	return &Vertex{ID: id, VType: Store, Metadata: VertexMetadata{Effects: []effect.Effect{effect.Write}}}
}

// NewApply builds an Apply vertex invoking callee.
func NewApply(id, callee string) *Vertex {
	return &Vertex{ID: id, VType: Apply, Value: callee, Metadata: VertexMetadata{Effects: []effect.Effect{effect.Pure}}}
}

// NewPhi builds a Phi (SSA merge) vertex.
func NewPhi(id string) *Vertex {
	return &Vertex{ID: id, VType: Phi}
}

// NewKernelLaunch builds a KernelLaunch vertex with the given grid/block.
func NewKernelLaunch(id string, grid, block [3]int) *Vertex {
	return &Vertex{
		ID: id, VType: KernelLaunch,
		Value:    map[string]interface{}{"grid": grid, "block": block},
		Metadata: VertexMetadata{Effects: []effect.Effect{effect.GpuLaunch}, Affinity: AffinityGPU, Parallelism: ParallelismHints{Grid: grid, Block: block}},
	}
}

// NewParameter builds a Parameter vertex identified by name and
// positional index.
func NewParameter(id, name string, index int) *Vertex {
	return &Vertex{ID: id, VType: Parameter, Value: map[string]interface{}{"name": name, "index": index}}
}

// NewReturn builds a Return vertex.
func NewReturn(id string) *Vertex {
	return &Vertex{ID: id, VType: Return}
}

// NewBranch builds a Branch vertex.
func NewBranch(id string) *Vertex {
	return &Vertex{ID: id, VType: Branch}
}

// NewMerge builds a Merge vertex.
func NewMerge(id string) *Vertex {
	return &Vertex{ID: id, VType: Merge}
}

// WithAffinity returns v after setting its hardware-affinity tag.
func (v *Vertex) WithAffinity(a HardwareAffinity) *Vertex {
	v.Metadata.Affinity = a
	return v
}

// WithRegion returns v after setting its region tag.
func (v *Vertex) WithRegion(region string) *Vertex {
	v.Metadata.Region = region
	return v
}

// WithProvenance returns v after setting its provenance record.
func (v *Vertex) WithProvenance(p Provenance) *Vertex {
	v.Metadata.Provenance = p
	return v
}

// clone returns a deep copy of v with a fresh identity.
func (v *Vertex) clone(newID string) *Vertex {
	cp := *v
	cp.ID = newID
	cp.Metadata.Effects = append([]effect.Effect(nil), v.Metadata.Effects...)
	cp.Metadata.Provenance.Transformations = append([]string(nil), v.Metadata.Provenance.Transformations...)
	return &cp
}
