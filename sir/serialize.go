package sir

import (
	"encoding/json"
	"fmt"
)

// VertexDict is the serialized form of a Vertex in the `.aion_sir`
// envelope (§6).
type VertexDict struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Value      interface{}            `json:"value"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	Metadata   VertexMetaDict         `json:"metadata"`
}

// VertexMetaDict is the serialized form of VertexMetadata.
type VertexMetaDict struct {
	Type        interface{}      `json:"type,omitempty"`
	Effects     []string         `json:"effects"`
	Lifetime    string           `json:"lifetime,omitempty"`
	Region      string           `json:"region,omitempty"`
	Affinity    string           `json:"hardware_affinity"`
	Parallelism ParallelismHints `json:"parallelism"`
	Provenance  Provenance       `json:"provenance"`
	FeatureTags []string         `json:"feature_tags,omitempty"`
}

// EdgeDict is the serialized form of an Edge.
type EdgeDict struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Sources    []string               `json:"sources"`
	Targets    []string               `json:"targets"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	Metadata   EdgeMetadata           `json:"metadata"`
}

// GraphDict is the serialized tree of a Graph: the `.aion_sir` format.
type GraphDict struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name,omitempty"`
	Vertices []VertexDict           `json:"vertices"`
	Edges    []EdgeDict             `json:"edges"`
	Entry    *string                `json:"entry"`
	Exits    []string               `json:"exits"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ToDict converts g to its plain-tree serialized form.
func (g *Graph) ToDict() GraphDict {
	d := GraphDict{ID: g.ID, Name: g.Name, Metadata: g.Metadata}
	for _, v := range g.Vertices() {
		effects := make([]string, len(v.Metadata.Effects))
		for i, e := range v.Metadata.Effects {
			effects[i] = e.String()
		}
		d.Vertices = append(d.Vertices, VertexDict{
			ID: v.ID, Type: v.VType.String(), Value: v.Value,
			Metadata: VertexMetaDict{
				Type: v.Metadata.Type, Effects: effects, Lifetime: v.Metadata.Lifetime,
				Region: v.Metadata.Region, Affinity: v.Metadata.Affinity.String(),
				Parallelism: v.Metadata.Parallelism, Provenance: v.Metadata.Provenance,
				FeatureTags: v.Metadata.FeatureTags,
			},
		})
	}
	for _, e := range g.Edges() {
		d.Edges = append(d.Edges, EdgeDict{
			ID: e.ID, Type: e.Type.String(), Sources: e.Sources, Targets: e.Targets,
			Attributes: e.Attributes, Metadata: e.Metadata,
		})
	}
	if g.Entry != "" {
		entry := g.Entry
		d.Entry = &entry
	}
	d.Exits = g.Exits
	return d
}

// Serialize returns g's canonical JSON encoding. Map keys are sorted
// by encoding/json's default behavior, so two structurally identical
// graphs serialize to byte-identical output (testable property 2).
func (g *Graph) Serialize() ([]byte, error) {
	return json.Marshal(g.ToDict())
}

var vertexTypeByName = map[string]VertexType{
	"Const": Const, "Alloc": Alloc, "Load": Load, "Store": Store, "Apply": Apply,
	"Phi": Phi, "Parameter": Parameter, "Return": Return, "Branch": Branch,
	"Merge": Merge, "KernelLaunch": KernelLaunch,
}

var edgeTypeByName = map[string]EdgeType{
	"DataFlow": DataFlow, "ControlFlow": ControlFlow, "EffectEdge": EffectEdgeType,
	"ParallelEdge": ParallelEdgeType, "MemoryEdge": MemoryEdgeType, "RegionEdge": RegionEdgeType,
}

var affinityByName = map[string]HardwareAffinity{
	"ANY": AffinityAny, "CPU": AffinityCPU, "GPU": AffinityGPU, "FPGA": AffinityFPGA,
	"WASM": AffinityWASM, "JVM": AffinityJVM, "TPU": AffinityTPU,
}

// FromDict rebuilds a Graph from its plain-tree serialized form,
// restoring every vertex, edge, entry, and exit identity.
func FromDict(d GraphDict) (*Graph, error) {
	g := &Graph{
		ID: d.ID, Name: d.Name, Metadata: d.Metadata,
		vertices: map[string]*Vertex{}, edges: map[string]*Edge{},
		dataFlowSucc: map[string]map[string]bool{}, dataFlowPred: map[string]map[string]bool{},
	}
	if g.Metadata == nil {
		g.Metadata = map[string]interface{}{}
	}
	for _, vd := range d.Vertices {
		vt, ok := vertexTypeByName[vd.Type]
		if !ok {
			return nil, fmt.Errorf("sir: %w: vertex type %q", ErrUnknownID, vd.Type)
		}
		v := &Vertex{
			ID: vd.ID, VType: vt, Value: vd.Value,
			Metadata: VertexMetadata{
				Type: vd.Metadata.Type, Lifetime: vd.Metadata.Lifetime, Region: vd.Metadata.Region,
				Affinity: affinityByName[vd.Metadata.Affinity], Parallelism: vd.Metadata.Parallelism,
				Provenance:  vd.Metadata.Provenance,
				FeatureTags: vd.Metadata.FeatureTags,
			},
		}
		v.Metadata.Effects = effectsFromNames(vd.Metadata.Effects)
		if err := g.AddVertex(v); err != nil {
			return nil, err
		}
	}
	for _, ed := range d.Edges {
		et, ok := edgeTypeByName[ed.Type]
		if !ok {
			return nil, fmt.Errorf("sir: %w: edge type %q", ErrUnknownID, ed.Type)
		}
		e := &Edge{ID: ed.ID, Type: et, Sources: ed.Sources, Targets: ed.Targets, Attributes: ed.Attributes, Metadata: ed.Metadata}
		if e.Attributes == nil {
			e.Attributes = map[string]interface{}{}
		}
		if err := g.AddEdge(e); err != nil {
			return nil, err
		}
	}
	if d.Entry != nil {
		g.Entry = *d.Entry
	}
	g.Exits = d.Exits
	return g, nil
}

// FromJSON parses a `.aion_sir` byte stream produced by Serialize.
func FromJSON(data []byte) (*Graph, error) {
	var d GraphDict
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("sir: decode: %w", err)
	}
	return FromDict(d)
}
