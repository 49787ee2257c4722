package sir

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// GraphOption configures a Graph at construction time.
type GraphOption func(g *Graph)

// WithName sets the graph's display name.
func WithName(name string) GraphOption {
	return func(g *Graph) { g.Name = name }
}

// WithMetadata seeds the graph's free-form metadata map.
func WithMetadata(md map[string]interface{}) GraphOption {
	return func(g *Graph) {
		for k, v := range md {
			g.Metadata[k] = v
		}
	}
}

// Graph is the SIR hypergraph: identity, optional name, a vertex set,
// a hyperedge set, an optional entry vertex, an ordered exit-vertex
// list, and free-form metadata. muVert guards vertices; muEdgeAdj
// guards edges and the adjacency index, mirroring the reference graph
// library's split-lock concurrency contract.
type Graph struct {
	muVert    sync.RWMutex
	muEdgeAdj sync.RWMutex

	ID       string
	Name     string
	Entry    string
	Exits    []string
	Metadata map[string]interface{}

	vertices map[string]*Vertex
	edges    map[string]*Edge

	// dataFlowSucc[from] = set of data-flow successor ids (dataFlowPred
	// the reverse), derived from DataFlow edges only, per spec's
	// predecessors()/successors().
	dataFlowSucc map[string]map[string]bool
	dataFlowPred map[string]map[string]bool
}

// NewGraph creates an empty Graph with a freshly minted identity.
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		ID:           uuid.NewString(),
		Metadata:     map[string]interface{}{},
		vertices:     map[string]*Vertex{},
		edges:        map[string]*Edge{},
		dataFlowSucc: map[string]map[string]bool{},
		dataFlowPred: map[string]map[string]bool{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddVertex inserts v into the graph. Re-adding the same identity is a
// no-op that refreshes the stored vertex, mirroring the reference
// graph library's idempotent AddVertex.
func (g *Graph) AddVertex(v *Vertex) error {
	if v == nil {
		return fmt.Errorf("sir: %w", ErrEmptyVertexID)
	}
	if v.ID == "" {
		return ErrEmptyVertexID
	}
	g.muVert.Lock()
	defer g.muVert.Unlock()
	g.vertices[v.ID] = v
	return nil
}

// HasVertex reports whether id names a vertex in the graph.
func (g *Graph) HasVertex(id string) bool {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	_, ok := g.vertices[id]
	return ok
}

// GetVertexByID returns the vertex named id, or nil if absent.
func (g *Graph) GetVertexByID(id string) *Vertex {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	return g.vertices[id]
}

// Vertices returns every vertex in the graph, sorted by identity for
// deterministic iteration.
func (g *Graph) Vertices() []*Vertex {
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	out := make([]*Vertex, 0, len(g.vertices))
	for _, v := range g.vertices {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RemoveVertex deletes the vertex named id along with every incident
// edge.
func (g *Graph) RemoveVertex(id string) error {
	if !g.HasVertex(id) {
		return ErrVertexNotFound
	}
	g.muEdgeAdj.Lock()
	for eid, e := range g.edges {
		if containsStr(e.Sources, id) || containsStr(e.Targets, id) {
			g.unindexEdge(e)
			delete(g.edges, eid)
		}
	}
	g.muEdgeAdj.Unlock()

	g.muVert.Lock()
	delete(g.vertices, id)
	g.muVert.Unlock()
	return nil
}

// AddEdge inserts e. Endpoints are not inserted automatically: every
// endpoint must already exist (use AddVertex first), and AddEdge
// returns ErrInvalidEdge if one is missing.
func (g *Graph) AddEdge(e *Edge) error {
	if e == nil {
		return fmt.Errorf("sir: nil edge: %w", ErrInvalidEdge)
	}
	for _, id := range append(append([]string{}, e.Sources...), e.Targets...) {
		if !g.HasVertex(id) {
			return fmt.Errorf("sir: edge %s references missing vertex %s: %w", e.ID, id, ErrInvalidEdge)
		}
	}
	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()
	g.edges[e.ID] = e
	g.indexEdge(e)
	return nil
}

// RemoveEdge deletes the edge named id.
func (g *Graph) RemoveEdge(id string) error {
	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()
	e, ok := g.edges[id]
	if !ok {
		return ErrEdgeNotFound
	}
	g.unindexEdge(e)
	delete(g.edges, id)
	return nil
}

// Edges returns every edge in the graph, sorted by identity.
func (g *Graph) Edges() []*Edge {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *Graph) indexEdge(e *Edge) {
	if e.Type != DataFlow {
		return
	}
	for _, s := range e.Sources {
		for _, t := range e.Targets {
			if g.dataFlowSucc[s] == nil {
				g.dataFlowSucc[s] = map[string]bool{}
			}
			g.dataFlowSucc[s][t] = true
			if g.dataFlowPred[t] == nil {
				g.dataFlowPred[t] = map[string]bool{}
			}
			g.dataFlowPred[t][s] = true
		}
	}
}

func (g *Graph) unindexEdge(e *Edge) {
	if e.Type != DataFlow {
		return
	}
	for _, s := range e.Sources {
		for _, t := range e.Targets {
			delete(g.dataFlowSucc[s], t)
			delete(g.dataFlowPred[t], s)
		}
	}
}

// Predecessors returns the data-flow predecessors of id, sorted.
func (g *Graph) Predecessors(id string) []*Vertex {
	g.muEdgeAdj.RLock()
	ids := make([]string, 0, len(g.dataFlowPred[id]))
	for p := range g.dataFlowPred[id] {
		ids = append(ids, p)
	}
	g.muEdgeAdj.RUnlock()
	sort.Strings(ids)
	return g.resolve(ids)
}

// Successors returns the data-flow successors of id, sorted.
func (g *Graph) Successors(id string) []*Vertex {
	g.muEdgeAdj.RLock()
	ids := make([]string, 0, len(g.dataFlowSucc[id]))
	for s := range g.dataFlowSucc[id] {
		ids = append(ids, s)
	}
	g.muEdgeAdj.RUnlock()
	sort.Strings(ids)
	return g.resolve(ids)
}

func (g *Graph) resolve(ids []string) []*Vertex {
	out := make([]*Vertex, 0, len(ids))
	for _, id := range ids {
		if v := g.GetVertexByID(id); v != nil {
			out = append(out, v)
		}
	}
	return out
}

// DataFlowEdges returns every DataFlow edge.
func (g *Graph) DataFlowEdges() []*Edge { return g.edgesOfType(DataFlow) }

// ControlFlowEdges returns every ControlFlow edge.
func (g *Graph) ControlFlowEdges() []*Edge { return g.edgesOfType(ControlFlow) }

// ParallelEdges returns every ParallelEdge.
func (g *Graph) ParallelEdges() []*Edge { return g.edgesOfType(ParallelEdgeType) }

// EffectEdges returns every EffectEdge.
func (g *Graph) EffectEdges() []*Edge { return g.edgesOfType(EffectEdgeType) }

// MemoryEdges returns every MemoryEdge.
func (g *Graph) MemoryEdges() []*Edge { return g.edgesOfType(MemoryEdgeType) }

// RegionEdges returns every RegionEdge.
func (g *Graph) RegionEdges() []*Edge { return g.edgesOfType(RegionEdgeType) }

func (g *Graph) edgesOfType(t EdgeType) []*Edge {
	var out []*Edge
	for _, e := range g.Edges() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func containsStr(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
