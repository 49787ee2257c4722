package sir

import "github.com/google/uuid"

// Clone returns a deep copy of g with freshly minted vertex and edge
// identities, preserving edge topology. An internal old→new identity
// map is used to reconstruct edges and is discarded once cloning
// completes, mirroring the reference graph library's CloneEmpty+Clone
// pattern but minting fresh identities via uuid rather than an atomic
// counter, since SIR identities must be globally unique across graphs
// once merged.
func (g *Graph) Clone() *Graph {
	out := NewGraph(WithName(g.Name))
	for k, v := range g.Metadata {
		out.Metadata[k] = v
	}

	remap := make(map[string]string, len(g.vertices))
	for _, v := range g.Vertices() {
		newID := uuid.NewString()
		remap[v.ID] = newID
		_ = out.AddVertex(v.clone(newID))
	}

	for _, e := range g.Edges() {
		newID := uuid.NewString()
		_ = out.AddEdge(e.clone(newID, remap))
	}

	if g.Entry != "" {
		out.Entry = remap[g.Entry]
	}
	for _, exit := range g.Exits {
		out.Exits = append(out.Exits, remap[exit])
	}
	return out
}

// CloneEmpty returns a new Graph with the same name and metadata but
// no vertices or edges, mirroring the reference graph library's
// CloneEmpty.
func (g *Graph) CloneEmpty() *Graph {
	out := NewGraph(WithName(g.Name))
	for k, v := range g.Metadata {
		out.Metadata[k] = v
	}
	return out
}
