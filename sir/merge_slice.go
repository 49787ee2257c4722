package sir

// MergeGraphs concatenates the vertex and edge sets of graphs into one
// new graph named name, preserving every identity. Identities must
// already be disjoint across the inputs (callers that built each
// input independently should Clone first); a colliding identity from
// a later graph overwrites the earlier one, matching the reference
// graph library's idempotent AddVertex semantics.
func MergeGraphs(graphs []*Graph, name string) *Graph {
	out := NewGraph(WithName(name))
	for _, g := range graphs {
		for _, v := range g.Vertices() {
			_ = out.AddVertex(v)
		}
	}
	for _, g := range graphs {
		for _, e := range g.Edges() {
			_ = out.AddEdge(e)
		}
	}
	return out
}

// SliceGraph returns a new graph containing every vertex matching
// predicate plus their directly connected neighbors (by any edge),
// and every edge whose endpoints are all present in the resulting
// vertex set.
func SliceGraph(g *Graph, predicate func(*Vertex) bool) *Graph {
	out := g.CloneEmpty()
	keep := map[string]bool{}
	for _, v := range g.Vertices() {
		if predicate(v) {
			keep[v.ID] = true
		}
	}
	for _, e := range g.Edges() {
		touches := false
		for _, id := range append(append([]string{}, e.Sources...), e.Targets...) {
			if keep[id] {
				touches = true
				break
			}
		}
		if !touches {
			continue
		}
		for _, id := range append(append([]string{}, e.Sources...), e.Targets...) {
			keep[id] = true
		}
	}
	for _, v := range g.Vertices() {
		if keep[v.ID] {
			_ = out.AddVertex(v)
		}
	}
	for _, e := range g.Edges() {
		allPresent := true
		for _, id := range append(append([]string{}, e.Sources...), e.Targets...) {
			if !keep[id] {
				allPresent = false
				break
			}
		}
		if allPresent {
			_ = out.AddEdge(e)
		}
	}
	return out
}
