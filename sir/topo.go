package sir

import "sort"

// TopologicalOrder returns the graph's vertices in an order consistent
// with data-flow dependencies, using Kahn's algorithm with a ready-set
// that is sorted by vertex identity before each vertex is picked, so
// ties are broken deterministically regardless of vertex-insertion
// order (testable property 1).
func (g *Graph) TopologicalOrder() ([]*Vertex, error) {
	verts := g.Vertices()
	inDegree := make(map[string]int, len(verts))
	for _, v := range verts {
		inDegree[v.ID] = len(g.Predecessors(v.ID))
	}

	var ready []string
	for _, v := range verts {
		if inDegree[v.ID] == 0 {
			ready = append(ready, v.ID)
		}
	}
	sort.Strings(ready)

	var order []*Vertex
	visited := map[string]bool{}
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		order = append(order, g.GetVertexByID(id))

		var newlyReady []string
		for _, succ := range g.Successors(id) {
			inDegree[succ.ID]--
			if inDegree[succ.ID] == 0 {
				newlyReady = append(newlyReady, succ.ID)
			}
		}
		sort.Strings(newlyReady)
		ready = append(ready, newlyReady...)
		sort.Strings(ready)
	}

	// Any vertex not reached is part of a data-flow cycle (permitted
	// only across loop-back control edges per §3); append the
	// remainder in id order so every vertex is still represented.
	if len(order) < len(verts) {
		for _, v := range verts {
			if !visited[v.ID] {
				order = append(order, v)
			}
		}
	}
	return order, nil
}

// FindParallelRegions groups vertices by the ParallelEdge that
// declares them independently executable, keyed by the edge's
// identity.
func (g *Graph) FindParallelRegions() map[string][]*Vertex {
	out := map[string][]*Vertex{}
	for _, e := range g.ParallelEdges() {
		for _, id := range e.Targets {
			if v := g.GetVertexByID(id); v != nil {
				out[e.ID] = append(out[e.ID], v)
			}
		}
	}
	return out
}
