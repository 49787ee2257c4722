package sir

import "github.com/robertringler/aion/effect"

var effectsByName = func() map[string]effect.Effect {
	m := make(map[string]effect.Effect, len(effect.All()))
	for _, e := range effect.All() {
		m[e.String()] = e
	}
	return m
}()

func effectsFromNames(names []string) []effect.Effect {
	out := make([]effect.Effect, 0, len(names))
	for _, n := range names {
		if e, ok := effectsByName[n]; ok {
			out = append(out, e)
		}
	}
	return out
}

// vertexView adapts *Vertex to effect.VertexView without sir importing
// that interface type, avoiding an import cycle (sir already depends
// on effect for the Effect type itself).
type vertexView struct{ v *Vertex }

func (w vertexView) ID() string            { return w.v.ID }
func (w vertexView) Effects() []effect.Effect { return w.v.Metadata.Effects }
func (w vertexView) Region() string        { return w.v.Metadata.Region }
func (w vertexView) IsSyncPoint() bool     { return w.v.IsSyncPoint() }
func (w vertexView) IsRoot() bool          { return w.v.IsRoot() }

// edgeView adapts *Edge to effect.EdgeView.
type edgeView struct{ e *Edge }

func (w edgeView) SourceIDs() []string { return w.e.Sources }
func (w edgeView) TargetIDs() []string { return w.e.Targets }
func (w edgeView) Ordering() string    { return w.e.Ordering() }

// EffectView adapts g to effect.GraphView for use with
// effect.NewChecker, effect.AnalyzeRaces, and effect.AnalyzeDeadlocks.
type EffectView struct{ g *Graph }

// AsEffectView returns an effect.GraphView over g.
func (g *Graph) AsEffectView() EffectView { return EffectView{g: g} }

func (ev EffectView) AllVertices() []effect.VertexView {
	verts := ev.g.Vertices()
	out := make([]effect.VertexView, len(verts))
	for i, v := range verts {
		out[i] = vertexView{v}
	}
	return out
}

func (ev EffectView) EffectEdges() []effect.EdgeView   { return wrapEdges(ev.g.EffectEdges()) }
func (ev EffectView) ParallelEdges() []effect.EdgeView { return wrapEdges(ev.g.ParallelEdges()) }

func wrapEdges(edges []*Edge) []effect.EdgeView {
	out := make([]effect.EdgeView, len(edges))
	for i, e := range edges {
		out[i] = edgeView{e}
	}
	return out
}

func (ev EffectView) TopologicalOrder() ([]effect.VertexView, error) {
	verts, err := ev.g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	out := make([]effect.VertexView, len(verts))
	for i, v := range verts {
		out[i] = vertexView{v}
	}
	return out, nil
}

func (ev EffectView) Predecessors(id string) []effect.VertexView {
	verts := ev.g.Predecessors(id)
	out := make([]effect.VertexView, len(verts))
	for i, v := range verts {
		out[i] = vertexView{v}
	}
	return out
}

func (ev EffectView) Successors(id string) []effect.VertexView {
	verts := ev.g.Successors(id)
	out := make([]effect.VertexView, len(verts))
	for i, v := range verts {
		out[i] = vertexView{v}
	}
	return out
}
