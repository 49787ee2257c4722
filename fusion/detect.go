package fusion

import "github.com/robertringler/aion/sir"

// Detect runs every pattern detector once over g and returns every
// pattern found, in priority order (PolyglotPipeline first, down to
// DataflowFusion), matching the rewrite priority order §4.6 specifies.
func Detect(g *sir.Graph) []Pattern {
	var patterns []Pattern
	patterns = append(patterns, detectPolyglotPipeline(g)...)
	patterns = append(patterns, detectKernelFusion(g)...)
	patterns = append(patterns, detectMemoryCoalescing(g)...)
	patterns = append(patterns, detectCpuDeviceTransferElimination(g)...)
	patterns = append(patterns, detectDataflowFusion(g)...)
	return patterns
}

// detectPolyglotPipeline walks data-flow successors from every vertex
// whose provenance names a source language, collecting the chain of
// source-language tags until the chain stalls or loops back onto a
// vertex already claimed by an earlier chain.
func detectPolyglotPipeline(g *sir.Graph) []Pattern {
	var patterns []Pattern
	visited := map[string]bool{}

	for _, v := range g.Vertices() {
		if visited[v.ID] || v.Metadata.Provenance.SourceLanguage == "" {
			continue
		}
		chain := []string{v.ID}
		langs := map[string]bool{v.Metadata.Provenance.SourceLanguage: true}
		current := v.ID
		for {
			succs := g.Successors(current)
			var next *sir.Vertex
			for _, s := range succs {
				if s.Metadata.Provenance.SourceLanguage != "" && !visited[s.ID] {
					next = s
					break
				}
			}
			if next == nil {
				break
			}
			chain = append(chain, next.ID)
			langs[next.Metadata.Provenance.SourceLanguage] = true
			visited[next.ID] = true
			current = next.ID
		}
		if len(chain) >= 2 && len(langs) >= 2 {
			speedup := baseSpeedup[PolyglotPipeline]
			if len(langs) == 2 {
				speedup = 1.3
			}
			patterns = append(patterns, Pattern{Kind: PolyglotPipeline, VertexIDs: chain, EstimatedSpeedup: speedup, HardwareTarget: sir.AffinityAny})
		}
	}
	return patterns
}

// detectKernelFusion groups consecutive KernelLaunch vertices (in
// topological order) sharing hardware affinity and compatible
// grid/block dimensions (equal, or one side unit).
func detectKernelFusion(g *sir.Graph) []Pattern {
	order, _ := g.TopologicalOrder()
	var groups [][]*sir.Vertex
	var current []*sir.Vertex

	flush := func() {
		if len(current) >= 2 {
			groups = append(groups, current)
		}
		current = nil
	}

	for _, v := range order {
		if v.VType != sir.KernelLaunch {
			continue
		}
		if len(current) == 0 {
			current = []*sir.Vertex{v}
			continue
		}
		last := current[len(current)-1]
		if last.Metadata.Affinity == v.Metadata.Affinity && compatibleParallelism(last, v) {
			current = append(current, v)
		} else {
			flush()
			current = []*sir.Vertex{v}
		}
	}
	flush()

	var patterns []Pattern
	for _, group := range groups {
		ids := make([]string, len(group))
		for i, v := range group {
			ids[i] = v.ID
		}
		patterns = append(patterns, Pattern{
			Kind: KernelFusion, VertexIDs: ids,
			EstimatedSpeedup: baseSpeedup[KernelFusion], HardwareTarget: group[0].Metadata.Affinity,
		})
	}
	return patterns
}

func compatibleParallelism(a, b *sir.Vertex) bool {
	unit := [3]int{1, 1, 1}
	compatible := func(x, y [3]int) bool { return x == y || x == unit || y == unit }
	return compatible(a.Metadata.Parallelism.Grid, b.Metadata.Parallelism.Grid) &&
		compatible(a.Metadata.Parallelism.Block, b.Metadata.Parallelism.Block)
}

// detectMemoryCoalescing groups Load vertices by region, producing one
// MemoryCoalescing pattern per region with at least four loads.
func detectMemoryCoalescing(g *sir.Graph) []Pattern {
	byRegion := map[string][]string{}
	for _, v := range g.Vertices() {
		if v.VType != sir.Load {
			continue
		}
		byRegion[v.Metadata.Region] = append(byRegion[v.Metadata.Region], v.ID)
	}

	var patterns []Pattern
	for region, ids := range byRegion {
		if len(ids) >= 4 {
			patterns = append(patterns, Pattern{Kind: MemoryCoalescing, VertexIDs: ids, EstimatedSpeedup: baseSpeedup[MemoryCoalescing], HardwareTarget: sir.AffinityAny})
			_ = region
		}
	}
	return patterns
}

// detectCpuDeviceTransferElimination finds runs of three or more
// consecutive memcpy-like Apply vertices (by callee name) in
// topological order.
func detectCpuDeviceTransferElimination(g *sir.Graph) []Pattern {
	order, _ := g.TopologicalOrder()
	var patterns []Pattern
	var run []string

	flush := func() {
		if len(run) >= 3 {
			patterns = append(patterns, Pattern{Kind: CpuDeviceTransferElimination, VertexIDs: append([]string(nil), run...), EstimatedSpeedup: baseSpeedup[CpuDeviceTransferElimination], HardwareTarget: sir.AffinityAny})
		}
		run = nil
	}

	for _, v := range order {
		if v.VType == sir.Apply && isMemcpyLike(v) {
			run = append(run, v.ID)
		} else {
			flush()
		}
	}
	flush()
	return patterns
}

func isMemcpyLike(v *sir.Vertex) bool {
	name, _ := v.Value.(string)
	return containsFold(name, "memcpy") || containsFold(name, "copy")
}

func containsFold(s, substr string) bool {
	ls, lsub := toLower(s), toLower(substr)
	for i := 0; i+len(lsub) <= len(ls); i++ {
		if ls[i:i+len(lsub)] == lsub {
			return true
		}
	}
	return false
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

var dataflowOperators = map[string]bool{"FILTER": true, "PROJECT": true, "AGGREGATE": true, "TABLE_SCAN": true}

// detectDataflowFusion finds Apply vertices whose callee names a SQL
// operator (FILTER/PROJECT/AGGREGATE/TABLE_SCAN); three or more form a
// fusible chain. LoopFusion and PipelineFusion are left as open
// extensions per §4.6's note that they share KernelFusion's rewrite
// contract without a fully specified recognition heuristic; no
// detector runs for them yet.
func detectDataflowFusion(g *sir.Graph) []Pattern {
	var ids []string
	for _, v := range g.Vertices() {
		if v.VType != sir.Apply {
			continue
		}
		name, _ := v.Value.(string)
		if dataflowOperators[name] {
			ids = append(ids, v.ID)
		}
	}
	if len(ids) >= 3 {
		return []Pattern{{Kind: DataflowFusion, VertexIDs: ids, EstimatedSpeedup: baseSpeedup[DataflowFusion], HardwareTarget: sir.AffinityAny}}
	}
	return nil
}
