package effect

import "github.com/robertringler/aion/diag"

// VertexView is the minimal read-only view of a SIR vertex the effect
// analyses need. sir.Vertex satisfies this interface without sir
// importing this package's interface types, avoiding an import cycle.
type VertexView interface {
	ID() string
	Effects() []Effect
	Region() string
	IsSyncPoint() bool // true for ThreadJoin/ChannelRecv/Barrier/AtomicRmw
	IsRoot() bool      // true for KernelLaunch/Parameter: may introduce capabilities
}

// EdgeView is the minimal read-only view of a SIR hyperedge needed by
// the effect analyses.
type EdgeView interface {
	SourceIDs() []string
	TargetIDs() []string
	Ordering() string // "seq" | "par" | "atomic" | ""
}

// GraphView is the minimal read-only traversal surface a graph must
// expose for effect checking, race analysis, and deadlock analysis.
type GraphView interface {
	AllVertices() []VertexView
	EffectEdges() []EdgeView
	ParallelEdges() []EdgeView
	TopologicalOrder() ([]VertexView, error)
	Predecessors(id string) []VertexView
	Successors(id string) []VertexView
}

// Checker runs the static effect checks of §4.4: annotation presence,
// effect-ordering on effect edges, parallel-region race hints, and
// capability flow over a topological walk.
type Checker struct{}

// NewChecker returns a ready-to-use Checker.
func NewChecker() *Checker { return &Checker{} }

// Check runs every sub-check and returns accumulated errors and
// warnings. It never returns a Go error: malformed input yields
// diagnostics, not panics, per the core's error-propagation policy.
func (c *Checker) Check(g GraphView) (errs, warnings []diag.Violation) {
	warnings = append(warnings, c.checkAnnotations(g)...)
	warnings = append(warnings, c.checkOrdering(g)...)
	errs = append(errs, c.checkParallelWrites(g)...)
	warnings = append(warnings, c.checkCapabilityFlow(g)...)
	return errs, warnings
}

func (c *Checker) checkAnnotations(g GraphView) []diag.Violation {
	var out []diag.Violation
	for _, v := range g.AllVertices() {
		if len(v.Effects()) == 0 {
			out = append(out, diag.New(diag.UnsupportedOperation, "vertex %s has no effect annotation", v.ID()).WithVertices(v.ID()))
		}
	}
	return out
}

func (c *Checker) checkOrdering(g GraphView) []diag.Violation {
	var out []diag.Violation
	byID := indexVertices(g)
	for _, e := range g.EffectEdges() {
		for _, srcID := range e.SourceIDs() {
			src, ok := byID[srcID]
			if !ok {
				continue
			}
			for _, tgtID := range e.TargetIDs() {
				tgt, ok := byID[tgtID]
				if !ok {
					continue
				}
				if hasEffect(src.Effects(), Write) && hasEffect(tgt.Effects(), Write) && e.Ordering() != "seq" {
					out = append(out, diag.New(diag.RaceDetected, "write-write conflict between %s and %s may need ordering", src.ID(), tgt.ID()).WithVertices(src.ID(), tgt.ID()))
				}
			}
		}
	}
	return out
}

func (c *Checker) checkParallelWrites(g GraphView) []diag.Violation {
	var out []diag.Violation
	for _, e := range g.ParallelEdges() {
		writers := map[string][]VertexView{}
		byID := indexVertices(g)
		for _, id := range e.TargetIDs() {
			v, ok := byID[id]
			if !ok {
				continue
			}
			if hasEffect(v.Effects(), Write) {
				writers[v.Region()] = append(writers[v.Region()], v)
			}
		}
		for region, ws := range writers {
			if region != "" && len(ws) > 1 {
				ids := make([]string, len(ws))
				for i, w := range ws {
					ids[i] = w.ID()
				}
				out = append(out, diag.New(diag.RaceDetected, "potential race: multiple writers to region %s in parallel region", region).WithVertices(ids...))
			}
		}
	}
	return out
}

func (c *Checker) checkCapabilityFlow(g GraphView) []diag.Violation {
	var out []diag.Violation
	order, err := g.TopologicalOrder()
	if err != nil {
		return out
	}
	available := map[string][]Capability{}
	for _, v := range order {
		var caps []Capability
		for _, p := range g.Predecessors(v.ID()) {
			caps = append(caps, available[p.ID()]...)
		}
		for _, e := range v.Effects() {
			if e == Pure || e == Read {
				continue
			}
			covered := false
			for _, cap_ := range caps {
				if cap_.CanPerform(e) {
					covered = true
					break
				}
			}
			if !covered && !v.IsRoot() {
				out = append(out, diag.New(diag.UnsupportedOperation, "vertex %s performs %s without capability", v.ID(), e).WithVertices(v.ID()))
			}
		}
		if v.IsRoot() {
			for _, e := range v.Effects() {
				caps = append(caps, Capability{Effect: e})
			}
		}
		available[v.ID()] = caps
	}
	return out
}

func indexVertices(g GraphView) map[string]VertexView {
	m := make(map[string]VertexView)
	for _, v := range g.AllVertices() {
		m[v.ID()] = v
	}
	return m
}

func hasEffect(effects []Effect, target Effect) bool {
	for _, e := range effects {
		if e == target {
			return true
		}
	}
	return false
}

// RaceAnalysis is the result of AnalyzeRaces: whether any race was
// found and the concrete (writer, other) vertex-id pairs implicated.
type RaceAnalysis struct {
	HasRaces  bool
	RacePairs [][2]string
}

// AnalyzeRaces partitions effectful vertices under each parallel edge
// by region and reports write-write and write-read conflicts lacking a
// connecting effect edge.
func AnalyzeRaces(g GraphView) RaceAnalysis {
	var analysis RaceAnalysis
	byID := indexVertices(g)

	reads := map[string][]VertexView{}
	writes := map[string][]VertexView{}
	for _, v := range g.AllVertices() {
		region := v.Region()
		if region == "" {
			region = "heap"
		}
		if hasEffect(v.Effects(), Read) {
			reads[region] = append(reads[region], v)
		}
		if hasEffect(v.Effects(), Write) {
			writes[region] = append(writes[region], v)
		}
	}

	effectEdges := g.EffectEdges()
	hasOrdering := func(a, b string) bool {
		for _, e := range effectEdges {
			if containsID(e.SourceIDs(), a) && containsID(e.TargetIDs(), b) {
				return true
			}
			if containsID(e.SourceIDs(), b) && containsID(e.TargetIDs(), a) {
				return true
			}
		}
		return false
	}

	for _, e := range g.ParallelEdges() {
		parallelSet := map[string]bool{}
		for _, id := range e.TargetIDs() {
			parallelSet[id] = true
		}
		for region := range writes {
			var regionWrites, regionReads []VertexView
			for _, v := range writes[region] {
				if parallelSet[v.ID()] {
					regionWrites = append(regionWrites, v)
				}
			}
			for _, v := range reads[region] {
				if parallelSet[v.ID()] {
					regionReads = append(regionReads, v)
				}
			}
			for i := 0; i < len(regionWrites); i++ {
				for j := i + 1; j < len(regionWrites); j++ {
					if !hasOrdering(regionWrites[i].ID(), regionWrites[j].ID()) {
						analysis.HasRaces = true
						analysis.RacePairs = append(analysis.RacePairs, [2]string{regionWrites[i].ID(), regionWrites[j].ID()})
					}
				}
			}
			for _, w := range regionWrites {
				for _, r := range regionReads {
					if w.ID() == r.ID() {
						continue
					}
					if !hasOrdering(w.ID(), r.ID()) {
						analysis.HasRaces = true
						analysis.RacePairs = append(analysis.RacePairs, [2]string{w.ID(), r.ID()})
					}
				}
			}
		}
	}
	_ = byID
	return analysis
}

func containsID(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// DeadlockAnalysis is the result of AnalyzeDeadlocks: whether a cycle
// of reachable synchronization points was found, and the cycles
// themselves as ordered vertex-id lists.
type DeadlockAnalysis struct {
	HasDeadlock bool
	Cycles      [][]string
}

// AnalyzeDeadlocks builds a reachability graph over synchronization
// vertices (an edge A→B exists when B is reachable from A through
// graph successors) and detects cycles with a depth-first search that
// tracks the current path as a recursion stack, in the reference
// graph library's dfs.go style.
func AnalyzeDeadlocks(g GraphView) DeadlockAnalysis {
	var analysis DeadlockAnalysis

	var syncVertices []VertexView
	syncSet := map[string]bool{}
	for _, v := range g.AllVertices() {
		if v.IsSyncPoint() {
			syncVertices = append(syncVertices, v)
			syncSet[v.ID()] = true
		}
	}

	lockGraph := map[string]map[string]bool{}
	for _, v := range syncVertices {
		lockGraph[v.ID()] = map[string]bool{}
		visited := map[string]bool{}
		queue := g.Successors(v.ID())
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if visited[cur.ID()] {
				continue
			}
			visited[cur.ID()] = true
			if syncSet[cur.ID()] && cur.ID() != v.ID() {
				lockGraph[v.ID()][cur.ID()] = true
			}
			queue = append(queue, g.Successors(cur.ID())...)
		}
	}

	globalVisited := map[string]bool{}
	var findCycle func(start string, path []string, onPath map[string]bool) []string
	findCycle = func(start string, path []string, onPath map[string]bool) []string {
		if onPath[start] {
			idx := indexOf(path, start)
			return append(append([]string{}, path[idx:]...), start)
		}
		if globalVisited[start] {
			return nil
		}
		globalVisited[start] = true
		path = append(path, start)
		onPath[start] = true
		for neighbor := range lockGraph[start] {
			if cycle := findCycle(neighbor, append([]string{}, path...), copyMark(onPath)); cycle != nil {
				return cycle
			}
		}
		return nil
	}

	for id := range lockGraph {
		if cycle := findCycle(id, nil, map[string]bool{}); cycle != nil {
			analysis.HasDeadlock = true
			analysis.Cycles = append(analysis.Cycles, cycle)
		}
	}
	return analysis
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func copyMark(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
