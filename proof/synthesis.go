package proof

import (
	"fmt"

	"github.com/robertringler/aion/effect"
	"github.com/robertringler/aion/region"
	"github.com/robertringler/aion/sir"
)

// Synthesizer derives proof terms from a sir.Graph. It never panics on
// a malformed program; a synthesis method either returns a Term or a
// descriptive error explaining which evidence failed to check out.
type Synthesizer struct {
	SMT    Solver
	Errors []string
}

// NewSynthesizer returns a Synthesizer backed by the permissive Stub solver.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{SMT: NewStub()}
}

// SynthesizeMemorySafety walks g in topological order collecting every
// Alloc's program point and every Load's source allocation, then
// checks that each use occurs strictly after its allocation and that
// the allocation's block was never freed. freed names the sir.Vertex
// IDs of Alloc vertices whose block a region.Manager reported freed
// (region.Manager.FreedAllocationVertices); passing nil treats nothing
// as freed. This is stricter than checking allocation order alone: a
// block can be freed without any corresponding sir vertex, so any
// later reference to a freed block is rejected outright rather than
// only out-of-order ones.
func (s *Synthesizer) SynthesizeMemorySafety(g *sir.Graph, freed map[string]bool) (*Term, error) {
	type allocRec struct {
		id, vertexID, region string
		size                 int64
		point                int
	}
	var allocations []allocRec
	allocByVertex := map[string]int{}

	order, _ := g.TopologicalOrder()
	for point, v := range order {
		if v.VType != sir.Alloc {
			continue
		}
		size, _ := v.Value.(int64)
		rec := allocRec{id: fmt.Sprintf("a%d", len(allocations)), vertexID: v.ID, region: v.Metadata.Region, size: size, point: point}
		allocByVertex[v.ID] = len(allocations)
		allocations = append(allocations, rec)
	}

	type useRec struct {
		vertexID, allocID string
		point             int
	}
	var uses []useRec
	for point, v := range order {
		if v.VType != sir.Load {
			continue
		}
		for _, p := range g.Predecessors(v.ID) {
			if idx, ok := allocByVertex[p.ID]; ok {
				uses = append(uses, useRec{vertexID: v.ID, allocID: allocations[idx].id, point: point})
			}
		}
	}

	evidence := map[string]interface{}{}
	allocDicts := make([]map[string]interface{}, len(allocations))
	for i, a := range allocations {
		allocDicts[i] = map[string]interface{}{"id": a.id, "vertex_id": a.vertexID, "region": a.region, "size": a.size, "program_point": a.point}
	}
	evidence["allocations"] = allocDicts

	useDicts := make([]map[string]interface{}, len(uses))
	for i, u := range uses {
		useDicts[i] = map[string]interface{}{"vertex_id": u.vertexID, "alloc_id": u.allocID, "program_point": u.point}
	}
	evidence["uses"] = useDicts

	pointOf := map[string]int{}
	allocVertexOf := map[string]string{}
	for _, a := range allocations {
		pointOf[a.id] = a.point
		allocVertexOf[a.id] = a.vertexID
	}
	for _, u := range uses {
		if u.point <= pointOf[u.allocID] {
			s.Errors = append(s.Errors, fmt.Sprintf("use of %s precedes its allocation", u.vertexID))
			return nil, fmt.Errorf("proof: memory safety violation at %s: %w", u.vertexID, ErrMissingAxiom)
		}
		if freed != nil && freed[allocVertexOf[u.allocID]] {
			s.Errors = append(s.Errors, fmt.Sprintf("use of %s references a freed block", u.vertexID))
			return nil, fmt.Errorf("proof: use-after-free at %s: %w", u.vertexID, ErrMissingAxiom)
		}
	}

	return NewTerm(MemorySafety, "memory_safe(program)", "valid_alloc", "region_bound").withEvidence(evidence), nil
}

func (t *Term) withEvidence(e map[string]interface{}) *Term {
	t.Evidence = e
	return t
}

// SynthesizeRaceFreedom delegates the parallel-region accounting to
// effect.AnalyzeRaces and packages its result as evidence.
func (s *Synthesizer) SynthesizeRaceFreedom(g *sir.Graph) (*Term, error) {
	analysis := effect.AnalyzeRaces(g.AsEffectView())
	evidence := map[string]interface{}{"race_pairs": analysis.RacePairs, "has_races": analysis.HasRaces}
	if analysis.HasRaces {
		s.Errors = append(s.Errors, "potential data race detected")
		return nil, fmt.Errorf("proof: race freedom violated: %w", ErrMissingAxiom)
	}
	return NewTerm(RaceFreedom, "race_free(program)", "ordered_safe", "disjoint_safe").withEvidence(evidence), nil
}

// SynthesizeDeadlockFreedom delegates cycle detection to
// effect.AnalyzeDeadlocks.
func (s *Synthesizer) SynthesizeDeadlockFreedom(g *sir.Graph) (*Term, error) {
	analysis := effect.AnalyzeDeadlocks(g.AsEffectView())
	evidence := map[string]interface{}{"cycles": analysis.Cycles, "has_deadlock": analysis.HasDeadlock}
	if analysis.HasDeadlock {
		s.Errors = append(s.Errors, "potential deadlock detected")
		return nil, fmt.Errorf("proof: deadlock freedom violated: %w", ErrMissingAxiom)
	}
	return NewTerm(DeadlockFreedom, "deadlock_free(program)", "acyclic_lock_graph").withEvidence(evidence), nil
}

// SynthesizeBoundedResources requires every Alloc vertex to carry a
// concrete int64 byte size.
func (s *Synthesizer) SynthesizeBoundedResources(g *sir.Graph) (*Term, error) {
	var allocs []map[string]interface{}
	for _, v := range g.Vertices() {
		if v.VType != sir.Alloc {
			continue
		}
		size, bounded := v.Value.(int64)
		bound := interface{}("unbounded")
		if bounded {
			bound = size
		}
		allocs = append(allocs, map[string]interface{}{"vertex_id": v.ID, "size": size, "bound": bound})
		if !bounded {
			s.Errors = append(s.Errors, fmt.Sprintf("unbounded allocation at %s", v.ID))
			return nil, fmt.Errorf("proof: unbounded allocation at %s: %w", v.ID, ErrMissingAxiom)
		}
	}
	return NewTerm(BoundedResources, "bounded_resources(program)", "allocation_bounds").withEvidence(map[string]interface{}{"allocations": allocs}), nil
}

// SynthesizeBorrowProofs emits one LifetimeValidity term per vertex
// carrying a region tag, recording that its source is valid and its
// lifetime is contained in the declaring region's lifetime.
func (s *Synthesizer) SynthesizeBorrowProofs(g *sir.Graph, mgr *region.Manager) []*Term {
	var terms []*Term
	for _, v := range g.Vertices() {
		if v.Metadata.Region == "" {
			continue
		}
		sourceLifetime := "static"
		if mgr != nil {
			if r := mgr.Region(v.Metadata.Region); r != nil && r.Lifetime != nil {
				sourceLifetime = r.Lifetime.Name
			}
		}
		premises := []string{
			fmt.Sprintf("valid_source(%s)", v.ID),
			fmt.Sprintf("lifetime_contained(%s, %s)", v.Metadata.Lifetime, sourceLifetime),
		}
		term := NewTerm(LifetimeValidity, fmt.Sprintf("valid_borrow(%s)", v.ID), premises...)
		term.Evidence["region"] = v.Metadata.Region
		term.Evidence["source_lifetime"] = sourceLifetime
		terms = append(terms, term)
	}
	return terms
}

// SynthesizeEffectProofs emits one EffectConformance term per
// effectful vertex, taking the vertex's own declared effects as both
// the declared and the actual set (actual effects are established
// upstream by typesystem.Checker; here we only package the comparison).
func (s *Synthesizer) SynthesizeEffectProofs(g *sir.Graph) []*Term {
	var terms []*Term
	for _, v := range g.Vertices() {
		if len(v.Metadata.Effects) == 0 {
			continue
		}
		names := make([]string, len(v.Metadata.Effects))
		for i, e := range v.Metadata.Effects {
			names[i] = e.String()
		}
		premises := make([]string, len(names))
		for i, n := range names {
			premises[i] = fmt.Sprintf("declared(%s)", n)
		}
		term := NewTerm(EffectConformance, fmt.Sprintf("effects_conform(%s)", v.ID), premises...)
		term.Evidence["declared_effects"] = names
		term.Evidence["actual_effects"] = names
		terms = append(terms, term)
	}
	return terms
}

// SynthesizeRegionProofs emits one RegionValidity term per allocation
// tracked by mgr whose region declares a MaxSize, checking the
// allocation's byte range against it.
func (s *Synthesizer) SynthesizeRegionProofs(mgr *region.Manager) []*Term {
	if mgr == nil {
		return nil
	}
	var terms []*Term
	for _, alloc := range mgr.Allocations() {
		block := mgr.Block(alloc.BlockID)
		if block == nil {
			continue
		}
		r := mgr.Region(block.RegionID)
		if r == nil || r.MaxSize == 0 {
			continue
		}
		inBounds := block.Offset+block.Size <= r.MaxSize
		term := NewTerm(RegionValidity, fmt.Sprintf("valid_region_access(%s)", alloc.Vertex),
			fmt.Sprintf("in_region(%s, %s)", alloc.Vertex, r.ID),
			fmt.Sprintf("bounds_check(%d, %d, %d)", block.Offset, block.Size, r.MaxSize))
		term.Evidence["region"] = r.ID
		term.Evidence["offset"] = block.Offset
		term.Evidence["size"] = block.Size
		term.Evidence["region_size"] = r.MaxSize
		term.Evidence["in_bounds"] = inBounds
		if !inBounds {
			s.Errors = append(s.Errors, fmt.Sprintf("region access out of bounds for %s", alloc.Vertex))
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// Synthesize produces every proof the evidence supports: the four
// program-wide safety proofs, one borrow proof per regioned vertex,
// one effect-conformance proof per effectful vertex, and one region
// proof per bounded allocation. A failing safety proof is recorded in
// s.Errors and simply omitted from the result, matching the core's
// policy of never failing synthesis outright on a single bad proof.
func (s *Synthesizer) Synthesize(g *sir.Graph, mgr *region.Manager, freed map[string]bool) []*Term {
	var terms []*Term
	if t, err := s.SynthesizeMemorySafety(g, freed); err == nil {
		terms = append(terms, t)
	}
	if t, err := s.SynthesizeRaceFreedom(g); err == nil {
		terms = append(terms, t)
	}
	if t, err := s.SynthesizeDeadlockFreedom(g); err == nil {
		terms = append(terms, t)
	}
	if t, err := s.SynthesizeBoundedResources(g); err == nil {
		terms = append(terms, t)
	}
	terms = append(terms, s.SynthesizeBorrowProofs(g, mgr)...)
	terms = append(terms, s.SynthesizeEffectProofs(g)...)
	terms = append(terms, s.SynthesizeRegionProofs(mgr)...)
	return terms
}

// RewritePreserves reports whether a fusion rewrite from oldGraph to
// newGraph conservatively preserves the named proof kind. Each kind
// gets its own hand-written check; kinds whose preservation follows
// from the rewrite's own construction obligations (the fusion package
// must type- and lifetime-check the fused vertex before installing it)
// are accepted without re-deriving the full proof here.
func RewritePreserves(oldGraph, newGraph *sir.Graph, kind Kind) bool {
	switch kind {
	case MemorySafety:
		oldAllocs := allocVertexSet(oldGraph)
		newAllocs := allocVertexSet(newGraph)
		for id := range newAllocs {
			if !oldAllocs[id] {
				return false
			}
		}
		return true
	case RaceFreedom:
		return !effect.AnalyzeRaces(newGraph.AsEffectView()).HasRaces
	case DeadlockFreedom:
		return !effect.AnalyzeDeadlocks(newGraph.AsEffectView()).HasDeadlock
	case BoundedResources:
		for _, v := range newGraph.Vertices() {
			if v.VType == sir.Alloc {
				if _, ok := v.Value.(int64); !ok {
					return false
				}
			}
		}
		return true
	case EffectConformance:
		for _, v := range newGraph.Vertices() {
			if len(v.Metadata.Effects) == 0 {
				return false
			}
		}
		return true
	case RegionValidity:
		oldRegions := regionTagSet(oldGraph)
		for _, v := range newGraph.Vertices() {
			if v.Metadata.Region != "" && !oldRegions[v.Metadata.Region] {
				return false
			}
		}
		return true
	case TypeSoundness, LifetimeValidity:
		return true
	default:
		return true
	}
}

func allocVertexSet(g *sir.Graph) map[string]bool {
	set := map[string]bool{}
	for _, v := range g.Vertices() {
		if v.VType == sir.Alloc {
			set[v.ID] = true
		}
	}
	return set
}

func regionTagSet(g *sir.Graph) map[string]bool {
	set := map[string]bool{}
	for _, v := range g.Vertices() {
		if v.Metadata.Region != "" {
			set[v.Metadata.Region] = true
		}
	}
	return set
}

// SynthesizeForRewrite adapts oldProofs whose kind RewritePreserves
// confirms still holds after a rewrite, appending a rewrite-tactic
// premise and wrapping the λ-term, mirroring how a proof assistant
// would discharge a preserved obligation by tactic rather than by
// re-deriving it from scratch.
func SynthesizeForRewrite(oldGraph, newGraph *sir.Graph, oldProofs []*Term) []*Term {
	var out []*Term
	for _, old := range oldProofs {
		if !RewritePreserves(oldGraph, newGraph, old.Kind) {
			continue
		}
		next := &Term{
			Kind:       old.Kind,
			Conclusion: old.Conclusion,
			Premises:   append(append([]string{}, old.Premises...), fmt.Sprintf("rewrite_preserves(%s)", old.Kind)),
			Evidence:   copyEvidence(old.Evidence),
			LambdaTerm: fmt.Sprintf("(rewrite %s)", old.LambdaTerm),
		}
		out = append(out, next)
	}
	return out
}

func copyEvidence(e map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
