package proof

import "fmt"

// Context holds axioms, assumptions, and previously verified lemmas
// against which a Term's premises are checked.
type Context struct {
	Axioms      []string
	Lemmas      map[string]*Term
	Assumptions []string
}

// NewContext returns a Context seeded with the core axioms of §4.5:
// memory, borrow, and concurrency axioms a proof's premises may cite.
func NewContext() *Context {
	return &Context{
		Axioms: []string{
			"valid_alloc: forall r. alloc(r) -> valid(r)",
			"free_invalid: forall r. free(r) -> not valid(r)",
			"region_bound: forall ptr,r. in_region(ptr,r) -> valid(ptr)",
			"borrow_valid: forall b. borrow(b) -> valid(source(b))",
			"mut_exclusive: forall b. mut_borrow(b) -> exclusive(b)",
			"lifetime_contained: forall b. lifetime(b) subseteq lifetime(source(b))",
			"ordered_safe: forall a,b. ordered(a,b) -> not race(a,b)",
			"disjoint_safe: forall a,b. disjoint(a,b) -> not race(a,b)",
			"atomic_linearizable: forall op. atomic(op) -> linearizable(op)",
		},
		Lemmas: map[string]*Term{},
	}
}

// Assume returns a copy of c with an additional assumption, leaving c
// itself untouched.
func (c *Context) Assume(assumption string) *Context {
	next := &Context{
		Axioms:      append([]string(nil), c.Axioms...),
		Lemmas:      make(map[string]*Term, len(c.Lemmas)),
		Assumptions: append(append([]string(nil), c.Assumptions...), assumption),
	}
	for k, v := range c.Lemmas {
		next.Lemmas[k] = v
	}
	return next
}

// recognizedPredicates names the parameterized predicate heads a
// synthesized premise may use (e.g. "valid_source(v1)") beyond the
// named axioms themselves — these are established by the synthesis
// evidence the same Term carries, not by a separate axiom lookup.
var recognizedPredicates = map[string]bool{
	"valid_source": true, "exclusive": true, "declared": true,
	"in_region": true, "bounds_check": true,
}

// axiomName returns the short name a "name: statement" axiom is filed
// under, used to match bare premises like "valid_alloc" against the
// full axiom text.
func axiomName(axiom string) string {
	if i := indexByte(axiom, ':'); i >= 0 {
		return axiom[:i]
	}
	return axiom
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// premiseHead strips a parameterized premise like "lifetime_contained(a, b)"
// down to its predicate name for matching against axioms and lemmas.
func premiseHead(premise string) string {
	if i := indexByte(premise, '('); i >= 0 {
		return premise[:i]
	}
	return premise
}

func (c *Context) isValidPremise(premise string) bool {
	head := premiseHead(premise)
	for _, a := range c.Axioms {
		if axiomName(a) == head {
			return true
		}
	}
	if recognizedPredicates[head] {
		return true
	}
	for _, a := range c.Assumptions {
		if a == premise || premiseHead(a) == head {
			return true
		}
	}
	for conclusion := range c.Lemmas {
		if conclusion == premise || premiseHead(conclusion) == head {
			return true
		}
	}
	return false
}

// Verifier is the small trusted checker that validates proof terms
// against a Context at load time: every premise must resolve to an
// axiom, assumption, or previously verified lemma, and the evidence
// dictionary must support the claimed conclusion. It never performs
// general theorem proving (§1 non-goal); each kind has exactly one
// hand-written evidence predicate below.
type Verifier struct {
	Context *Context
	Errors  []string
}

// NewVerifier returns a Verifier seeded with the core axioms.
func NewVerifier() *Verifier {
	return &Verifier{Context: NewContext()}
}

// Verify checks a single proof term's premises and evidence.
func (v *Verifier) Verify(t *Term) bool {
	for _, premise := range t.Premises {
		if !v.Context.isValidPremise(premise) {
			v.Errors = append(v.Errors, fmt.Sprintf("invalid premise: %s", premise))
			return false
		}
	}

	switch t.Kind {
	case MemorySafety:
		return v.verifyMemorySafety(t)
	case RaceFreedom:
		return v.verifyRaceFreedom(t)
	case DeadlockFreedom:
		return v.verifyDeadlockFreedom(t)
	case BoundedResources:
		return v.verifyBoundedResources(t)
	case TypeSoundness:
		return len(t.Premises) > 0
	case EffectConformance:
		return v.verifyEffectConformance(t)
	case RegionValidity:
		return v.verifyRegionValidity(t)
	case LifetimeValidity:
		return v.verifyLifetimeValidity(t)
	default:
		v.Errors = append(v.Errors, fmt.Sprintf("unknown proof kind: %s", t.Kind))
		return false
	}
}

func (v *Verifier) verifyMemorySafety(t *Term) bool {
	allocs, _ := t.Evidence["allocations"].([]map[string]interface{})
	for _, a := range allocs {
		if _, hasRegion := a["region"]; !hasRegion {
			v.Errors = append(v.Errors, fmt.Sprintf("invalid allocation: %v", a))
			return false
		}
		if _, hasSize := a["size"]; !hasSize {
			v.Errors = append(v.Errors, fmt.Sprintf("invalid allocation: %v", a))
			return false
		}
	}
	return true
}

func (v *Verifier) verifyRaceFreedom(t *Term) bool {
	hasRaces, _ := t.Evidence["has_races"].(bool)
	if hasRaces {
		v.Errors = append(v.Errors, "race freedom evidence reports races")
		return false
	}
	return true
}

func (v *Verifier) verifyDeadlockFreedom(t *Term) bool {
	hasDeadlock, _ := t.Evidence["has_deadlock"].(bool)
	if hasDeadlock {
		v.Errors = append(v.Errors, "deadlock freedom evidence reports a cycle")
		return false
	}
	return true
}

func (v *Verifier) verifyBoundedResources(t *Term) bool {
	allocs, _ := t.Evidence["allocations"].([]map[string]interface{})
	for _, a := range allocs {
		bound, ok := a["bound"]
		if !ok || bound == "unbounded" {
			v.Errors = append(v.Errors, fmt.Sprintf("unbounded allocation: %v", a))
			return false
		}
	}
	return true
}

func (v *Verifier) verifyEffectConformance(t *Term) bool {
	declared, _ := t.Evidence["declared_effects"].([]string)
	actual, _ := t.Evidence["actual_effects"].([]string)
	declaredSet := map[string]bool{}
	for _, d := range declared {
		declaredSet[d] = true
	}
	for _, a := range actual {
		if !declaredSet[a] {
			v.Errors = append(v.Errors, fmt.Sprintf("undeclared effect: %s", a))
			return false
		}
	}
	return true
}

func (v *Verifier) verifyRegionValidity(t *Term) bool {
	if inBounds, ok := t.Evidence["in_bounds"].(bool); ok && !inBounds {
		v.Errors = append(v.Errors, fmt.Sprintf("region access out of bounds: %v", t.Evidence))
		return false
	}
	return true
}

func (v *Verifier) verifyLifetimeValidity(t *Term) bool {
	if satisfied, ok := t.Evidence["satisfied"].(bool); ok && !satisfied {
		v.Errors = append(v.Errors, fmt.Sprintf("lifetime violation: %v", t.Evidence))
		return false
	}
	return true
}

// VerifyProgram verifies every term in order, adding each conclusion
// as a lemma in the context as soon as it is established so that later
// terms may cite earlier conclusions as premises. It stops at the
// first failure.
func (v *Verifier) VerifyProgram(terms []*Term) (bool, []string) {
	v.Errors = nil
	for _, t := range terms {
		if !v.Verify(t) {
			return false, v.Errors
		}
		v.Context = v.Context.Assume(t.Conclusion)
		v.Context.Lemmas[t.Conclusion] = t
	}
	return true, nil
}

// capabilityBit maps a proof Kind to its capability-bitmap bit, fixed
// by Kind's iota order.
func capabilityBit(k Kind) byte { return 1 << uint(k) }

// GenerateCapabilityBitmap produces the single-byte `.aion_caps`
// bitmap: bit i is set only for a Kind whose term appears in terms AND
// verifies successfully against a fresh Verifier, never merely for a
// kind that was attempted.
func GenerateCapabilityBitmap(terms []*Term) byte {
	v := NewVerifier()
	var caps byte
	for _, t := range terms {
		if v.Verify(t) {
			caps |= capabilityBit(t.Kind)
		}
	}
	return caps
}
