package effect

// Capability grants the right to perform Effect, optionally scoped to a
// named region, optionally exclusive.
type Capability struct {
	Effect    Effect
	Region    string // empty means unscoped
	Exclusive bool
}

// CanPerform reports whether this capability covers the given effect.
func (c Capability) CanPerform(e Effect) bool {
	return Leq(e, c.Effect)
}

// Combine merges two capabilities: the join of their effects, their
// region if they agree (else unscoped), and exclusivity only if both
// were exclusive.
func (c Capability) Combine(other Capability) Capability {
	region := ""
	if c.Region == other.Region {
		region = c.Region
	}
	return Capability{
		Effect:    Join(c.Effect, other.Effect),
		Region:    region,
		Exclusive: c.Exclusive && other.Exclusive,
	}
}

// FunctionEffect is the effect signature of a function type: the
// effects it may perform, the capabilities it requires from its
// caller, the capabilities it grants to its continuation, and a
// derived Pure flag.
type FunctionEffect struct {
	Effects      []Effect
	RequiredCaps []Capability
	GrantedCaps  []Capability
	Pure         bool
}

// NewFunctionEffect builds a FunctionEffect from an effect set, deriving
// Pure as (effects empty) or (effects == {Pure}).
func NewFunctionEffect(effects []Effect, required, granted []Capability) FunctionEffect {
	return FunctionEffect{
		Effects:      effects,
		RequiredCaps: required,
		GrantedCaps:  granted,
		Pure:         isPureSet(effects),
	}
}

func isPureSet(effects []Effect) bool {
	if len(effects) == 0 {
		return true
	}
	for _, e := range effects {
		if e != Pure {
			return false
		}
	}
	return true
}

// PureFn returns the effect signature of a pure function.
func PureFn() FunctionEffect {
	return NewFunctionEffect([]Effect{Pure}, nil, nil)
}

// IOFn returns the effect signature of an I/O-performing function.
func IOFn() FunctionEffect {
	return NewFunctionEffect([]Effect{IO}, nil, nil)
}

// ConcurrentFn returns the effect signature of a function performing
// the given set of concurrency effects.
func ConcurrentFn(effects []Effect) FunctionEffect {
	return NewFunctionEffect(effects, nil, nil)
}

// Join composes two function effects for sequential composition: the
// union of effects and required capabilities, the intersection of
// granted capabilities (only capabilities both sides grant survive).
func (f FunctionEffect) Join(other FunctionEffect) FunctionEffect {
	effects := unionEffects(f.Effects, other.Effects)
	required := unionCaps(f.RequiredCaps, other.RequiredCaps)
	granted := intersectCaps(f.GrantedCaps, other.GrantedCaps)
	return NewFunctionEffect(effects, required, granted)
}

// CanCallWith reports whether every required capability is covered by
// some capability in caps.
func (f FunctionEffect) CanCallWith(caps []Capability) bool {
	for _, req := range f.RequiredCaps {
		ok := false
		for _, c := range caps {
			if c.CanPerform(req.Effect) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func unionEffects(a, b []Effect) []Effect {
	seen := make(map[Effect]bool, len(a)+len(b))
	out := make([]Effect, 0, len(a)+len(b))
	for _, e := range append(append([]Effect{}, a...), b...) {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

func unionCaps(a, b []Capability) []Capability {
	return append(append([]Capability{}, a...), b...)
}

func intersectCaps(a, b []Capability) []Capability {
	out := make([]Capability, 0)
	for _, x := range a {
		for _, y := range b {
			if x == y {
				out = append(out, x)
				break
			}
		}
	}
	return out
}
