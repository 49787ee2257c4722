package typesystem

// TypeContext is a persistent (copy-on-write) binding environment:
// variable name → type, plus refinement predicates attached to
// already-bound names.
type TypeContext struct {
	bindings    map[string]*Type
	refinements map[string][]string
}

// NewTypeContext returns an empty context.
func NewTypeContext() *TypeContext {
	return &TypeContext{bindings: map[string]*Type{}, refinements: map[string][]string{}}
}

// Bind returns a new context extending c with name ↦ t, leaving c
// itself untouched.
func (c *TypeContext) Bind(name string, t *Type) *TypeContext {
	out := c.copy()
	out.bindings[name] = t
	return out
}

// Lookup returns the type bound to name, or (nil, false).
func (c *TypeContext) Lookup(name string) (*Type, bool) {
	t, ok := c.bindings[name]
	return t, ok
}

// AddRefinement returns a new context with an additional refinement
// predicate recorded against the already-bound name.
func (c *TypeContext) AddRefinement(name, predicate string) *TypeContext {
	out := c.copy()
	out.refinements[name] = append(append([]string{}, c.refinements[name]...), predicate)
	return out
}

// Refinements returns every predicate recorded against name.
func (c *TypeContext) Refinements(name string) []string {
	return c.refinements[name]
}

func (c *TypeContext) copy() *TypeContext {
	out := &TypeContext{bindings: make(map[string]*Type, len(c.bindings)), refinements: make(map[string][]string, len(c.refinements))}
	for k, v := range c.bindings {
		out.bindings[k] = v
	}
	for k, v := range c.refinements {
		out.refinements[k] = append([]string{}, v...)
	}
	return out
}

// resourceKind distinguishes linear (exactly-once) from affine
// (at-most-once) resources tracked by LinearContext.
type resourceKind int

const (
	resourceLinear resourceKind = iota
	resourceAffine
)

type resource struct {
	kind     resourceKind
	consumed bool
}

// LinearContext tracks linear and affine resources through a
// topological walk: linear resources must be consumed exactly once,
// affine resources at most once.
type LinearContext struct {
	resources map[string]resource
}

// NewLinearContext returns an empty LinearContext.
func NewLinearContext() *LinearContext {
	return &LinearContext{resources: map[string]resource{}}
}

// AddResource returns a new context with name tracked as a fresh,
// unconsumed resource of the given linearity.
func (c *LinearContext) AddResource(name string, linear bool) *LinearContext {
	out := c.copy()
	kind := resourceAffine
	if linear {
		kind = resourceLinear
	}
	out.resources[name] = resource{kind: kind}
	return out
}

// Consume marks name consumed, returning the updated context. It
// fails with ErrDoubleConsume if name was already consumed, or
// ErrUnknownBinding if name was never added.
func (c *LinearContext) Consume(name string) (*LinearContext, error) {
	r, ok := c.resources[name]
	if !ok {
		return c, ErrUnknownBinding
	}
	if r.consumed {
		return c, ErrDoubleConsume
	}
	out := c.copy()
	r.consumed = true
	out.resources[name] = r
	return out, nil
}

// CheckAllConsumed returns the names of every linear resource that was
// never consumed. Affine resources need not be consumed.
func (c *LinearContext) CheckAllConsumed() []string {
	var unconsumed []string
	for name, r := range c.resources {
		if r.kind == resourceLinear && !r.consumed {
			unconsumed = append(unconsumed, name)
		}
	}
	return unconsumed
}

// Split partitions the context in two independent copies, for
// branching control flow (e.g. both arms of a Branch vertex) where
// each arm must consume its own share of linear resources
// independently.
func (c *LinearContext) Split() (*LinearContext, *LinearContext) {
	return c.copy(), c.copy()
}

func (c *LinearContext) copy() *LinearContext {
	out := &LinearContext{resources: make(map[string]resource, len(c.resources))}
	for k, v := range c.resources {
		out.resources[k] = v
	}
	return out
}
