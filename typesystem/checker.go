package typesystem

import (
	"github.com/robertringler/aion/diag"
	"github.com/robertringler/aion/effect"
	"github.com/robertringler/aion/region"
	"github.com/robertringler/aion/sir"
)

// TypeJudgment is the output of expression typing: an inferred type,
// the effects the expression may perform, and whether the judgment is
// valid (no violation was raised deriving it).
type TypeJudgment struct {
	Type    *Type
	Effects []effect.Effect
	Valid   bool
}

// WithType returns a copy of j with a different inferred type.
func (j TypeJudgment) WithType(t *Type) TypeJudgment {
	j.Type = t
	return j
}

// WithEffects returns a copy of j with a different effect set.
func (j TypeJudgment) WithEffects(effects []effect.Effect) TypeJudgment {
	j.Effects = effects
	return j
}

// Checker drives the three typing judgments of §4.2 over a sir.Graph.
type Checker struct {
	// calleeSignatures optionally supplies Fn types for Apply callees by
	// name; checkApply takes a known callee's return type and effects
	// from it. Argument types are not checked against Params.
	calleeSignatures map[string]*Type
}

// NewChecker returns a Checker with no known callee signatures.
func NewChecker() *Checker {
	return &Checker{calleeSignatures: map[string]*Type{}}
}

// DeclareCallee registers the Fn type of a callee so Apply vertices
// invoking it are typed with its return type and effects.
func (c *Checker) DeclareCallee(name string, fn *Type) {
	c.calleeSignatures[name] = fn
}

// CheckExpr types a single vertex: Γ;Δ ⊢ e ⇝ v : τ ▷ φ.
func (c *Checker) CheckExpr(ctx *TypeContext, v *sir.Vertex) TypeJudgment {
	switch v.VType {
	case sir.Const:
		return TypeJudgment{Type: c.inferConstType(v.Value), Effects: v.Metadata.Effects, Valid: true}
	case sir.Parameter:
		if t, ok := ctx.Lookup(v.ID); ok {
			return TypeJudgment{Type: t, Effects: v.Metadata.Effects, Valid: true}
		}
		return TypeJudgment{Type: nil, Effects: v.Metadata.Effects, Valid: false}
	case sir.Alloc:
		return TypeJudgment{Type: Ptr(I8, v.Metadata.Region), Effects: v.Metadata.Effects, Valid: true}
	case sir.Load, sir.Store:
		if t, ok := ctx.Lookup(v.ID); ok {
			return TypeJudgment{Type: t, Effects: v.Metadata.Effects, Valid: true}
		}
		return TypeJudgment{Type: Unit, Effects: v.Metadata.Effects, Valid: true}
	case sir.Apply:
		return c.checkApply(ctx, v)
	default:
		return TypeJudgment{Type: Unit, Effects: v.Metadata.Effects, Valid: true}
	}
}

func (c *Checker) checkApply(ctx *TypeContext, v *sir.Vertex) TypeJudgment {
	callee, _ := v.Value.(string)
	fn, known := c.calleeSignatures[callee]
	if !known {
		return TypeJudgment{Type: Unit, Effects: v.Metadata.Effects, Valid: true}
	}
	return TypeJudgment{Type: fn.Ret, Effects: fn.Effects, Valid: true}
}

func (c *Checker) inferConstType(value interface{}) *Type {
	switch value.(type) {
	case bool:
		return Bool
	case int, int32, int64:
		return I64
	case float32, float64:
		return F64
	default:
		return Unit
	}
}

// CheckProgram types every vertex in topological order, threading a
// TypeContext and LinearContext: Γ;Δ ⊢ prog ⊣ Δ'. A vertex whose bound
// type is Linear/Affine is treated as consumed the first time it is
// used as a DataFlow edge source.
func (c *Checker) CheckProgram(g *sir.Graph) (*TypeContext, *LinearContext, []diag.Violation) {
	ctx := NewTypeContext()
	lctx := NewLinearContext()
	var violations []diag.Violation

	order, _ := g.TopologicalOrder()
	for _, v := range order {
		judgment := c.CheckExpr(ctx, v)
		if !judgment.Valid {
			violations = append(violations, diag.New(diag.TypeError, "could not type vertex %s", v.ID).WithVertices(v.ID))
			continue
		}
		ctx = ctx.Bind(v.ID, judgment.Type)
		if judgment.Type != nil && (judgment.Type.Kind == KindLinear || judgment.Type.Kind == KindAffine) {
			lctx = lctx.AddResource(v.ID, judgment.Type.Kind == KindLinear)
		}
	}

	for _, e := range g.DataFlowEdges() {
		for _, srcID := range e.Sources {
			if _, tracked := lctx.resources[srcID]; !tracked {
				continue
			}
			next, err := lctx.Consume(srcID)
			if err != nil {
				violations = append(violations, diag.New(diag.LinearityViolation, "double consume of %s", srcID).WithVertices(srcID))
				continue
			}
			lctx = next
		}
	}

	for _, name := range lctx.CheckAllConsumed() {
		violations = append(violations, diag.New(diag.LinearityViolation, "linear resource %s unconsumed", name).WithVertices(name))
	}

	return ctx, lctx, violations
}

// CheckSafety runs Γ ⊢ prog safe: structural memory safety, the
// region/borrow model's safety and borrow-exclusivity passes (when mgr
// is non-nil), then race and deadlock analysis, returning every
// violation found.
func (c *Checker) CheckSafety(g *sir.Graph, mgr *region.Manager) []diag.Violation {
	var out []diag.Violation
	out = append(out, g.VerifyMemorySafety()...)

	if mgr != nil {
		out = append(out, mgr.CheckSafety(g)...)
		out = append(out, region.NewBorrowChecker().Run(g, mgr)...)
	}

	view := g.AsEffectView()
	races := effect.AnalyzeRaces(view)
	if races.HasRaces {
		for _, pair := range races.RacePairs {
			out = append(out, diag.New(diag.RaceDetected, "race between %s and %s", pair[0], pair[1]).WithVertices(pair[0], pair[1]))
		}
	}
	deadlocks := effect.AnalyzeDeadlocks(view)
	if deadlocks.HasDeadlock {
		for _, cycle := range deadlocks.Cycles {
			out = append(out, diag.New(diag.DeadlockDetected, "synchronization cycle: %v", cycle).WithVertices(cycle...))
		}
	}
	return out
}
