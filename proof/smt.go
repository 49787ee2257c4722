package proof

import "fmt"

// Constraint is a single named SMT constraint: a formula string plus
// the free variables it mentions.
type Constraint struct {
	Name      string
	Formula   string
	Variables []string
}

// Solver is the tiny wrapper the core accepts constraints through. The
// default implementation (Stub) is a permissive stub that always
// answers satisfiable; a real solver may be plugged in behind this
// interface without changing the rest of the core.
type Solver interface {
	AssertEq(lhs, rhs string)
	AssertLt(lhs, rhs string)
	AssertLe(lhs, rhs string)
	AssertDisjoint(r1, r2 string, size1, size2 string)
	Check() bool
	CheckUnsat() bool
	ToSMTLIB() string
}

// Stub is the default permissive Solver: it accumulates constraints
// for inspection but always reports satisfiable.
type Stub struct {
	constraints []Constraint
}

// NewStub returns an empty Stub solver.
func NewStub() *Stub { return &Stub{} }

func (s *Stub) add(name, formula string, vars ...string) {
	s.constraints = append(s.constraints, Constraint{Name: name, Formula: formula, Variables: vars})
}

func (s *Stub) AssertEq(lhs, rhs string) { s.add("eq", fmt.Sprintf("(= %s %s)", lhs, rhs), lhs, rhs) }
func (s *Stub) AssertLt(lhs, rhs string) { s.add("lt", fmt.Sprintf("(< %s %s)", lhs, rhs), lhs, rhs) }
func (s *Stub) AssertLe(lhs, rhs string) { s.add("le", fmt.Sprintf("(<= %s %s)", lhs, rhs), lhs, rhs) }

// AssertDisjoint encodes non-overlap of two [offset,offset+size)
// ranges as or(r1+size1 ≤ r2, r2+size2 ≤ r1).
func (s *Stub) AssertDisjoint(r1, r2, size1, size2 string) {
	formula := fmt.Sprintf("(or (<= (+ %s %s) %s) (<= (+ %s %s) %s))", r1, size1, r2, r2, size2, r1)
	s.add("disjoint", formula, r1, r2, size1, size2)
}

func (s *Stub) Check() bool       { return true }
func (s *Stub) CheckUnsat() bool  { return false }
func (s *Stub) ToSMTLIB() string {
	out := ""
	for _, c := range s.constraints {
		out += fmt.Sprintf("(assert %s)\n", c.Formula)
	}
	return out
}
