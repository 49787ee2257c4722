package typesystem

import (
	"fmt"
	"strings"

	"github.com/robertringler/aion/effect"
)

// Kind tags the variant of a Type.
type Kind int

const (
	KindUnit Kind = iota
	KindBool
	KindInt
	KindFloat
	KindPtr
	KindArray
	KindTensor
	KindFn
	KindStruct
	KindRegion
	KindDependentFn // Π(x:τ).σ
	KindSigma       // Σ(x:τ).σ
	KindRefinement  // {x:τ | φ}
	KindLinear
	KindAffine
)

// Type is a tagged record over every AION type variant. Refinement
// predicates are opaque SMT strings carried verbatim, never parsed or
// evaluated by the core.
type Type struct {
	Kind Kind
	Name string // distinguishing name for struct/region/dependent binder

	Bits   int  // int/float
	Signed bool // int

	Pointee *Type  // ptr
	Region  string // ptr

	Elem   *Type // array/tensor element
	Length int   // array
	Shape  []int // tensor

	Params  []*Type         // fn/dependent fn
	Ret     *Type           // fn/dependent fn/sigma body
	Effects []effect.Effect // fn

	Fields map[string]*Type // struct

	Refinement string // opaque SMT predicate string

	Inner *Type // linear/affine wrapped type
}

// Built-in base types.
var (
	Unit  = &Type{Kind: KindUnit, Name: "unit"}
	Bool  = &Type{Kind: KindBool, Name: "bool"}
	I8    = &Type{Kind: KindInt, Name: "i8", Bits: 8, Signed: true}
	I16   = &Type{Kind: KindInt, Name: "i16", Bits: 16, Signed: true}
	I32   = &Type{Kind: KindInt, Name: "i32", Bits: 32, Signed: true}
	I64   = &Type{Kind: KindInt, Name: "i64", Bits: 64, Signed: true}
	F32   = &Type{Kind: KindFloat, Name: "f32", Bits: 32}
	F64   = &Type{Kind: KindFloat, Name: "f64", Bits: 64}
)

// Ptr builds a pointer-to-pointee type in the given region.
func Ptr(pointee *Type, region string) *Type {
	return &Type{Kind: KindPtr, Name: "ptr", Pointee: pointee, Region: region}
}

// Array builds a fixed-length array type.
func Array(elem *Type, length int) *Type {
	return &Type{Kind: KindArray, Name: "array", Elem: elem, Length: length}
}

// Tensor builds a shaped tensor type.
func Tensor(elem *Type, shape []int) *Type {
	return &Type{Kind: KindTensor, Name: "tensor", Elem: elem, Shape: shape}
}

// Fn builds a function type with an effect signature.
func Fn(params []*Type, ret *Type, effects []effect.Effect) *Type {
	return &Type{Kind: KindFn, Name: "fn", Params: params, Ret: ret, Effects: effects}
}

// Struct builds a named struct type.
func Struct(name string, fields map[string]*Type) *Type {
	return &Type{Kind: KindStruct, Name: name, Fields: fields}
}

// RegionType builds a region-handle type.
func RegionType(name string) *Type {
	return &Type{Kind: KindRegion, Name: name}
}

// DependentFn builds Π(x:τ).σ — a function type depending on the
// value of its parameter.
func DependentFn(binder string, paramType, body *Type) *Type {
	return &Type{Kind: KindDependentFn, Name: binder, Params: []*Type{paramType}, Ret: body}
}

// Sigma builds Σ(x:τ).σ — a dependent pair type.
func Sigma(binder string, fst, snd *Type) *Type {
	return &Type{Kind: KindSigma, Name: binder, Params: []*Type{fst}, Ret: snd}
}

// Refinement builds {x:τ | φ}, φ carried verbatim and never evaluated.
func Refinement(base *Type, predicate string) *Type {
	return &Type{Kind: KindRefinement, Name: base.Name, Inner: base, Refinement: predicate}
}

// Linear builds a linear(τ): must be consumed exactly once.
func Linear(inner *Type) *Type {
	return &Type{Kind: KindLinear, Name: "linear", Inner: inner}
}

// Affine builds an affine(τ): consumed at most once.
func Affine(inner *Type) *Type {
	return &Type{Kind: KindAffine, Name: "affine", Inner: inner}
}

// Key returns a canonical string suitable for map-keyed equality,
// consistent with Equal (unlike the source's Type, whose __hash__
// considered refinement but __eq__ did not — this port keeps both
// consistent, considering kind, name, and refinement alike).
func (t *Type) Key() string {
	if t == nil {
		return "<nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%s", t.Kind, t.Name)
	if t.Refinement != "" {
		fmt.Fprintf(&b, "|%s", t.Refinement)
	}
	switch t.Kind {
	case KindInt, KindFloat:
		fmt.Fprintf(&b, ":%d:%v", t.Bits, t.Signed)
	case KindPtr:
		fmt.Fprintf(&b, ":(%s)@%s", t.Pointee.Key(), t.Region)
	case KindArray:
		fmt.Fprintf(&b, ":(%s)[%d]", t.Elem.Key(), t.Length)
	case KindTensor:
		fmt.Fprintf(&b, ":(%s)%v", t.Elem.Key(), t.Shape)
	case KindLinear, KindAffine, KindRefinement:
		fmt.Fprintf(&b, ":(%s)", t.Inner.Key())
	}
	return b.String()
}

// Equal reports structural equality, consistent with Key.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Key() == other.Key()
}

// Subtype reports t <: other: integer subtyping by bit width, pointer
// subtyping by recursive pointee subtyping within the same region,
// refinement ignored (delegated to the opaque SMT interface), else
// structural equality.
func Subtype(t, other *Type) bool {
	if t.Equal(other) {
		return true
	}
	if t.Kind == KindRefinement {
		return Subtype(t.Inner, other)
	}
	if other.Kind == KindRefinement {
		return Subtype(t, other.Inner)
	}
	if t.Kind == KindInt && other.Kind == KindInt {
		return t.Signed == other.Signed && t.Bits <= other.Bits
	}
	if t.Kind == KindPtr && other.Kind == KindPtr {
		return t.Region == other.Region && Subtype(t.Pointee, other.Pointee)
	}
	return false
}

// Unify returns the supremum of t and other, or nil if none exists.
func Unify(t, other *Type) *Type {
	if t.Equal(other) {
		return t
	}
	if Subtype(t, other) {
		return other
	}
	if Subtype(other, t) {
		return t
	}
	return nil
}
