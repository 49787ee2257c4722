package proof

// Kind enumerates the eight proof kinds. Order is fixed: it defines
// the bit position each kind occupies in the capability bitmap (§4.5):
// bit 0 MemorySafety, bit 1 RaceFreedom, ..., bit 7 LifetimeValidity.
type Kind int

const (
	MemorySafety Kind = iota
	RaceFreedom
	DeadlockFreedom
	BoundedResources
	TypeSoundness
	EffectConformance
	RegionValidity
	LifetimeValidity
)

var kindNames = [...]string{
	"MemorySafety", "RaceFreedom", "DeadlockFreedom", "BoundedResources",
	"TypeSoundness", "EffectConformance", "RegionValidity", "LifetimeValidity",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// AllKinds returns every proof kind in bitmap-bit order.
func AllKinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range kindNames {
		out[i] = Kind(i)
	}
	return out
}

// Term is a proof term: a conclusion, the premises it rests on, a
// kind-specific evidence dictionary, and an optional λ-encoded witness
// in A-normal form as text. Terms are serializable and carry no
// references into the graph beyond identity strings.
type Term struct {
	Kind       Kind                   `json:"kind"`
	Conclusion string                 `json:"conclusion"`
	Premises   []string               `json:"premises"`
	Evidence   map[string]interface{} `json:"evidence"`
	LambdaTerm string                 `json:"lambda_term,omitempty"`
}

// NewTerm builds a Term with an empty evidence map ready to populate.
func NewTerm(kind Kind, conclusion string, premises ...string) *Term {
	return &Term{Kind: kind, Conclusion: conclusion, Premises: premises, Evidence: map[string]interface{}{}}
}

// Dict is the serialized form of a Term in the `.aion_proof` envelope (§6).
type Dict struct {
	Kind       string                 `json:"kind"`
	Conclusion string                 `json:"conclusion"`
	Premises   []string               `json:"premises"`
	Evidence   map[string]interface{} `json:"evidence"`
	LambdaTerm string                 `json:"lambda_term,omitempty"`
}

// ToDict converts t to its serialized form.
func (t *Term) ToDict() Dict {
	return Dict{Kind: t.Kind.String(), Conclusion: t.Conclusion, Premises: t.Premises, Evidence: t.Evidence, LambdaTerm: t.LambdaTerm}
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for i, n := range kindNames {
		m[n] = Kind(i)
	}
	return m
}()

// FromDict rebuilds a Term from its serialized form.
func FromDict(d Dict) (*Term, error) {
	k, ok := kindByName[d.Kind]
	if !ok {
		return nil, ErrUnknownProofKind
	}
	return &Term{Kind: k, Conclusion: d.Conclusion, Premises: d.Premises, Evidence: d.Evidence, LambdaTerm: d.LambdaTerm}, nil
}

// Envelope is the versioned `.aion_proof` section.
type Envelope struct {
	Version string `json:"version"`
	Proofs  []Dict `json:"proofs"`
}
