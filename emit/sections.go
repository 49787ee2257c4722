package emit

import (
	"encoding/json"

	"github.com/robertringler/aion/sir"
)

// SIRSection returns the `.aion_sir` bytes for g (§6), delegating to
// sir.Graph's own lossless serializer.
func SIRSection(g *sir.Graph) ([]byte, error) {
	return g.Serialize()
}

// ProofSection returns the `.aion_proof` bytes: the versioned envelope
// carried on m.ProofEnvelope.
func (m *Manifest) ProofSection() ([]byte, error) {
	return json.Marshal(m.ProofEnvelope)
}

// CapsSection returns the single little-endian byte for `.aion_caps`.
func (m *Manifest) CapsSection() []byte {
	return []byte{m.CapabilityByte}
}

// JSON returns the full manifest (vertices, edges, regions, caps,
// proofs) as one JSON document, for tooling that wants the whole
// backend contract in a single artifact rather than three sections.
func (m *Manifest) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
