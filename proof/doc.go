// Package proof implements the proof system: proof terms, a
// synthesizer that derives one proof per kind from a sir.Graph, a
// small trusted verifier, and capability-bitmap generation.
//
// The verifier is deliberately small and auditable (§1's non-goal: not
// a general theorem prover) — each proof kind has one hand-written
// evidence predicate in verifier.go.
//
// Errors:
//
//	ErrUnknownProofKind - a ProofTerm named a kind outside the fixed enumeration.
//	ErrMissingAxiom     - a proof's premise was not found in the verifier's context.
package proof

import "errors"

var (
	ErrUnknownProofKind = errors.New("proof: unknown proof kind")
	ErrMissingAxiom     = errors.New("proof: premise not established")
)
