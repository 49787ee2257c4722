// Package effect implements the concurrency effect lattice: a fixed
// enumeration of effects ordered by a partial order, capabilities that
// grant the right to perform an effect (optionally scoped to a region),
// function effect signatures, and the graph-level checks built on top
// of the lattice (effect conformance, race detection, deadlock
// detection).
//
// The lattice and capability types have no dependency on the SIR graph
// package; the graph-level checks (Checker, AnalyzeRaces,
// AnalyzeDeadlocks) accept a small consumer-defined GraphView interface
// so that sir.Graph can satisfy them without an import cycle.
//
// Errors:
//
//	ErrUnknownEffect - an Effect value outside the fixed enumeration was supplied.
package effect

import "errors"

// ErrUnknownEffect indicates an Effect value outside the fixed enumeration.
var ErrUnknownEffect = errors.New("effect: unknown effect value")
