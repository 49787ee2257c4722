// Package emit exposes the backend-facing view of a scheduled,
// proved SIR graph (§4.8): vertices enumerated in scheduled order with
// full metadata, edges with variant/endpoints/attributes, a region
// summary, a capability bitmap for `.aion_caps`, and a serialized
// proof section for `.aion_proof`. The backends that consume this are
// themselves out of scope; emit only builds and serializes the
// contract.
//
// Errors:
//
//	ErrNoSchedule is returned when BuildManifest is given a schedule
//	result whose task set does not cover the graph's vertices.
package emit

import "errors"

// ErrNoSchedule indicates the supplied schedule does not account for
// every vertex in the graph being emitted.
var ErrNoSchedule = errors.New("emit: schedule does not cover every graph vertex")
