// Package sir implements the Semantic Intermediate Representation: a
// typed, attributed, directed hypergraph carrying ownership, effect,
// hardware-affinity, region/lifetime, and provenance metadata.
//
// A Graph holds a vertex set and a hyperedge set behind separate
// sync.RWMutex locks (muVert for vertices, muEdgeAdj for edges and
// adjacency), mirroring the reference graph library's split-lock
// concurrency contract: graph construction is expected to run on one
// goroutine, but completed graphs may be read from several.
//
// Builder offers a fluent construction API (const/alloc/load/store/
// apply/phi/kernel/param/ret/connect/control/parallel/effectOrder)
// terminated by Build().
//
// Errors:
//
//	ErrNilGraph          - a nil *Graph was passed where one is required.
//	ErrEmptyVertexID     - a vertex identity was the empty string.
//	ErrVertexNotFound    - an operation referenced a non-existent vertex.
//	ErrEdgeNotFound      - an operation referenced a non-existent edge.
//	ErrDuplicateVertex   - an identity is already present; AddVertex does not
//	                       return it and replaces the stored vertex instead.
//	ErrInvalidEdge       - an edge endpoint is not a member of the graph.
//	ErrUnknownID         - FromDict met a vertex or edge type name it does not know.
package sir

import "errors"

var (
	ErrNilGraph        = errors.New("sir: nil graph")
	ErrEmptyVertexID   = errors.New("sir: vertex ID is empty")
	ErrVertexNotFound  = errors.New("sir: vertex not found")
	ErrEdgeNotFound    = errors.New("sir: edge not found")
	ErrDuplicateVertex = errors.New("sir: vertex already present")
	ErrInvalidEdge     = errors.New("sir: edge endpoint not present in graph")
	ErrUnknownID       = errors.New("sir: unknown identity")
)
