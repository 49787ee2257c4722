// Package region implements the region-based memory model: regions,
// lifetimes, memory blocks, borrows, allocations, ownership transfer,
// and the borrow checker.
//
// Manager is process-wide state per spec §4.3/§9: rather than a
// package-level singleton, it is an explicit value a caller creates
// once and threads through every analysis that needs it, matching the
// core's "no global mutable state" design note.
//
// Errors:
//
//	ErrOutOfRegion    - an allocation would exceed its region's maximum size.
//	ErrDoubleFree      - Free called twice on the same allocation.
//	ErrBorrowedAtFree  - Free called while the block has a live borrow.
//	ErrNotOwner        - a move was attempted by a vertex that is not the current owner.
//	ErrConflictingBorrow - a borrow would violate mutable-exclusivity.
//	ErrUnknownRegion, ErrUnknownBlock, ErrUnknownAllocation, ErrUnknownBorrow - identity not found.
package region

import "errors"

var (
	ErrOutOfRegion       = errors.New("region: allocation exceeds region maximum size")
	ErrDoubleFree        = errors.New("region: double free")
	ErrBorrowedAtFree    = errors.New("region: free while borrowed")
	ErrNotOwner          = errors.New("region: mover is not current owner")
	ErrConflictingBorrow = errors.New("region: conflicting borrow")
	ErrUnknownRegion     = errors.New("region: unknown region")
	ErrUnknownBlock      = errors.New("region: unknown block")
	ErrUnknownAllocation = errors.New("region: unknown allocation")
	ErrUnknownBorrow     = errors.New("region: unknown borrow")
)
