// Package fusion implements the kernel-fusion optimizer (§4.6):
// pattern detection over a sir.Graph, a legality predicate, a rewrite
// procedure that collapses a detected pattern into one vertex while
// re-deriving preserved proofs via package proof's rewrite tactic, and
// a zero-copy pass eliminating redundant cross-language transfers.
//
// Detection runs once on the input graph; rewrites are applied on a
// clone in pattern-priority order, matching the "single outer pass
// suffices" contract — nested or newly exposed patterns require
// calling Optimize again, which is also what makes repeated
// application idempotent once no new pattern is found.
package fusion

import "errors"

var ErrPatternNotFusible = errors.New("fusion: pattern failed its legality predicate")
