// Package diag defines the shared violation taxonomy used by every
// analysis in the core. Analyses never panic on a malformed program;
// they collect Violations and return them alongside their result,
// reserving a genuine Go error for programmer misuse of the API.
package diag

import "fmt"

// Kind enumerates the violation taxonomy.
type Kind int

const (
	InvalidGraph Kind = iota
	TypeError
	LinearityViolation
	MemorySafetyViolation
	BorrowViolation
	RegionError
	RaceDetected
	DeadlockDetected
	ProofInvalid
	UnsupportedOperation
)

// String renders the Kind's taxonomy name.
func (k Kind) String() string {
	switch k {
	case InvalidGraph:
		return "InvalidGraph"
	case TypeError:
		return "TypeError"
	case LinearityViolation:
		return "LinearityViolation"
	case MemorySafetyViolation:
		return "MemorySafetyViolation"
	case BorrowViolation:
		return "BorrowViolation"
	case RegionError:
		return "RegionError"
	case RaceDetected:
		return "RaceDetected"
	case DeadlockDetected:
		return "DeadlockDetected"
	case ProofInvalid:
		return "ProofInvalid"
	case UnsupportedOperation:
		return "UnsupportedOperation"
	default:
		return "Unknown"
	}
}

// Violation is a single diagnostic produced by an analysis. VertexIDs
// names the vertices implicated, in no particular order beyond being
// stable for a given input.
type Violation struct {
	Kind      Kind
	Message   string
	VertexIDs []string
}

// New builds a Violation with a formatted message.
func New(k Kind, format string, args ...interface{}) Violation {
	return Violation{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// WithVertices returns a copy of v naming the given vertex identities.
func (v Violation) WithVertices(ids ...string) Violation {
	v.VertexIDs = append([]string(nil), ids...)
	return v
}

// Error implements the error interface so a Violation can be wrapped or
// logged like any other error, without being one of the sentinel errors
// a caller would compare with errors.Is.
func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}
