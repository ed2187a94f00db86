package box

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Kind tags the taxonomy of configuration errors a caller can hit while
// constructing or updating a Box. Unlike the internal-consistency panics
// raised out of the cellgrid/pairiter hot loops (§7 of the design), these
// are always reported back to the caller with the offending value.
type Kind int

const (
	// InvalidCell means the supplied lattice fails the minimum-image
	// criterion for the requested cutoff.
	InvalidCell Kind = iota
	// CutoffNotPositive means the cutoff was <= 0 or non-finite.
	CutoffNotPositive
	// DimensionMismatch means a coordinate dimension didn't match the
	// lattice dimension, or two point sets disagreed on dimension.
	DimensionMismatch
	// NonPeriodicWithCellOverride means the caller supplied an explicit
	// cell for a system that was (or must be) constructed as non-periodic.
	NonPeriodicWithCellOverride
)

func (k Kind) String() string {
	switch k {
	case InvalidCell:
		return "InvalidCell"
	case CutoffNotPositive:
		return "CutoffNotPositive"
	case DimensionMismatch:
		return "DimensionMismatch"
	case NonPeriodicWithCellOverride:
		return "NonPeriodicWithCellOverride"
	default:
		return "UnknownKind"
	}
}

// Error is a configuration error, always tagged with the Kind that produced
// it so callers can switch on e.Kind without parsing message text.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("box: %s: %v", e.Kind, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, cause: errors.E(fmt.Sprintf(format, args...))}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

// NewDimensionMismatchError reports a dimension outside the supported {2,3},
// or (by the same Kind) two point sets that disagree on dimension.
func NewDimensionMismatchError(dim int) *Error {
	return newError(DimensionMismatch, "unsupported dimension %d, want 2 or 3", dim)
}
