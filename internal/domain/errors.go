package domain

import "errors"

var (
	// ErrInvalidPlacement rejects a drop that is out of bounds or overlaps
	// occupied cells. Hosts snap the piece back.
	ErrInvalidPlacement = errors.New("invalid placement")
	// ErrInvalidCommand rejects a command that is not valid in the current
	// state: terminal outcome, bad slot, power-up not ready or not armed.
	ErrInvalidCommand = errors.New("invalid command")
	// ErrInternalInconsistency marks a broken invariant.
	ErrInternalInconsistency = errors.New("internal inconsistency")
)

// Rejected reports whether err is an expected, recoverable rejection.
func Rejected(err error) bool {
	return errors.Is(err, ErrInvalidPlacement) || errors.Is(err, ErrInvalidCommand)
}
