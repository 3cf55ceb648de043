package inspect

import (
	"fmt"

	"github.com/pkg/errors"
)

// Precondition failures. These indicate a caller bug, never a runtime condition, and are
// always returned wrapped in a *PreconditionError.
var (
	ErrNilDepthMap     = errors.New("depth map is nil")
	ErrEmptyDepthMap   = errors.New("depth map has no samples")
	ErrInvalidCellSize = errors.New("cell size must be positive")
	ErrNilImage        = errors.New("image is nil")
)

// PreconditionError reports that an operation was called with input outside its domain.
type PreconditionError struct {
	Op  string
	Err error
}

func newPreconditionError(op string, err error) error {
	return &PreconditionError{Op: op, Err: err}
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: precondition violated: %v", e.Op, e.Err)
}

// Unwrap returns the sentinel describing the violation.
func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// IsPreconditionError reports whether err is, or wraps, a *PreconditionError.
func IsPreconditionError(err error) bool {
	var pErr *PreconditionError
	return errors.As(err, &pErr)
}
