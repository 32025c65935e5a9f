package entangld

import (
	"fmt"

	"github.com/dreamware/entangld/internal/tree"
)

// TreeError reports that a local Set or Push would need to overwrite or
// traverse through a value of the wrong shape: pushing onto a non-array,
// or assigning through an existing scalar. The tree is left exactly as it
// was before the call that returned this error.
type TreeError = tree.TreeError

// ValidationError reports a precondition violation: a nil callback or
// handler, or a path segment containing '/' or '~'. Op names the
// operation that rejected the call.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("entangld: %s: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func errNilCallback(op string) error {
	return &ValidationError{Op: op, Err: fmt.Errorf("callback must not be nil")}
}

func errNilHandler(op string) error {
	return &ValidationError{Op: op, Err: fmt.Errorf("handler must not be nil")}
}
