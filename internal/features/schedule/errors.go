package schedule

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound means no scheduled email exists with the given id.
	ErrNotFound = errors.New("scheduled email not found")

	// ErrNotEditable means the record has left pending; edits and
	// cancels are rejected without state change.
	ErrNotEditable = errors.New("only pending emails can be modified")
)

// ValidationError lists every invariant violated by a create/update
// request. Surfaced verbatim to the caller, never persisted.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Issues, "; ")
}
