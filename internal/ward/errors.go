package ward

import "errors"

// Error taxonomy. Callers branch on these with errors.Is; HTTP handlers
// map NotFound to 404, Conflict to 409 and Validation to 400.
var (
	// ErrNotFound means a referenced bed or patient id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means the operation violates a state-machine
	// precondition, e.g. assigning to a non-Available bed or removing an
	// Occupied one. The caller must re-fetch state before retrying.
	ErrConflict = errors.New("conflict")

	// ErrValidation means a required input was missing or malformed. The
	// registry is never touched when a validation error is returned.
	ErrValidation = errors.New("invalid input")
)
