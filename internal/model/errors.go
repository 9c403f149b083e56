package model

import "github.com/rotisserie/eris"

// Sentinel errors shared across the store, matcher, and API layers.
// Wrap with eris at the call site; check with eris.Is.
var (
	// ErrNotFound indicates a referenced user, lead, or allocation does not exist.
	ErrNotFound = eris.New("not found")

	// ErrInvalidArgument indicates malformed caller input: non-positive
	// batch count, out-of-range coordinates, or an unrecognized status.
	ErrInvalidArgument = eris.New("invalid argument")

	// ErrDuplicate indicates an insert collided with an existing record
	// (e.g. a user email already registered).
	ErrDuplicate = eris.New("duplicate")
)
