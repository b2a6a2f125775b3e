package store

import "errors"

// Error kinds returned by store operations. Handlers match these with
// errors.Is to pick the HTTP status; the wrapped message is what the
// caller sees.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrCapacityExceeded = errors.New("capacity exceeded")
)
