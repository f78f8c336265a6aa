package chat

import "errors"

var (
	// ErrInvalidRequest marks missing or empty required input. It has no
	// side effects: nothing was persisted when it is returned.
	ErrInvalidRequest = errors.New("message and session id are required")

	// ErrStoreUnavailable marks a persistence failure. The caller's message
	// may not be durably stored when it is returned.
	ErrStoreUnavailable = errors.New("store unavailable")
)
