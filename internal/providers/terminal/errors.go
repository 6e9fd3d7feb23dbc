package terminal

import "errors"

// Sentinel errors for session lookup and lifecycle failures. Callers match
// with errors.Is; native PTY, spawn and I/O failures are wrapped with the
// failing step and surfaced as-is.
var (
	// ErrNotFound indicates the session id is not registered.
	ErrNotFound = errors.New("session not found")

	// ErrExists indicates a create with an id that is already in use.
	// Duplicate ids are rejected rather than silently overwriting the
	// existing session, which would leak its PTY and shell process.
	ErrExists = errors.New("session already exists")

	// ErrClosed indicates the session's shell has exited or the session
	// was killed while an operation was in flight.
	ErrClosed = errors.New("session is closed")
)
