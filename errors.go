package replink

import "github.com/groovebox/replink/internal/errors"

// Re-export error types from the internal package.

// SpawnError indicates the interpreter subprocess failed to start.
type SpawnError = errors.SpawnError

// ExitError reports an interpreter process that ended on its own.
type ExitError = errors.ExitError

// Re-export sentinel errors from the internal package.
var (
	// ErrAlreadyRunning indicates start was called while a session exists.
	ErrAlreadyRunning = errors.ErrAlreadyRunning

	// ErrNotRunning indicates an operation that needs a live session
	// was invoked without one.
	ErrNotRunning = errors.ErrNotRunning

	// ErrTransportClosed indicates the interpreter exited since the last
	// successful write.
	ErrTransportClosed = errors.ErrTransportClosed

	// ErrEmptyInput indicates there was no text left to send.
	ErrEmptyInput = errors.ErrEmptyInput
)
