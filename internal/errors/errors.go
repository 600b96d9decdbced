package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for session lifecycle preconditions. Each one names
// the violated precondition in a form suitable for direct display.
var (
	// ErrAlreadyRunning indicates start was called while a session exists.
	ErrAlreadyRunning = errors.New("session already running")

	// ErrNotRunning indicates an operation that needs a live session
	// was invoked without one.
	ErrNotRunning = errors.New("no session running")

	// ErrTransportClosed indicates the interpreter exited since the last
	// successful write. The session must be started again.
	ErrTransportClosed = errors.New("interpreter transport closed")

	// ErrEmptyInput indicates there was no text left to send after
	// transformation. Dispatch operations report it rather than
	// silently doing nothing.
	ErrEmptyInput = errors.New("empty input")
)

// SpawnError indicates the interpreter subprocess failed to start.
// The session stays Stopped when this is returned.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn interpreter %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitError reports an interpreter process that ended on its own,
// carrying whatever it last wrote to stderr.
type ExitError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("interpreter exited (code %d): %s", e.ExitCode, e.Stderr)
	}

	return fmt.Sprintf("interpreter exited (code %d): %v", e.ExitCode, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
