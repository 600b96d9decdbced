package replink

import (
	"context"
	"io"

	"github.com/groovebox/replink/internal/dispatch"
	"github.com/groovebox/replink/internal/relay"
	"github.com/groovebox/replink/internal/session"
)

// Dispatcher drives one interpreter session with the named operations.
//
// All run operations report success for the send only; evaluation is
// fire and forget. Every operation is safe for concurrent use; writes
// are serialized so the interpreter observes payloads in submission
// order.
type Dispatcher interface {
	// Start spawns the interpreter and loads the boot script, if one is
	// configured. Fails with ErrAlreadyRunning on a live session and
	// SpawnError when the executable cannot be started.
	Start(ctx context.Context) error

	// Stop terminates the interpreter. Fails with ErrNotRunning when no
	// session is live; stopping a stopped session is a reported error,
	// not a no-op.
	Stop() error

	// Interrupt signals the interpreter without changing session state.
	Interrupt() error

	// RunLine sends one line of text as a single framed unit.
	RunLine(text string) error

	// RunRegion sends a multi-line region as one compound block wrapped
	// in the configured block markers.
	RunRegion(text string) error

	// RunSlot locates the slot identifier's first occurrence in doc and
	// runs its enclosing blank-line delimited block as a region.
	RunSlot(doc, slot string) error

	// StopSlot silences one named slot via the silence template.
	StopSlot(slot string) error

	// StopAll silences everything via the hush command.
	StopAll() error

	// LoadFile tells the interpreter to load a source file.
	LoadFile(path string) error

	// RunMain runs the program entry point command.
	RunMain() error

	// Running reports whether the interpreter is live.
	Running() bool
}

// Compile-time verification that the internal dispatcher satisfies the
// public interface.
var _ Dispatcher = (*dispatch.Dispatcher)(nil)

// New assembles a Dispatcher from the given options. The zero
// configuration drives a plain "ghci" with GHCi/Tidal defaults and
// discards output.
func New(opts ...Option) Dispatcher {
	o := applyOptions(opts)

	log := o.Logger
	if log == nil {
		log = NopLogger()
	}

	command := o.Command
	if command == "" {
		command = "ghci"
	}

	sess := session.New(log, session.Config{
		Command: command,
		Args:    o.Args,
		UsePTY:  o.PTY,
		Sink:    o.Sink,
	})

	return dispatch.New(log, sess, dispatch.Config{
		Literate:   o.Literate,
		Marker:     o.Marker,
		ChunkSize:  o.ChunkSize,
		Markers:    o.Markers,
		Templates:  o.Templates,
		BootScript: o.BootScript,
	})
}

// WriterSink adapts an io.Writer into a display Sink. The writer sees
// appends from the relay goroutines only, one increment at a time.
func WriterSink(w io.Writer) Sink {
	return relay.WriterSink(w)
}
