package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
	"github.com/oklog/ulid/v2"

	"github.com/groovebox/replink/internal/errors"
	"github.com/groovebox/replink/internal/relay"
)

// State is the session lifecycle state.
type State int

const (
	// Stopped means no interpreter process exists.
	Stopped State = iota
	// Starting means spawn is in progress.
	Starting
	// Running means the interpreter is live and accepts writes.
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config holds the subprocess settings for a session.
type Config struct {
	// Command is the interpreter executable.
	Command string

	// Args are the interpreter arguments.
	Args []string

	// UsePTY spawns the interpreter under a pseudo-terminal instead of
	// pipes. Some interpreters line-buffer or disable their prompt
	// without a tty. In pty mode stdout and stderr share one stream.
	UsePTY bool

	// Sink receives interpreter output. Nil discards it.
	Sink relay.Sink
}

// Session owns one interpreter subprocess and the single writable
// transport to its stdin.
//
// Lifecycle: Stopped -> Starting -> Running -> Stopped. Writes are only
// valid while Running and are serialized so the interpreter observes
// payloads in submission order. The output relay's exit notification is
// consumed here: once the process dies, the next Write reports
// ErrTransportClosed instead of acting on stale state.
type Session struct {
	log *slog.Logger
	cfg Config

	// writeMu admits one in-flight Write at a time; concurrent callers
	// queue behind it.
	writeMu sync.Mutex

	mu           sync.Mutex
	state        State
	gen          int
	closedByExit bool
	cmd          *exec.Cmd
	stdin        io.WriteCloser
	id           string
}

// New creates a session in the Stopped state.
func New(log *slog.Logger, cfg Config) *Session {
	return &Session{
		log: log.With("component", "session"),
		cfg: cfg,
	}
}

// Start spawns the interpreter subprocess and begins relaying its
// output. It fails with ErrAlreadyRunning unless the session is
// Stopped, and with SpawnError if the executable cannot be started
// (state stays Stopped in that case).
//
// The context bounds the subprocess's lifetime: cancelling it kills the
// interpreter, which the relay then reports as an exit.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()

	if s.state != Stopped {
		s.mu.Unlock()

		return errors.ErrAlreadyRunning
	}

	s.state = Starting
	s.gen++
	gen := s.gen
	s.closedByExit = false
	s.id = ulid.Make().String()
	log := s.log.With("session_id", s.id)
	s.mu.Unlock()

	log.Info("Starting interpreter", "command", s.cfg.Command, "args", s.cfg.Args, "pty", s.cfg.UsePTY)

	//nolint:gosec // G204: the interpreter command is caller configuration
	cmd := exec.CommandContext(ctx, s.cfg.Command, s.cfg.Args...)

	rel := relay.New(log, s.cfg.Sink)

	var (
		stdin          io.WriteCloser
		stdout, stderr io.Reader
		ptmx           *os.File
		err            error
	)

	if s.cfg.UsePTY {
		ptmx, err = pty.Start(cmd)
		if err == nil {
			stdin = ptmx
			stdout = ptmx
		}
	} else {
		stdin, stdout, stderr, err = pipeStdio(cmd)
		if err == nil {
			err = cmd.Start()
		}
	}

	if err != nil {
		log.Error("Spawn failed", "error", err)
		s.mu.Lock()
		s.state = Stopped
		s.mu.Unlock()

		return &errors.SpawnError{Command: s.cfg.Command, Err: err}
	}

	s.mu.Lock()
	s.cmd = cmd
	s.stdin = stdin
	s.state = Running
	s.mu.Unlock()

	rel.Start(stdout, stderr, cmd.Wait, func(exitErr error) {
		s.handleExit(gen, exitErr)
	})

	log.Info("Interpreter started", "pid", cmd.Process.Pid)

	return nil
}

// Stop terminates the interpreter. It fails with ErrNotRunning when no
// interpreter is live. The process is killed outright; a live-coding
// session has nothing worth a graceful drain.
func (s *Session) Stop() error {
	s.mu.Lock()

	if s.state != Running {
		s.mu.Unlock()

		return errors.ErrNotRunning
	}

	s.log.Info("Stopping interpreter", "session_id", s.id, "pid", s.cmd.Process.Pid)

	// Bump the generation so the relay's exit notification for this
	// process is recognized as already handled.
	s.gen++
	s.state = Stopped
	cmd := s.cmd
	s.closeTransportLocked()
	s.mu.Unlock()

	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("kill interpreter (pid %d): %w", cmd.Process.Pid, err)
	}

	return nil
}

// Interrupt sends an interrupt signal to the interpreter without
// changing session state. Fails with ErrNotRunning if none exists.
func (s *Session) Interrupt() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Running {
		return errors.ErrNotRunning
	}

	s.log.Debug("Interrupting interpreter", "session_id", s.id, "pid", s.cmd.Process.Pid)

	if err := s.cmd.Process.Signal(os.Interrupt); err != nil {
		return fmt.Errorf("interrupt interpreter (pid %d): %w", s.cmd.Process.Pid, err)
	}

	return nil
}

// Write delivers one payload to the interpreter's stdin. Exactly one
// write is in flight at a time; concurrent callers queue, preserving
// submission order. Fails with ErrNotRunning before the first Start or
// after a clean Stop, and with ErrTransportClosed once the interpreter
// has exited underneath us, whether that was discovered here as a
// broken pipe or consumed from the relay's exit notification.
func (s *Session) Write(payload string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()

	if s.state != Running {
		closedByExit := s.closedByExit
		s.mu.Unlock()

		if closedByExit {
			return errors.ErrTransportClosed
		}

		return errors.ErrNotRunning
	}

	w := s.stdin
	gen := s.gen
	s.mu.Unlock()

	if _, err := w.Write([]byte(payload)); err != nil {
		// Broken pipe: the process died since the last successful
		// write. Fold the session down before the relay gets around to
		// telling us.
		s.log.Warn("Write failed, closing transport", "session_id", s.id, "error", err)
		s.handleExit(gen, err)

		return fmt.Errorf("%w: %v", errors.ErrTransportClosed, err)
	}

	return nil
}

// Running reports whether the interpreter is live.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state == Running
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// ID returns the identifier of the current (or most recent) run, empty
// before the first Start.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.id
}

// handleExit consumes an exit notification for generation gen. Stale
// notifications (a Stop already ran, or a new run superseded this one)
// are dropped.
func (s *Session) handleExit(gen int, err error) {
	s.mu.Lock()

	if s.gen != gen || s.state == Stopped {
		s.mu.Unlock()

		return
	}

	s.state = Stopped
	s.closedByExit = true
	s.closeTransportLocked()
	id := s.id
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("Interpreter exited unexpectedly", "session_id", id, "error", err)
	} else {
		s.log.Info("Interpreter exited", "session_id", id)
	}
}

// closeTransportLocked releases the input handle. Must hold s.mu.
// Reads unblock when the process's side of the transport goes away, so
// only the write side needs explicit closing here.
func (s *Session) closeTransportLocked() {
	if s.stdin != nil {
		_ = s.stdin.Close()
		s.stdin = nil
	}
}

// pipeStdio wires the three standard pipes for pipe-mode transport.
func pipeStdio(cmd *exec.Cmd) (io.WriteCloser, io.Reader, io.Reader, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("stderr pipe: %w", err)
	}

	return stdin, stdout, stderr, nil
}
