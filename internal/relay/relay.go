// Package relay pumps interpreter output to a display sink.
//
// The relay runs entirely off the write path: its goroutines drain the
// subprocess's stdout and stderr as bytes become available, forward
// every increment to the sink, and raise a one-shot exit notification
// when the streams end and the process has been reaped. That
// notification is the authoritative signal that the interpreter died;
// the session consumes it to leave the Running state.
package relay

import (
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/groovebox/replink/internal/errors"
)

// maxStderrBuffer caps how much stderr is retained for exit
// diagnostics. Forwarding to the sink continues past the cap; only the
// retained copy stops growing.
const maxStderrBuffer = 64 * 1024

// readBufSize is the per-read buffer for the pump loops.
const readBufSize = 4096

// Sink receives output increments from the relay. Implementations must
// tolerate calls from the relay's goroutines while the dispatcher runs
// elsewhere; appends arrive from one producer at a time per stream.
// The sink owns presentation, including tailing to the newest content.
type Sink interface {
	Append(p []byte)
}

// WriterSink adapts an io.Writer into a Sink. Writes that fail are
// dropped: display is best effort and must never stall the pump.
func WriterSink(w io.Writer) Sink {
	return writerSink{w: w}
}

type writerSink struct {
	w io.Writer
}

func (s writerSink) Append(p []byte) {
	_, _ = s.w.Write(p)
}

// Relay drains a subprocess's output streams into a Sink.
type Relay struct {
	log  *slog.Logger
	sink Sink

	mu        sync.Mutex
	stderrBuf strings.Builder
}

// New creates a relay forwarding to sink. A nil sink discards output.
func New(log *slog.Logger, sink Sink) *Relay {
	return &Relay{
		log:  log.With("component", "relay"),
		sink: sink,
	}
}

// Start begins pumping stdout and stderr (stderr may be nil for pty
// transports, where both streams share one descriptor). When both
// pumps finish, wait is called to reap the process and notify fires
// exactly once with nil for a clean exit or an ExitError otherwise.
// Start returns immediately.
func (r *Relay) Start(stdout, stderr io.Reader, wait func() error, notify func(error)) {
	g := new(errgroup.Group)

	g.Go(func() error {
		r.pump(stdout, false)

		return nil
	})

	if stderr != nil {
		g.Go(func() error {
			r.pump(stderr, true)

			return nil
		})
	}

	go func() {
		// Streams must be fully drained before reaping; see the pipe
		// rules in os/exec.
		_ = g.Wait()

		err := wait()
		r.log.Debug("Interpreter process reaped", "error", err)

		notify(r.exitError(err))
	}()
}

// pump copies available bytes to the sink until the stream ends.
// Increments are forwarded as read, not line-assembled: the display is
// a raw tail of the interpreter's output.
func (r *Relay) pump(src io.Reader, isStderr bool) {
	buf := make([]byte, readBufSize)

	for {
		n, err := src.Read(buf)
		if n > 0 {
			if isStderr {
				r.retainStderr(buf[:n])
			}

			if r.sink != nil {
				out := make([]byte, n)
				copy(out, buf[:n])
				r.sink.Append(out)
			}
		}

		if err != nil {
			if err != io.EOF {
				r.log.Debug("Output pump ended", "stderr", isStderr, "error", err)
			}

			return
		}
	}
}

func (r *Relay) retainStderr(p []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stderrBuf.Len() < maxStderrBuffer {
		r.stderrBuf.Write(p)
	}
}

// Stderr returns the retained stderr output, capped at maxStderrBuffer.
func (r *Relay) Stderr() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return strings.TrimSpace(r.stderrBuf.String())
}

func (r *Relay) exitError(err error) error {
	if err == nil {
		return nil
	}

	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	}

	return &errors.ExitError{
		ExitCode: exitCode,
		Stderr:   r.Stderr(),
		Err:      err,
	}
}
