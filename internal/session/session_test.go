package session

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groovebox/replink/internal/errors"
)

type memSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *memSink) Append(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf.Write(p)
}

func (s *memSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buf.String()
}

func nopLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func requireUnix(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("test doubles rely on Unix shell tools")
	}
}

// newEchoSession starts a session around cat, which echoes stdin to
// stdout and makes write ordering observable.
func newEchoSession(t *testing.T) (*Session, *memSink) {
	t.Helper()
	requireUnix(t)

	sink := &memSink{}
	s := New(nopLog(), Config{Command: "cat", Sink: sink})

	require.NoError(t, s.Start(context.Background()))

	t.Cleanup(func() {
		if s.Running() {
			_ = s.Stop()
		}
	})

	return s, sink
}

func TestStartTwiceFailsAlreadyRunning(t *testing.T) {
	s, _ := newEchoSession(t)

	err := s.Start(context.Background())
	require.ErrorIs(t, err, errors.ErrAlreadyRunning)
}

func TestStopWithoutStartFailsNotRunning(t *testing.T) {
	s := New(nopLog(), Config{Command: "cat"})

	require.ErrorIs(t, s.Stop(), errors.ErrNotRunning)
}

func TestInterruptWithoutStartFailsNotRunning(t *testing.T) {
	s := New(nopLog(), Config{Command: "cat"})

	require.ErrorIs(t, s.Interrupt(), errors.ErrNotRunning)
}

func TestWriteBeforeStartFailsNotRunning(t *testing.T) {
	s := New(nopLog(), Config{Command: "cat"})

	require.ErrorIs(t, s.Write("hush\n"), errors.ErrNotRunning)
}

func TestStopThenRestart(t *testing.T) {
	s, _ := newEchoSession(t)

	firstID := s.ID()
	require.NoError(t, s.Stop())
	assert.Equal(t, Stopped, s.State())

	require.ErrorIs(t, s.Stop(), errors.ErrNotRunning)

	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	assert.True(t, s.Running())
	assert.NotEqual(t, firstID, s.ID(), "each run gets a fresh session id")
}

func TestWritesObservedInOrder(t *testing.T) {
	s, sink := newEchoSession(t)

	writes := []string{"one 1\n", "two 2\n", "three 3\n", "four 4\n"}
	for _, w := range writes {
		require.NoError(t, s.Write(w))
	}

	want := strings.Join(writes, "")
	require.Eventually(t, func() bool {
		return sink.String() == want
	}, 2*time.Second, 10*time.Millisecond, "echoed output should match submission order")
}

func TestConcurrentWritersDoNotInterleave(t *testing.T) {
	s, sink := newEchoSession(t)

	const writers = 8

	payload := strings.Repeat("z", 256) + "\n"

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Write(payload)
		}()
	}

	wg.Wait()

	require.Eventually(t, func() bool {
		return len(sink.String()) == writers*len(payload)
	}, 2*time.Second, 10*time.Millisecond)

	for i, line := range strings.SplitAfter(sink.String(), "\n") {
		if line == "" {
			continue
		}

		require.Equal(t, payload, line, "line %d got torn", i)
	}
}

func TestUnexpectedExitClosesTransport(t *testing.T) {
	requireUnix(t)

	s := New(nopLog(), Config{Command: "sh", Args: []string{"-c", "exit 3"}})
	require.NoError(t, s.Start(context.Background()))

	// The relay's exit notification is the authority: the session must
	// fold down without any write being attempted.
	require.Eventually(t, func() bool {
		return s.State() == Stopped
	}, 2*time.Second, 10*time.Millisecond)

	require.ErrorIs(t, s.Write("hush\n"), errors.ErrTransportClosed)

	// A fresh Start recovers.
	sink := &memSink{}
	s2 := New(nopLog(), Config{Command: "cat", Sink: sink})
	require.NoError(t, s2.Start(context.Background()))

	defer func() { _ = s2.Stop() }()

	require.NoError(t, s2.Write("ok\n"))
}

func TestSpawnFailureLeavesStopped(t *testing.T) {
	s := New(nopLog(), Config{Command: "/definitely/not/an/interpreter"})

	err := s.Start(context.Background())

	var spawnErr *errors.SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, "/definitely/not/an/interpreter", spawnErr.Command)
	assert.Equal(t, Stopped, s.State())

	// Start may be retried after a failed spawn.
	err = s.Start(context.Background())
	require.ErrorAs(t, err, &spawnErr)
}

func TestInterruptKeepsSessionRunning(t *testing.T) {
	requireUnix(t)

	// A shell that ignores SIGINT, so the interrupt is observable as a
	// no-op on lifecycle state.
	s := New(nopLog(), Config{Command: "sh", Args: []string{"-c", "trap '' INT; cat"}})
	require.NoError(t, s.Start(context.Background()))

	defer func() { _ = s.Stop() }()

	require.NoError(t, s.Interrupt())
	assert.True(t, s.Running())
}

func TestContextCancelKillsInterpreter(t *testing.T) {
	requireUnix(t)

	ctx, cancel := context.WithCancel(context.Background())

	s := New(nopLog(), Config{Command: "cat"})
	require.NoError(t, s.Start(ctx))

	cancel()

	require.Eventually(t, func() bool {
		return s.State() == Stopped
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPTYSessionEcho(t *testing.T) {
	requireUnix(t)

	sink := &memSink{}
	s := New(nopLog(), Config{Command: "cat", UsePTY: true, Sink: sink})

	if err := s.Start(context.Background()); err != nil {
		t.Skipf("no pty available: %v", err)
	}

	defer func() {
		if s.Running() {
			_ = s.Stop()
		}
	}()

	require.NoError(t, s.Write("foo\n"))

	// Under a pty the terminal echoes input on top of cat's own echo,
	// so only containment is asserted.
	require.Eventually(t, func() bool {
		return strings.Contains(sink.String(), "foo")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "starting", Starting.String())
	assert.Equal(t, "running", Running.String())
}
