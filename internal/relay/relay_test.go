package relay

import (
	"bytes"
	stderrors "errors"
	"io"
	"log/slog"
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

func TestRelayForwardsOutput(t *testing.T) {
	sink := &memSink{}
	r := New(nopLog(), sink)

	done := make(chan error, 1)
	r.Start(strings.NewReader("tick\ntock\n"), nil, func() error { return nil }, func(err error) {
		done <- err
	})

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("exit notification never fired")
	}

	assert.Equal(t, "tick\ntock\n", sink.String())
}

func TestRelayNotifiesOnceWithExitError(t *testing.T) {
	sink := &memSink{}
	r := New(nopLog(), sink)

	waitErr := stderrors.New("boom")
	notifications := make(chan error, 2)

	r.Start(strings.NewReader(""), strings.NewReader("ghci: panic\n"), func() error { return waitErr }, func(err error) {
		notifications <- err
	})

	var got error
	select {
	case got = <-notifications:
	case <-time.After(2 * time.Second):
		t.Fatal("exit notification never fired")
	}

	var exitErr *errors.ExitError
	require.ErrorAs(t, got, &exitErr)
	assert.Equal(t, "ghci: panic", exitErr.Stderr)
	require.ErrorIs(t, got, waitErr)

	select {
	case extra := <-notifications:
		t.Fatalf("second notification fired: %v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRelayStderrReachesSink(t *testing.T) {
	sink := &memSink{}
	r := New(nopLog(), sink)

	done := make(chan error, 1)
	r.Start(strings.NewReader(""), strings.NewReader("warn: late\n"), func() error { return nil }, func(err error) {
		done <- err
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("exit notification never fired")
	}

	assert.Contains(t, sink.String(), "warn: late")
}

func TestRelayStderrCaptureIsCapped(t *testing.T) {
	r := New(nopLog(), nil)

	done := make(chan error, 1)
	huge := strings.Repeat("x", maxStderrBuffer+readBufSize*2)
	r.Start(strings.NewReader(""), strings.NewReader(huge), func() error { return nil }, func(err error) {
		done <- err
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("exit notification never fired")
	}

	assert.LessOrEqual(t, len(r.Stderr()), maxStderrBuffer+readBufSize)
}

func TestRelayNilSinkDiscards(t *testing.T) {
	r := New(nopLog(), nil)

	done := make(chan error, 1)
	r.Start(strings.NewReader("ignored\n"), nil, func() error { return nil }, func(err error) {
		done <- err
	})

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("exit notification never fired")
	}
}
