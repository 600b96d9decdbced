package replink

import (
	"log/slog"

	"github.com/groovebox/replink/internal/dispatch"
	"github.com/groovebox/replink/internal/frame"
	"github.com/groovebox/replink/internal/relay"
)

// Markers is the begin/end sentinel pair for compound blocks.
type Markers = frame.Markers

// Templates is the interpreter-side command vocabulary.
type Templates = dispatch.Templates

// Sink receives interpreter output increments.
type Sink = relay.Sink

// Options holds the session configuration assembled by New.
type Options struct {
	Logger     *slog.Logger
	Command    string
	Args       []string
	BootScript string
	Literate   bool
	Marker     string
	ChunkSize  int
	Markers    Markers
	Templates  Templates
	PTY        bool
	Sink       Sink
}

// Option configures Options using the functional options pattern.
type Option func(*Options)

func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithCommand sets the interpreter executable and its arguments.
// Defaults to "ghci" with no arguments.
func WithCommand(command string, args ...string) Option {
	return func(o *Options) {
		o.Command = command
		o.Args = args
	}
}

// WithBootScript sets a script path loaded as the first command after
// spawn, via the boot template.
func WithBootScript(path string) Option {
	return func(o *Options) {
		o.BootScript = path
	}
}

// WithLiterate enables literate-mode unwrapping for this session's
// source. Each editing context declares this for itself; it is not a
// global switch.
func WithLiterate(enabled bool) Option {
	return func(o *Options) {
		o.Literate = enabled
	}
}

// WithLiterateMarker overrides the per-line literate marker ("> " by
// default).
func WithLiterateMarker(marker string) Option {
	return func(o *Options) {
		o.Marker = marker
	}
}

// WithChunkSize overrides the per-write byte limit on the transport.
func WithChunkSize(n int) Option {
	return func(o *Options) {
		o.ChunkSize = n
	}
}

// WithBlockMarkers overrides the compound-block begin/end sentinels
// (":{" and ":}" by default).
func WithBlockMarkers(begin, end string) Option {
	return func(o *Options) {
		o.Markers = Markers{Begin: begin, End: end}
	}
}

// WithTemplates overrides the interpreter command vocabulary.
func WithTemplates(t Templates) Option {
	return func(o *Options) {
		o.Templates = t
	}
}

// WithPTY spawns the interpreter under a pseudo-terminal instead of
// pipes. Use this for interpreters that line-buffer or drop their
// prompt without a tty; stdout and stderr share one stream in this
// mode.
func WithPTY() Option {
	return func(o *Options) {
		o.PTY = true
	}
}

// WithSink sets the display sink that receives interpreter output.
// If not set, output is discarded.
func WithSink(s Sink) Option {
	return func(o *Options) {
		o.Sink = s
	}
}
