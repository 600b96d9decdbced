// Package dispatch implements the operation vocabulary of the session
// core. Each operation composes the literate transformer, the framing
// layer, and ordered session writes; success means the payload was
// accepted by the transport, never that the interpreter liked it.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/groovebox/replink/internal/errors"
	"github.com/groovebox/replink/internal/frame"
	"github.com/groovebox/replink/internal/literate"
	"github.com/groovebox/replink/internal/session"
)

// Templates are the interpreter-side command strings the dispatcher
// fills in. Defaults target a GHCi/Tidal front end.
type Templates struct {
	// Boot loads the startup script; %s is the script path.
	Boot string
	// Load loads a source file; %s is the file path.
	Load string
	// Silence quiets one slot; %s is the slot identifier.
	Silence string
	// Hush quiets everything.
	Hush string
	// Main runs the program's entry point.
	Main string
}

// DefaultTemplates returns the GHCi/Tidal command vocabulary.
func DefaultTemplates() Templates {
	return Templates{
		Boot:    ":script %s",
		Load:    ":load %s",
		Silence: "%s silence",
		Hush:    "hush",
		Main:    "main",
	}
}

// Config controls how payloads are prepared before transmission.
type Config struct {
	// Literate strips the per-line marker from user text first.
	Literate bool
	// Marker is the literate line prefix; empty means literate.DefaultMarker.
	Marker string
	// ChunkSize is the per-write byte limit; non-positive means the
	// chunker's default.
	ChunkSize int
	// Markers are the compound-block sentinels.
	Markers frame.Markers
	// Templates is the interpreter command vocabulary.
	Templates Templates
	// BootScript, when set, is loaded as the first command after spawn.
	BootScript string
}

// Dispatcher drives one session with the named operations.
type Dispatcher struct {
	log  *slog.Logger
	sess *session.Session
	cfg  Config
}

// New creates a dispatcher over sess. Zero-valued config fields fall
// back to the GHCi/Tidal defaults.
func New(log *slog.Logger, sess *session.Session, cfg Config) *Dispatcher {
	if cfg.Marker == "" {
		cfg.Marker = literate.DefaultMarker
	}

	if cfg.Markers == (frame.Markers{}) {
		cfg.Markers = frame.DefaultMarkers
	}

	if cfg.Templates == (Templates{}) {
		cfg.Templates = DefaultTemplates()
	}

	return &Dispatcher{
		log:  log.With("component", "dispatch"),
		sess: sess,
		cfg:  cfg,
	}
}

// Start spawns the interpreter and, if configured, sends the boot
// script load command as the session's first payload.
func (d *Dispatcher) Start(ctx context.Context) error {
	if err := d.sess.Start(ctx); err != nil {
		return err
	}

	if d.cfg.BootScript != "" {
		boot := fmt.Sprintf(d.cfg.Templates.Boot, d.cfg.BootScript)
		if err := d.send(frame.Line(boot, d.cfg.ChunkSize)); err != nil {
			return fmt.Errorf("send boot script: %w", err)
		}
	}

	return nil
}

// Stop terminates the interpreter.
func (d *Dispatcher) Stop() error {
	return d.sess.Stop()
}

// Interrupt signals the interpreter without changing session state.
func (d *Dispatcher) Interrupt() error {
	return d.sess.Interrupt()
}

// Running reports whether the interpreter is live.
func (d *Dispatcher) Running() bool {
	return d.sess.Running()
}

// RunLine sends one line of user text as a single framed unit.
func (d *Dispatcher) RunLine(text string) error {
	text = d.transform(text)
	if strings.TrimSpace(text) == "" {
		return errors.ErrEmptyInput
	}

	return d.send(frame.Line(text, d.cfg.ChunkSize))
}

// RunRegion sends a multi-line region as one compound block: begin
// marker, chunked body, end marker, in that order.
func (d *Dispatcher) RunRegion(text string) error {
	text = d.transform(text)
	if strings.TrimSpace(text) == "" {
		return errors.ErrEmptyInput
	}

	return d.send(frame.Block(text, d.cfg.Markers, d.cfg.ChunkSize))
}

// RunSlot locates the first occurrence of the slot identifier in doc,
// expands it to the enclosing blank-line delimited block, and runs that
// block as a region. The caller supplies the search scope; slot block
// detection past "enclosing paragraph" is the editor's business.
func (d *Dispatcher) RunSlot(doc, slot string) error {
	block := enclosingBlock(doc, slot)
	if block == "" {
		return fmt.Errorf("slot %q not found: %w", slot, errors.ErrEmptyInput)
	}

	d.log.Debug("Running slot block", "slot", slot, "bytes", len(block))

	return d.RunRegion(block)
}

// StopSlot silences one named slot via the silence template, sent as a
// single compound block.
func (d *Dispatcher) StopSlot(slot string) error {
	if slot == "" {
		return errors.ErrEmptyInput
	}

	cmd := fmt.Sprintf(d.cfg.Templates.Silence, slot)

	return d.send(frame.Block(cmd, d.cfg.Markers, d.cfg.ChunkSize))
}

// StopAll silences every slot with the hush command.
func (d *Dispatcher) StopAll() error {
	return d.send(frame.Line(d.cfg.Templates.Hush, d.cfg.ChunkSize))
}

// LoadFile tells the interpreter to load a source file.
func (d *Dispatcher) LoadFile(path string) error {
	if path == "" {
		return errors.ErrEmptyInput
	}

	return d.send(frame.Line(fmt.Sprintf(d.cfg.Templates.Load, path), d.cfg.ChunkSize))
}

// RunMain runs the program entry point command.
func (d *Dispatcher) RunMain() error {
	return d.send(frame.Line(d.cfg.Templates.Main, d.cfg.ChunkSize))
}

func (d *Dispatcher) transform(text string) string {
	if !d.cfg.Literate {
		return text
	}

	return literate.Strip(text, d.cfg.Marker)
}

func (d *Dispatcher) send(writes []string) error {
	if len(writes) == 0 {
		return errors.ErrEmptyInput
	}

	for _, w := range writes {
		if err := d.sess.Write(w); err != nil {
			return err
		}
	}

	return nil
}

// NormalizeSlot maps a bare digit to its conventional slot name ("3" ->
// "d3") and passes anything else through.
func NormalizeSlot(s string) string {
	if s == "" {
		return s
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return s
		}
	}

	return "d" + s
}

// enclosingBlock returns the blank-line delimited paragraph around the
// first occurrence of token in doc, or "" when absent.
func enclosingBlock(doc, token string) string {
	if token == "" {
		return ""
	}

	idx := strings.Index(doc, token)
	if idx < 0 {
		return ""
	}

	start := 0
	if i := strings.LastIndex(doc[:idx], "\n\n"); i >= 0 {
		start = i + 2
	}

	end := len(doc)
	if i := strings.Index(doc[idx:], "\n\n"); i >= 0 {
		end = idx + i
	}

	return strings.Trim(doc[start:end], "\n")
}
