// Package replink manages an interactive interpreter session for live
// coding. It owns a single long-running interpreter subprocess (a
// GHCi/Tidal session by default), feeds it fragments of editor text,
// and relays the interpreter's output to a display sink.
//
// The public surface is a Dispatcher with a small operation vocabulary:
// start, stop, interrupt, run-line, run-region, run-slot, stop-slot,
// stop-all, load-file and run-main. Run operations are fire and forget:
// a nil error means the payload was accepted by the transport in order,
// not that the interpreter evaluated it successfully. Evaluation output
// arrives asynchronously on the sink.
//
// # Basic Usage
//
//	d := replink.New(
//	    replink.WithCommand("ghci"),
//	    replink.WithBootScript("BootTidal.hs"),
//	    replink.WithSink(replink.WriterSink(os.Stdout)),
//	)
//
//	if err := d.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Stop()
//
//	_ = d.RunLine(`d1 $ sound "bd sn"`)
//	_ = d.RunRegion("let pat = sound \"bd sn\"\nd1 $ pat")
//	_ = d.StopSlot("d1")
//	_ = d.StopAll()
//
// Multi-line regions are wrapped in the interpreter's compound-block
// markers (":{" / ":}" by default) and split into transport-sized
// chunks; markers are always whole writes. Literate sources have their
// per-line marker stripped first when literate mode is on.
//
// Writes are serialized per session, so payloads reach the interpreter
// in submission order even under concurrent callers. The output relay
// runs on its own goroutines and never blocks the write path; when the
// interpreter dies, the relay's exit notification folds the session
// down and later operations report ErrTransportClosed until the next
// Start.
package replink
