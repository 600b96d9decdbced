// Package registry is the static table of session operations: the
// canonical name of each operation plus the key binding and menu label
// an editor surface attaches to it. Pure configuration, no behavior.
package registry

// Operation is the canonical name of a dispatcher operation.
type Operation string

const (
	OpStart     Operation = "start"
	OpStop      Operation = "stop"
	OpInterrupt Operation = "interrupt"
	OpRunLine   Operation = "run-line"
	OpRunRegion Operation = "run-region"
	OpRunSlot   Operation = "run-slot"
	OpStopSlot  Operation = "stop-slot"
	OpStopAll   Operation = "stop-all"
	OpLoadFile  Operation = "load-file"
	OpRunMain   Operation = "run-main"
)

// Entry binds an operation to its editor surface.
type Entry struct {
	Op       Operation
	Key      string
	Menu     string
	Help     string
	TakesArg bool
}

// entries is ordered the way the menu presents them.
var entries = []Entry{
	{Op: OpStart, Key: "ctrl+shift+s", Menu: "Start Session", Help: "spawn the interpreter and load the boot script"},
	{Op: OpStop, Key: "ctrl+shift+q", Menu: "Stop Session", Help: "terminate the interpreter"},
	{Op: OpInterrupt, Key: "ctrl+c", Menu: "Interrupt", Help: "signal the interpreter without stopping it"},
	{Op: OpRunLine, Key: "shift+enter", Menu: "Run Line", Help: "send the current line"},
	{Op: OpRunRegion, Key: "ctrl+enter", Menu: "Run Block", Help: "send the current block as one compound unit"},
	{Op: OpRunSlot, Key: "ctrl+1..9", Menu: "Run Slot", Help: "run the block defining a slot", TakesArg: true},
	{Op: OpStopSlot, Key: "alt+1..9", Menu: "Silence Slot", Help: "silence one slot", TakesArg: true},
	{Op: OpStopAll, Key: "ctrl+.", Menu: "Hush", Help: "silence everything"},
	{Op: OpLoadFile, Key: "ctrl+l", Menu: "Load File", Help: "load a source file into the interpreter", TakesArg: true},
	{Op: OpRunMain, Key: "ctrl+m", Menu: "Run Main", Help: "run the program entry point"},
}

// Entries returns the operation table in menu order.
func Entries() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)

	return out
}

// Lookup resolves an operation by its canonical name.
func Lookup(name string) (Entry, bool) {
	for _, e := range entries {
		if string(e.Op) == name {
			return e, true
		}
	}

	return Entry{}, false
}
