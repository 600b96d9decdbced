// Package frame turns logical text units into ordered wire writes.
//
// A framed payload is either a single unit (one terminated line of
// text, possibly chunked) or a compound block bracketed by begin/end
// marker lines that tell a line-oriented interpreter front end to treat
// the body as one statement. Markers are always emitted as their own
// whole writes so chunking can never split one.
package frame

import "github.com/groovebox/replink/internal/chunk"

// Markers is the begin/end sentinel pair for compound blocks.
type Markers struct {
	Begin string
	End   string
}

// DefaultMarkers is the multi-line block syntax understood by GHCi-style
// front ends.
var DefaultMarkers = Markers{Begin: ":{", End: ":}"}

// Line frames text as a single unit: the text with a line terminator
// appended, split into transport-sized writes. Empty text yields nil.
func Line(text string, max int) []string {
	if text == "" {
		return nil
	}

	return chunk.Split(terminate(text), max)
}

// Block frames text as a compound unit. The result is the begin marker
// line, the chunked terminated body, then the end marker line, each
// marker a single whole write. Empty text yields nil: an empty block
// would still poke the interpreter, and callers want a no-op instead.
func Block(text string, m Markers, max int) []string {
	if text == "" {
		return nil
	}

	body := chunk.Split(terminate(text), max)

	writes := make([]string, 0, len(body)+2)
	writes = append(writes, terminate(m.Begin))
	writes = append(writes, body...)
	writes = append(writes, terminate(m.End))

	return writes
}

func terminate(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		return s
	}

	return s + "\n"
}
