// Package chunk splits outgoing payloads into bounded-size pieces.
//
// The interpreter transport has a practical per-write size limit; writes
// larger than it risk dropped or reordered bytes on some front ends.
// Split keeps every piece under that limit while preserving content and
// order exactly: concatenating the result reconstructs the input.
package chunk

import "strings"

// DefaultMax is the per-write byte limit used when a caller does not
// configure one. Tuned to the safe line length of common interpreter
// front ends.
const DefaultMax = 1024

// Split partitions s into ordered pieces of at most max bytes each.
// Pieces prefer to end on a newline so that line-oriented consumers see
// whole lines per write where possible, and never end mid-rune. An
// empty input yields nil. A non-positive max is treated as DefaultMax.
func Split(s string, max int) []string {
	if s == "" {
		return nil
	}

	if max <= 0 {
		max = DefaultMax
	}

	var pieces []string

	for len(s) > max {
		cut := max

		// Prefer the last newline inside the window.
		if i := strings.LastIndexByte(s[:cut], '\n'); i >= 0 {
			cut = i + 1
		} else {
			// Back off to a rune boundary so no UTF-8 sequence is torn.
			for cut > 0 && !isRuneStart(s[cut]) {
				cut--
			}

			if cut == 0 {
				// Degenerate: a single rune wider than max. Emit it whole
				// rather than corrupt it; the transport limit is advisory.
				cut = nextRuneEnd(s, max)
			}
		}

		pieces = append(pieces, s[:cut])
		s = s[cut:]
	}

	if s != "" {
		pieces = append(pieces, s)
	}

	return pieces
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func nextRuneEnd(s string, from int) int {
	for i := from; i < len(s); i++ {
		if isRuneStart(s[i]) {
			return i
		}
	}

	return len(s)
}
