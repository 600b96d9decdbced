// Package literate unwraps literate-style source before transmission.
//
// In a literate document the executable lines carry a leading marker
// (bird tracks, "> " by default) and everything else is prose. The
// session only cares about removing the marker; deciding which lines to
// send is the editor's business.
package literate

import "strings"

// DefaultMarker is the conventional bird-track prefix.
const DefaultMarker = "> "

// Strip removes the per-line marker from every line that carries it.
// Lines without the marker pass through untouched. Repeated leading
// markers are all removed, which makes Strip idempotent:
// Strip(Strip(s)) == Strip(s) for every input.
func Strip(s, marker string) string {
	if marker == "" || !strings.Contains(s, marker) {
		return s
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		for strings.HasPrefix(line, marker) {
			line = line[len(marker):]
		}

		lines[i] = line
	}

	return strings.Join(lines, "\n")
}
