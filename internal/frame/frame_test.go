package frame

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want []string
	}{
		{name: "empty yields nothing", in: "", max: 16, want: nil},
		{name: "terminator appended", in: "hush", max: 16, want: []string{"hush\n"}},
		{name: "existing terminator kept", in: "hush\n", max: 16, want: []string{"hush\n"}},
		{
			name: "chunked",
			in:   "d1 $ sound \"bd sn\"",
			max:  8,
			want: []string{"d1 $ sou", "nd \"bd s", "n\"\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Line(tt.in, tt.max)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Line mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBlock(t *testing.T) {
	got := Block("a\nb", DefaultMarkers, 1024)

	want := []string{":{\n", "a\nb\n", ":}\n"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Block mismatch (-want +got):\n%s", diff)
	}
}

func TestBlockEmptyYieldsNothing(t *testing.T) {
	if got := Block("", DefaultMarkers, 1024); got != nil {
		t.Errorf("Block(\"\") = %v, want nil", got)
	}
}

func TestBlockCustomMarkers(t *testing.T) {
	m := Markers{Begin: "BEGIN", End: "END"}

	got := Block("a\nb", m, 1024)

	want := []string{"BEGIN\n", "a\nb\n", "END\n"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Block mismatch (-want +got):\n%s", diff)
	}
}

func TestBlockMarkersAreWholeWrites(t *testing.T) {
	// Even with a chunk limit smaller than the markers, each marker is
	// one write and only the body is split.
	body := strings.Repeat("x", 10)

	writes := Block(body, DefaultMarkers, 4)

	if writes[0] != ":{\n" {
		t.Fatalf("first write = %q, want begin marker", writes[0])
	}

	if writes[len(writes)-1] != ":}\n" {
		t.Fatalf("last write = %q, want end marker", writes[len(writes)-1])
	}

	if got := strings.Join(writes[1:len(writes)-1], ""); got != body+"\n" {
		t.Errorf("body reassembles to %q, want %q", got, body+"\n")
	}

	for i, w := range writes[1 : len(writes)-1] {
		if len(w) > 4 {
			t.Errorf("body write %d has %d bytes, want <= 4", i, len(w))
		}
	}
}
