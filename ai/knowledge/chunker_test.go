package knowledge

import (
	"strings"
	"testing"
)

func TestSplitPassage(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		want      []string
	}{
		{
			name:      "short passage stays whole",
			text:      "Q: What is IDALS?\nA: A data analytics program.",
			chunkSize: 500,
			want:      []string{"Q: What is IDALS?\nA: A data analytics program."},
		},
		{
			name:      "empty text",
			text:      "   ",
			chunkSize: 500,
			want:      nil,
		},
		{
			name:      "paragraph boundary preferred",
			text:      "first paragraph here\n\nsecond paragraph here",
			chunkSize: 25,
			want:      []string{"first paragraph here", "second paragraph here"},
		},
		{
			name:      "sentence boundary",
			text:      "One sentence here. Another sentence here. A third one here.",
			chunkSize: 40,
			want:      []string{"One sentence here. Another sentence here", "A third one here."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitPassage(tt.text, tt.chunkSize)
			if len(got) != len(tt.want) {
				t.Fatalf("chunk count = %d, want %d (%q)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitPassageSizeBound(t *testing.T) {
	// A long run with no natural boundaries still respects the size cap.
	text := strings.Repeat("x", 1700)
	for _, chunk := range SplitPassage(text, DefaultChunkSize) {
		if len(chunk) > DefaultChunkSize {
			t.Errorf("chunk length %d exceeds %d", len(chunk), DefaultChunkSize)
		}
	}

	// And nothing is lost: concatenation restores the input.
	var rebuilt strings.Builder
	for _, chunk := range SplitPassage(text, DefaultChunkSize) {
		rebuilt.WriteString(chunk)
	}
	if rebuilt.String() != text {
		t.Error("hard-cut chunks should reassemble into the original text")
	}
}

func TestSplitPassageDefaultsChunkSize(t *testing.T) {
	got := SplitPassage("small", 0)
	if len(got) != 1 || got[0] != "small" {
		t.Errorf("SplitPassage with zero size = %q", got)
	}
}
