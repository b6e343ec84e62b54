package knowledge

import "strings"

// DefaultChunkSize is the maximum passage length in characters.
// This boundary affects answer granularity and is load-bearing for
// retrieval behavior; do not change it casually.
const DefaultChunkSize = 500

// separators are tried in order when a passage exceeds the chunk size,
// from coarsest to finest.
var separators = []string{"\n\n", "\n", ". ", " "}

// SplitPassage splits text into chunks of at most chunkSize characters
// with no overlap, preferring paragraph, line, sentence, and word
// boundaries in that order before falling back to a hard cut.
func SplitPassage(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}
	return splitRecursive(text, chunkSize, 0)
}

func splitRecursive(text string, chunkSize, sepIndex int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}
	if sepIndex >= len(separators) {
		// Hard cut: no separator small enough.
		var chunks []string
		for len(text) > chunkSize {
			chunks = append(chunks, text[:chunkSize])
			text = text[chunkSize:]
		}
		if text != "" {
			chunks = append(chunks, text)
		}
		return chunks
	}

	sep := separators[sepIndex]
	parts := strings.Split(text, sep)
	if len(parts) == 1 {
		return splitRecursive(text, chunkSize, sepIndex+1)
	}

	var chunks []string
	var current strings.Builder
	for _, part := range parts {
		piece := part
		if current.Len() > 0 {
			piece = sep + part
		}
		if current.Len()+len(piece) > chunkSize {
			if current.Len() > 0 {
				chunks = append(chunks, strings.TrimSpace(current.String()))
				current.Reset()
			}
			if len(part) > chunkSize {
				chunks = append(chunks, splitRecursive(part, chunkSize, sepIndex+1)...)
				continue
			}
			current.WriteString(part)
			continue
		}
		current.WriteString(piece)
	}
	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}
