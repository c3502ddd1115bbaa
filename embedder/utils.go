package embedder

import (
	"fmt"
	"strings"
)

// Text is the input embedded for a post.
func Text(title string, summary string) string {
	return strings.TrimSpace(title + "\n\n" + summary)
}

// Chunk splits texts into consecutive batches of at most size.
func Chunk(texts []string, size int) [][]string {
	if size < 1 {
		size = 1
	}

	var chunks [][]string
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		chunks = append(chunks, texts[start:end])
	}

	return chunks
}

// Check verifies a provider answered with one vector of the expected width per text.
func Check(texts []string, vectors [][]float32, dimensions int) error {
	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: got %d vectors for %d texts", ErrUnavailable, len(vectors), len(texts))
	}

	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("%w: empty vector at %d", ErrUnavailable, i)
		}
		if dimensions > 0 && len(v) != dimensions {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrUnavailable, i, len(v), dimensions)
		}
	}

	return nil
}
