package embedder

import (
	"context"
	"errors"
)

// ErrUnavailable marks failures of the embedding provider itself.
var ErrUnavailable = errors.New("embedding service unavailable")

type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
