package generator

import (
	"context"
	"errors"
)

var ErrEmptyResponse = errors.New("generator returned no text")

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
