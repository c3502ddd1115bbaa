package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/forumsearch/embedder"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultModel = "text-embedding-3-small"
	// Dimensions is the output width of the default model.
	Dimensions = 1536
)

type openAIEmbedder struct {
	options embedder.Options
	client  *openai.Client
}

func (e *openAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = strings.ReplaceAll(t, "\n", " ")
	}

	req := openai.EmbeddingRequest{
		Input: inputs,
		Model: openai.EmbeddingModel(e.options.Model),
	}

	if strings.HasPrefix(e.options.Model, "text-embedding-3") {
		req.Dimensions = e.options.Dimensions
	}

	rsp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", embedder.ErrUnavailable, err)
	}

	vectors := make([][]float32, len(texts))
	for i, d := range rsp.Data {
		idx := d.Index
		if idx < 0 || idx >= len(vectors) {
			idx = i
		}
		if idx >= len(vectors) {
			break
		}
		vectors[idx] = d.Embedding
	}

	if err := embedder.Check(texts, vectors, e.options.Dimensions); err != nil {
		return nil, err
	}

	return vectors, nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	e := &openAIEmbedder{
		options: options,
	}

	config := openai.DefaultConfig(options.ApiKey)

	if len(options.BaseUrl) > 0 {
		config.BaseURL = options.BaseUrl
	}

	config.HTTPClient = &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   options.Timeout,
	}

	e.client = openai.NewClientWithConfig(config)

	return e
}
