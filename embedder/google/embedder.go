package google

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/forumsearch/embedder"
	genaiopt "google.golang.org/api/option"
)

const (
	defaultModel = "text-embedding-004"
	// Dimensions is the output width of the default model.
	Dimensions = 768
	// maxBatch is the largest batch the embedding endpoint accepts.
	maxBatch = 100
)

type googleEmbedder struct {
	options embedder.Options
	client  *genai.Client
}

func (e *googleEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	model := e.client.EmbeddingModel(e.options.Model)

	vectors := make([][]float32, 0, len(texts))

	for _, chunk := range embedder.Chunk(texts, maxBatch) {
		batch := model.NewBatch()
		for _, t := range chunk {
			batch.AddContent(genai.Text(t))
		}

		rsp, err := model.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", embedder.ErrUnavailable, err)
		}

		for _, emb := range rsp.Embeddings {
			if emb == nil {
				vectors = append(vectors, nil)
				continue
			}
			vectors = append(vectors, emb.Values)
		}
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

	e := &googleEmbedder{
		options: options,
	}

	client, err := genai.NewClient(
		context.Background(),
		genaiopt.WithAPIKey(options.ApiKey),
	)
	if err != nil {
		detail := "failed to initialize google embedder"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	e.client = client

	return e
}
