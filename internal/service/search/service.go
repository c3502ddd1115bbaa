package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/w-h-a/forumsearch/embedder"
	"github.com/w-h-a/forumsearch/store"
)

var ErrEmptyQuery = errors.New("query must not be empty")

type Service struct {
	embedder embedder.Embedder
	store    store.Store
}

// Search embeds the query and ranks embedded posts by cosine similarity.
func (s *Service) Search(ctx context.Context, query string, limit int, offset int) (store.SearchPage, error) {
	query = strings.TrimSpace(query)
	if len(query) == 0 {
		return store.SearchPage{}, ErrEmptyQuery
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		if errors.Is(err, embedder.ErrUnavailable) {
			return store.SearchPage{}, fmt.Errorf("embed query: %w", err)
		}
		return store.SearchPage{}, fmt.Errorf("embed query: %w: %w", embedder.ErrUnavailable, err)
	}

	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return store.SearchPage{}, fmt.Errorf("embed query: %w: no vector returned", embedder.ErrUnavailable)
	}

	page, err := s.store.SearchByEmbedding(ctx, vectors[0], limit, offset)
	if err != nil {
		return store.SearchPage{}, fmt.Errorf("search posts: %w", err)
	}

	for i := range page.Hits {
		page.Hits[i].Similarity = Score(page.Hits[i].Similarity)
	}

	return page, nil
}

// Score clamps a similarity to [-1, 1] and rounds it to 4 decimal places.
func Score(similarity float64) float64 {
	if math.IsNaN(similarity) {
		return 0
	}
	similarity = math.Max(-1, math.Min(1, similarity))
	return math.Round(similarity*10000) / 10000
}

func New(emb embedder.Embedder, st store.Store) *Service {
	if emb == nil {
		panic("embedder is required")
	}

	if st == nil {
		panic("store is required")
	}

	return &Service{
		embedder: emb,
		store:    st,
	}
}
