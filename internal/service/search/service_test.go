package search

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/forumsearch/embedder"
	"github.com/w-h-a/forumsearch/store"
	"github.com/w-h-a/forumsearch/store/memory"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (e *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return [][]float32{e.vector}, nil
}

func seed(t *testing.T, st store.Store, id string, vec []float32) {
	t.Helper()
	_, err := st.Upsert(context.Background(), store.Post{
		ExternalId: id,
		Slug:       id,
		Title:      id,
		PostedAt:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Embedding:  vec,
	})
	require.NoError(t, err)
}

func TestSearchRanksBySimilarity(t *testing.T) {
	st := memory.NewStore()
	seed(t, st, "exact", []float32{1, 0, 0})
	seed(t, st, "close", []float32{0.9, 0.1, 0})
	seed(t, st, "opposite", []float32{-1, 0, 0})
	seed(t, st, "unembedded", nil)

	svc := New(&fakeEmbedder{vector: []float32{1, 0, 0}}, st)

	page, err := svc.Search(context.Background(), "inner alignment", 10, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Hits, 3)
	assert.Equal(t, "exact", page.Hits[0].Post.ExternalId)
	assert.Equal(t, 1.0, page.Hits[0].Similarity)
	assert.Equal(t, "close", page.Hits[1].Post.ExternalId)
	assert.Equal(t, 0.9939, page.Hits[1].Similarity)
	assert.Equal(t, "opposite", page.Hits[2].Post.ExternalId)
	assert.Equal(t, -1.0, page.Hits[2].Similarity)

	for i := 1; i < len(page.Hits); i++ {
		assert.LessOrEqual(t, page.Hits[i].Similarity, page.Hits[i-1].Similarity)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	e := &fakeEmbedder{vector: []float32{1, 0, 0}}
	svc := New(e, memory.NewStore())

	_, err := svc.Search(context.Background(), "   ", 10, 0)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Zero(t, e.calls)
}

func TestSearchEmbeddingFailure(t *testing.T) {
	svc := New(&fakeEmbedder{err: errors.New("boom")}, memory.NewStore())

	_, err := svc.Search(context.Background(), "query", 10, 0)
	assert.ErrorIs(t, err, embedder.ErrUnavailable)
}

func TestSearchPagination(t *testing.T) {
	st := memory.NewStore()
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		seed(t, st, id, []float32{1, 0, 0})
	}

	svc := New(&fakeEmbedder{vector: []float32{1, 0, 0}}, st)

	page, err := svc.Search(context.Background(), "q", 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Hits, 1)
	assert.Equal(t, "e", page.Hits[0].Post.ExternalId)
	assert.False(t, page.HasMore())

	page, err = svc.Search(context.Background(), "q", 2, 100)
	require.NoError(t, err)
	assert.Empty(t, page.Hits)
	assert.Equal(t, 5, page.Total)
}

func TestScore(t *testing.T) {
	assert.Equal(t, 1.0, Score(1.0000002))
	assert.Equal(t, -1.0, Score(-1.5))
	assert.Equal(t, 0.1235, Score(0.123456))
	assert.Equal(t, 0.0, Score(math.NaN()))
}
