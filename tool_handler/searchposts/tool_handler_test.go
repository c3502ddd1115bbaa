package searchposts

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/forumsearch/embedder"
	"github.com/w-h-a/forumsearch/internal/fakes"
	"github.com/w-h-a/forumsearch/internal/service/search"
	"github.com/w-h-a/forumsearch/store"
	"github.com/w-h-a/forumsearch/store/memory"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
)

func handler(t *testing.T, e *fakes.Embedder) toolhandler.ToolHandler {
	t.Helper()

	st := memory.NewStore()

	for id, vec := range map[string][]float32{
		"a": {1, 0, 0},
		"b": {0.5, 0.5, 0},
		"c": {0, 1, 0},
		"d": nil,
	} {
		_, err := st.Upsert(context.Background(), store.Post{
			ExternalId: id,
			Title:      id,
			PostedAt:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			Embedding:  vec,
		})
		require.NoError(t, err)
	}

	return NewToolHandler(WithSearchService(search.New(e, st)))
}

func TestSearch(t *testing.T) {
	th := handler(t, &fakes.Embedder{Default: []float32{1, 0, 0}})

	rsp, err := th.Invoke(context.Background(), toolhandler.ToolRequest{
		Arguments: map[string]any{"query": " mesa-optimization ", "limit": 2.0},
	})
	require.NoError(t, err)
	assert.Equal(t, Name, rsp.Metadata["tool"])

	var result toolhandler.SearchResult
	require.NoError(t, json.Unmarshal([]byte(rsp.Content), &result))

	assert.Equal(t, "mesa-optimization", result.Query)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Limit)
	assert.True(t, result.HasMore)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "a", result.Results[0].ExternalId)
	assert.Equal(t, 1.0, result.Results[0].Similarity)
	assert.Equal(t, "b", result.Results[1].ExternalId)
	assert.Equal(t, 0.7071, result.Results[1].Similarity)
}

func TestSearchNeedsQuery(t *testing.T) {
	th := handler(t, &fakes.Embedder{Default: []float32{1, 0, 0}})

	_, err := th.Invoke(context.Background(), toolhandler.ToolRequest{Arguments: map[string]any{}})
	assert.ErrorIs(t, err, search.ErrEmptyQuery)
}

func TestSearchSurfacesEmbeddingFailure(t *testing.T) {
	th := handler(t, &fakes.Embedder{Err: embedder.ErrUnavailable})

	_, err := th.Invoke(context.Background(), toolhandler.ToolRequest{
		Arguments: map[string]any{"query": "anything"},
	})
	assert.ErrorIs(t, err, embedder.ErrUnavailable)
}
