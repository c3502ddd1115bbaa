package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/forumsearch/generator"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		messages := req["messages"].([]any)
		require.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]any)["role"])
		assert.Equal(t, "question", messages[1].(map[string]any)["content"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": "answer"}, "finish_reason": "stop"},
			},
		})
	}))
	defer srv.Close()

	g := NewGenerator(
		generator.WithApiKey("test-key"),
		generator.WithBaseUrl(srv.URL),
		generator.WithSystemPrompt("be brief"),
	)

	out, err := g.Generate(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
}

func TestGenerateEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	g := NewGenerator(generator.WithApiKey("test-key"), generator.WithBaseUrl(srv.URL))

	_, err := g.Generate(context.Background(), "question")
	assert.True(t, errors.Is(err, generator.ErrEmptyResponse))
}
