package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/forumsearch/generator"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, defaultModel, req["model"])
		assert.NotNil(t, req["system"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "msg_1",
			"type":  "message",
			"role":  "assistant",
			"model": defaultModel,
			"content": []map[string]any{
				{"type": "text", "text": "an "},
				{"type": "text", "text": "answer"},
			},
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 3, "output_tokens": 2},
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
	assert.Equal(t, "an answer", out)
}
