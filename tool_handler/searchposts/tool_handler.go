package searchposts

import (
	"context"
	"log/slog"
	"strings"

	"github.com/w-h-a/forumsearch/internal/service/search"
	"github.com/w-h-a/forumsearch/store"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
	getsafe "github.com/w-h-a/forumsearch/util/get_safe"
)

const Name = "search_posts"

type searchPostsToolHandler struct {
	options toolhandler.Options
	search  *search.Service
}

func (th *searchPostsToolHandler) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        Name,
		Description: "Semantic search over forum posts. Embeds the query and returns posts ranked by cosine similarity (rounded to 4 decimals), with total, limit, offset and has_more.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Free-text description of what to find.",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Number of results to return (1-100).",
					"minimum":     store.MinLimit,
					"maximum":     store.MaxLimit,
					"default":     th.options.DefaultLimit,
				},
				"offset": map[string]any{
					"type":        "integer",
					"description": "Number of results to skip.",
					"minimum":     0,
					"default":     0,
				},
			},
			"required": []any{"query"},
		},
		Examples: []map[string]any{
			{"query": "deceptive alignment in mesa-optimizers", "limit": 5},
		},
	}
}

func (th *searchPostsToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	query := strings.TrimSpace(getsafe.String(req.Arguments, "query"))

	limit, offset := toolhandler.PageArgs(ctx, req.Arguments, th.options.DefaultLimit)

	page, err := th.search.Search(ctx, query, limit, offset)
	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	return toolhandler.JSON(toolhandler.NewSearchResult(query, page), map[string]string{"tool": Name})
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	options := toolhandler.NewOptions(opts...)

	th := &searchPostsToolHandler{
		options: options,
	}

	svc, ok := SearchServiceFrom(options.Context)
	if !ok || svc == nil {
		detail := "search_posts tool requires a search service"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	th.search = svc

	return th
}
