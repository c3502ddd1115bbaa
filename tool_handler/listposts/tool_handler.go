package listposts

import (
	"context"
	"log/slog"

	"github.com/w-h-a/forumsearch/internal/service/listing"
	"github.com/w-h-a/forumsearch/store"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
)

const Name = "list_posts"

type listPostsToolHandler struct {
	options toolhandler.Options
	listing *listing.Service
}

func (th *listPostsToolHandler) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        Name,
		Description: "List stored forum posts, newest first. Returns total, limit, offset, has_more and a page of posts with title, summary, author, karma and URL.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "Number of posts to return (1-100).",
					"minimum":     store.MinLimit,
					"maximum":     store.MaxLimit,
					"default":     th.options.DefaultLimit,
				},
				"offset": map[string]any{
					"type":        "integer",
					"description": "Number of posts to skip.",
					"minimum":     0,
					"default":     0,
				},
			},
		},
		Examples: []map[string]any{
			{"limit": 10, "offset": 0},
		},
	}
}

func (th *listPostsToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	limit, offset := toolhandler.PageArgs(ctx, req.Arguments, th.options.DefaultLimit)

	page, err := th.listing.List(ctx, limit, offset)
	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	return toolhandler.JSON(toolhandler.NewPageResult(page), map[string]string{"tool": Name})
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	options := toolhandler.NewOptions(opts...)

	th := &listPostsToolHandler{
		options: options,
	}

	svc, ok := ListingServiceFrom(options.Context)
	if !ok || svc == nil {
		detail := "list_posts tool requires a listing service"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	th.listing = svc

	return th
}
