package getpost

import (
	"context"
	"log/slog"

	"github.com/w-h-a/forumsearch/internal/service/article"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
	getsafe "github.com/w-h-a/forumsearch/util/get_safe"
)

const Name = "get_post"

type getPostToolHandler struct {
	options toolhandler.Options
	article *article.Service
}

func (th *getPostToolHandler) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        Name,
		Description: "Get one stored forum post by its id or slug. Returns the post metadata and summary; fails when no post matches.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"post_id": map[string]any{
					"type":        "string",
					"description": "The post id or slug.",
				},
			},
			"required": []any{"post_id"},
		},
	}
}

func (th *getPostToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	post, err := th.article.Get(ctx, getsafe.String(req.Arguments, "post_id"))
	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	return toolhandler.JSON(post, map[string]string{
		"tool":    Name,
		"post_id": post.ExternalId,
	})
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	options := toolhandler.NewOptions(opts...)

	th := &getPostToolHandler{
		options: options,
	}

	svc, ok := ArticleServiceFrom(options.Context)
	if !ok || svc == nil {
		detail := "get_post tool requires an article service"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	th.article = svc

	return th
}
