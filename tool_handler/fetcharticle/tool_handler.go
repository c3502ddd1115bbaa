package fetcharticle

import (
	"context"
	"log/slog"

	"github.com/w-h-a/forumsearch/internal/service/article"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
	getsafe "github.com/w-h-a/forumsearch/util/get_safe"
)

const Name = "fetch_article_content"

type fetchArticleToolHandler struct {
	options toolhandler.Options
	article *article.Service
}

func (th *fetchArticleToolHandler) Spec() toolhandler.ToolSpec {
	return toolhandler.ToolSpec{
		Name:        Name,
		Description: "Fetch the full content of a forum article by post id or slug. Returns markdown with title, author, date, karma, comments, word count, URL and the HTML body.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"post_id": map[string]any{
					"type":        "string",
					"description": "The post id (17 characters) or slug of the article to fetch.",
				},
			},
			"required": []any{"post_id"},
		},
	}
}

func (th *fetchArticleToolHandler) Invoke(ctx context.Context, req toolhandler.ToolRequest) (toolhandler.ToolResponse, error) {
	md, err := th.article.Markdown(ctx, getsafe.String(req.Arguments, "post_id"))
	if err != nil {
		return toolhandler.ToolResponse{}, err
	}

	return toolhandler.ToolResponse{
		Content: md,
		Metadata: map[string]string{
			"tool":   Name,
			"format": "markdown",
		},
	}, nil
}

func NewToolHandler(opts ...toolhandler.Option) toolhandler.ToolHandler {
	options := toolhandler.NewOptions(opts...)

	th := &fetchArticleToolHandler{
		options: options,
	}

	svc, ok := ArticleServiceFrom(options.Context)
	if !ok || svc == nil {
		detail := "fetch_article_content tool requires an article service"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	th.article = svc

	return th
}
