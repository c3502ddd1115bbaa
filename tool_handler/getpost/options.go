package getpost

import (
	"context"

	"github.com/w-h-a/forumsearch/internal/service/article"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
)

type articleKey struct{}

func WithArticleService(svc *article.Service) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, articleKey{}, svc)
	}
}

func ArticleServiceFrom(ctx context.Context) (*article.Service, bool) {
	svc, ok := ctx.Value(articleKey{}).(*article.Service)
	return svc, ok
}
