package searchposts

import (
	"context"

	"github.com/w-h-a/forumsearch/internal/service/search"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
)

type searchKey struct{}

func WithSearchService(svc *search.Service) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, searchKey{}, svc)
	}
}

func SearchServiceFrom(ctx context.Context) (*search.Service, bool) {
	svc, ok := ctx.Value(searchKey{}).(*search.Service)
	return svc, ok
}
