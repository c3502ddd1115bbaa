package syncposts

import (
	"context"

	"github.com/w-h-a/forumsearch/internal/service/ingest"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
)

type ingestKey struct{}

func WithIngestService(svc *ingest.Service) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, ingestKey{}, svc)
	}
}

func IngestServiceFrom(ctx context.Context) (*ingest.Service, bool) {
	svc, ok := ctx.Value(ingestKey{}).(*ingest.Service)
	return svc, ok
}
