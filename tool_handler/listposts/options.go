package listposts

import (
	"context"

	"github.com/w-h-a/forumsearch/internal/service/listing"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
)

type listingKey struct{}

func WithListingService(svc *listing.Service) toolhandler.Option {
	return func(o *toolhandler.Options) {
		o.Context = context.WithValue(o.Context, listingKey{}, svc)
	}
}

func ListingServiceFrom(ctx context.Context) (*listing.Service, bool) {
	svc, ok := ctx.Value(listingKey{}).(*listing.Service)
	return svc, ok
}
