package http

import (
	"context"
	"net/http"

	"github.com/w-h-a/forumsearch/server"
)

type middlewareKey struct{}

type baseUrlKey struct{}

func WithMiddleware(ms ...func(h http.Handler) http.Handler) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, middlewareKey{}, ms)
	}
}

func MiddlewareFrom(ctx context.Context) ([]func(h http.Handler) http.Handler, bool) {
	ms, ok := ctx.Value(middlewareKey{}).([]func(h http.Handler) http.Handler)
	return ms, ok
}

// WithBaseUrl sets the public address advertised in the UTCP manual.
// Without it the manual is built from the incoming request.
func WithBaseUrl(u string) server.Option {
	return func(o *server.Options) {
		o.Context = context.WithValue(o.Context, baseUrlKey{}, u)
	}
}

func BaseUrlFrom(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(baseUrlKey{}).(string)
	return u, ok
}
