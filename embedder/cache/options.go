package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/w-h-a/forumsearch/embedder"
)

type nextKey struct{}

// WithNext sets the embedder whose results are cached.
func WithNext(next embedder.Embedder) embedder.Option {
	return func(o *embedder.Options) {
		o.Context = context.WithValue(o.Context, nextKey{}, next)
	}
}

func NextFrom(ctx context.Context) (embedder.Embedder, bool) {
	next, ok := ctx.Value(nextKey{}).(embedder.Embedder)
	return next, ok
}

type redisClientKey struct{}

func WithRedisClient(client *redis.Client) embedder.Option {
	return func(o *embedder.Options) {
		o.Context = context.WithValue(o.Context, redisClientKey{}, client)
	}
}

func RedisClientFrom(ctx context.Context) (*redis.Client, bool) {
	client, ok := ctx.Value(redisClientKey{}).(*redis.Client)
	return client, ok
}

type ttlKey struct{}

func WithTTL(ttl time.Duration) embedder.Option {
	return func(o *embedder.Options) {
		o.Context = context.WithValue(o.Context, ttlKey{}, ttl)
	}
}

func TTLFrom(ctx context.Context) (time.Duration, bool) {
	ttl, ok := ctx.Value(ttlKey{}).(time.Duration)
	return ttl, ok
}
