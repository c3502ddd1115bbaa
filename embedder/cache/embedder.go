// Package cache memoizes embeddings in redis so repeated texts skip the provider.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/w-h-a/forumsearch/embedder"
	"github.com/w-h-a/forumsearch/internal/vecenc"
)

const defaultTTL = 30 * 24 * time.Hour

var errMiss = errors.New("cache miss")

type backend interface {
	get(ctx context.Context, key string) ([]byte, error)
	set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type redisBackend struct {
	client *redis.Client
}

func (b *redisBackend) get(ctx context.Context, key string) ([]byte, error) {
	bs, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errMiss
	}
	return bs, err
}

func (b *redisBackend) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, key, value, ttl).Err()
}

type cacheEmbedder struct {
	options embedder.Options
	next    embedder.Embedder
	backend backend
	ttl     time.Duration
}

func (e *cacheEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, len(texts))

	var missing []string
	var positions []int

	for i, t := range texts {
		bs, err := e.backend.get(ctx, e.key(t))
		if err != nil {
			if !errors.Is(err, errMiss) {
				slog.WarnContext(ctx, "embedding cache read failed", "error", err)
			}
			missing = append(missing, t)
			positions = append(positions, i)
			continue
		}

		vec, err := vecenc.Decode(bs)
		if err != nil || len(vec) == 0 || (e.options.Dimensions > 0 && len(vec) != e.options.Dimensions) {
			missing = append(missing, t)
			positions = append(positions, i)
			continue
		}

		vectors[i] = vec
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	fresh, err := e.next.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}

	if err := embedder.Check(missing, fresh, e.options.Dimensions); err != nil {
		return nil, err
	}

	for j, vec := range fresh {
		vectors[positions[j]] = vec

		if err := e.backend.set(ctx, e.key(missing[j]), vecenc.Encode(vec), e.ttl); err != nil {
			slog.WarnContext(ctx, "embedding cache write failed", "error", err)
		}
	}

	return vectors, nil
}

// key scopes entries by model and output width so a dimension change never
// serves vectors of the old width.
func (e *cacheEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("emb:%s:%d:%s", e.options.Model, e.options.Dimensions, hex.EncodeToString(sum[:]))
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	next, ok := NextFrom(options.Context)
	if !ok {
		detail := "cache embedder requires a next embedder"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	client, ok := RedisClientFrom(options.Context)
	if !ok {
		detail := "cache embedder requires a redis client"
		slog.ErrorContext(context.Background(), detail)
		panic(detail)
	}

	ttl, ok := TTLFrom(options.Context)
	if !ok {
		ttl = defaultTTL
	}

	return &cacheEmbedder{
		options: options,
		next:    next,
		backend: &redisBackend{client: client},
		ttl:     ttl,
	}
}
