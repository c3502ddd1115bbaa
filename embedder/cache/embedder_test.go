package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/forumsearch/embedder"
)

type fakeBackend struct {
	mtx  sync.Mutex
	data map[string][]byte
	err  error
}

func (b *fakeBackend) get(ctx context.Context, key string) ([]byte, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	bs, ok := b.data[key]
	if !ok {
		return nil, errMiss
	}
	return bs, nil
}

func (b *fakeBackend) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()
	if b.err != nil {
		return b.err
	}
	b.data[key] = value
	return nil
}

type countingEmbedder struct {
	calls [][]string
	err   error
}

func (e *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls = append(e.calls, texts)
	if e.err != nil {
		return nil, e.err
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = []float32{float32(len(t)), 1}
	}
	return vectors, nil
}

func newCache(next embedder.Embedder, b backend) *cacheEmbedder {
	return &cacheEmbedder{
		options: embedder.NewOptions(embedder.WithModel("test"), embedder.WithDimensions(2)),
		next:    next,
		backend: b,
		ttl:     time.Minute,
	}
}

func TestEmbedOnlyForwardsMisses(t *testing.T) {
	next := &countingEmbedder{}
	c := newCache(next, &fakeBackend{data: map[string][]byte{}})

	first, err := c.Embed(context.Background(), []string{"a", "bb"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 1}, {2, 1}}, first)

	second, err := c.Embed(context.Background(), []string{"bb", "ccc", "a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{2, 1}, {3, 1}, {1, 1}}, second)

	require.Len(t, next.calls, 2)
	assert.Equal(t, []string{"ccc"}, next.calls[1])
}

func TestEmbedFallsThroughWhenCacheIsDown(t *testing.T) {
	next := &countingEmbedder{}
	c := newCache(next, &fakeBackend{data: map[string][]byte{}, err: errors.New("connection refused")})

	vectors, err := c.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 1}}, vectors)
}

func TestEmbedPropagatesProviderErrors(t *testing.T) {
	next := &countingEmbedder{err: embedder.ErrUnavailable}
	c := newCache(next, &fakeBackend{data: map[string][]byte{}})

	_, err := c.Embed(context.Background(), []string{"a"})
	assert.True(t, errors.Is(err, embedder.ErrUnavailable))
}

func TestKeyIsScopedByModel(t *testing.T) {
	a := newCache(&countingEmbedder{}, &fakeBackend{data: map[string][]byte{}})
	b := newCache(&countingEmbedder{}, &fakeBackend{data: map[string][]byte{}})
	b.options.Model = "other"

	assert.NotEqual(t, a.key("text"), b.key("text"))
	assert.Equal(t, a.key("text"), a.key("text"))
}

func TestKeyIsScopedByDimensions(t *testing.T) {
	a := newCache(&countingEmbedder{}, &fakeBackend{data: map[string][]byte{}})
	b := newCache(&countingEmbedder{}, &fakeBackend{data: map[string][]byte{}})
	b.options.Dimensions = 3

	assert.NotEqual(t, a.key("text"), b.key("text"))
}

func TestEmbedTreatsWrongWidthHitAsMiss(t *testing.T) {
	shared := &fakeBackend{data: map[string][]byte{}}

	narrow := newCache(&countingEmbedder{}, shared)
	_, err := narrow.Embed(context.Background(), []string{"hello"})
	require.NoError(t, err)

	wideNext := &wideEmbedder{}
	wide := newCache(wideNext, shared)
	wide.options.Dimensions = 3

	// Plant the narrow vector under the wide key.
	shared.data[wide.key("hello")] = shared.data[narrow.key("hello")]

	vectors, err := wide.Embed(context.Background(), []string{"hello"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Len(t, vectors[0], 3)
	assert.Equal(t, 1, wideNext.calls)
}

func TestEmbedRejectsProviderVectorsOfWrongWidth(t *testing.T) {
	c := newCache(&countingEmbedder{}, &fakeBackend{data: map[string][]byte{}})
	c.options.Dimensions = 3

	_, err := c.Embed(context.Background(), []string{"hello"})
	assert.ErrorIs(t, err, embedder.ErrUnavailable)
}

type wideEmbedder struct {
	calls int
}

func (e *wideEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 2, 3}
	}
	return vectors, nil
}
