package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/forumsearch/embedder"
	"github.com/w-h-a/forumsearch/forum"
	"github.com/w-h-a/forumsearch/store"
	"github.com/w-h-a/forumsearch/store/memory"
)

type fakeForum struct {
	mtx         sync.Mutex
	posts       []forum.Post
	offsetLimit int
	failing     map[int]int
	queries     []forum.Query
	onFetch     func(query forum.Query)
}

func (f *fakeForum) FetchPosts(ctx context.Context, query forum.Query) ([]forum.Post, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.queries = append(f.queries, query)

	if f.onFetch != nil {
		f.onFetch(query)
	}

	if f.failing[query.Offset] > 0 {
		f.failing[query.Offset]--
		return nil, errors.New("upstream unavailable")
	}

	if f.offsetLimit > 0 && query.Offset >= f.offsetLimit {
		return nil, fmt.Errorf("%w: offset %d", forum.ErrOffsetLimit, query.Offset)
	}

	if query.Offset >= len(f.posts) {
		return nil, nil
	}

	end := min(query.Offset+query.Limit, len(f.posts))

	return append([]forum.Post{}, f.posts[query.Offset:end]...), nil
}

func (f *fakeForum) FetchArticle(ctx context.Context, selector forum.Selector) (forum.Article, error) {
	return forum.Article{}, forum.ErrNotFound
}

type fakeEmbedder struct {
	mtx   sync.Mutex
	fail  bool
	calls int
	texts int
	at    []time.Time
}

func (e *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.calls++
	e.at = append(e.at, time.Now())

	if e.fail {
		return nil, embedder.ErrUnavailable
	}

	e.texts += len(texts)

	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = []float32{float32(len(t)), 1, 0}
	}

	return vectors, nil
}

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func upstream(n int, score int) []forum.Post {
	posts := make([]forum.Post, n)
	for i := range posts {
		posts[i] = forum.Post{
			Id:        fmt.Sprintf("p%016d", i),
			Slug:      fmt.Sprintf("post-%d", i),
			Title:     fmt.Sprintf("Post %d", i),
			PostedAt:  base.Add(-time.Duration(i) * time.Minute).Format(time.RFC3339Nano),
			BaseScore: float64(score),
			Contents:  &forum.Contents{PlaintextDescription: "summary"},
			User:      &forum.User{DisplayName: "Ann", Slug: "ann"},
		}
	}
	return posts
}

func newService(f forum.Client, st store.Store, e embedder.Embedder, opts ...Option) *Service {
	opts = append([]Option{
		WithFetchDelay(0),
		WithEmbedDelay(0),
	}, opts...)
	return New(f, st, e, opts...)
}

func TestFullRunStopsAtOffsetLimit(t *testing.T) {
	f := &fakeForum{posts: upstream(2500, 1), offsetLimit: 2100}
	st := memory.NewStore()
	e := &fakeEmbedder{}

	stats, err := newService(f, st, e).Run(context.Background(), Full)
	require.NoError(t, err)

	assert.Equal(t, Full, stats.Mode)
	assert.NotEmpty(t, stats.RunId)
	assert.True(t, stats.ReachedOffsetLimit)
	assert.Equal(t, 2100, stats.Fetched)
	assert.Equal(t, 2100, stats.Inserted)
	assert.Equal(t, 2100, stats.Embedded)
	assert.Equal(t, 2000, stats.LastOffset)
	assert.Zero(t, stats.FetchFailures)

	assert.Equal(t, 45, stats.IndexLists)
	assert.Equal(t, 45, st.(memory.Indexer).Lists())

	page, err := st.ListRecent(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2100, page.Total)
}

func TestSuccessiveRunsUpdateInPlace(t *testing.T) {
	f := &fakeForum{posts: upstream(150, 1)}
	st := memory.NewStore()
	e := &fakeEmbedder{}
	svc := newService(f, st, e)

	first, err := svc.Run(context.Background(), Full)
	require.NoError(t, err)
	assert.Equal(t, 150, first.Inserted)
	assert.Equal(t, 150, first.Embedded)

	f.posts = upstream(150, 7)

	second, err := svc.Run(context.Background(), Full)
	require.NoError(t, err)
	assert.Zero(t, second.Inserted)
	assert.Equal(t, 150, second.Updated)
	assert.Zero(t, second.Embedded)

	got, err := st.GetByIdOrSlug(context.Background(), "post-3")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Score)
	assert.True(t, got.HasEmbedding)

	page, err := st.ListRecent(context.Background(), 100, 0)
	require.NoError(t, err)
	assert.Equal(t, 150, page.Total)
}

func TestEmbeddingFailuresAreSkipped(t *testing.T) {
	f := &fakeForum{posts: upstream(30, 1)}
	st := memory.NewStore()
	e := &fakeEmbedder{fail: true}

	stats, err := newService(f, st, e, WithEmbedBatchSize(10)).Run(context.Background(), Incremental)
	require.NoError(t, err)

	assert.Equal(t, 30, stats.Inserted)
	assert.Equal(t, 30, stats.EmbedFailures)
	assert.Zero(t, stats.Embedded)
	assert.Equal(t, 3, e.calls)

	page, err := st.ListRecent(context.Background(), 100, 0)
	require.NoError(t, err)
	assert.Equal(t, 30, page.Total)

	hits, err := st.SearchByEmbedding(context.Background(), []float32{1, 0, 0}, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, hits.Total)

	e.fail = false

	backfill, err := newService(f, st, e).Backfill(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 30, backfill.Embedded)

	hits, err = st.SearchByEmbedding(context.Background(), []float32{1, 0, 0}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 30, hits.Total)
}

func TestEmbedCallsArePaced(t *testing.T) {
	f := &fakeForum{posts: upstream(30, 1)}
	e := &fakeEmbedder{}
	delay := 20 * time.Millisecond

	start := time.Now()

	stats, err := newService(f, memory.NewStore(), e, WithEmbedBatchSize(10), WithEmbedDelay(delay)).Run(context.Background(), Incremental)
	require.NoError(t, err)
	assert.Equal(t, 30, stats.Embedded)

	require.Len(t, e.at, 3)
	assert.Less(t, e.at[0].Sub(start), delay)
	for i := 1; i < len(e.at); i++ {
		assert.GreaterOrEqual(t, e.at[i].Sub(e.at[i-1]), delay)
	}
}

func TestEmbedPacingCarriesIntoBackfill(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()

	for _, raw := range upstream(30, 1)[10:] {
		post, err := Normalize(raw)
		require.NoError(t, err)
		_, err = st.Upsert(ctx, post)
		require.NoError(t, err)
	}

	f := &fakeForum{posts: upstream(10, 1)}
	e := &fakeEmbedder{}
	delay := 20 * time.Millisecond

	stats, err := newService(f, st, e, WithEmbedBatchSize(10), WithEmbedDelay(delay)).Run(ctx, Incremental)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Inserted)
	assert.Equal(t, 30, stats.Embedded)

	require.Len(t, e.at, 3)
	// the first backfill call waits on the last call of the fetch phase
	assert.GreaterOrEqual(t, e.at[1].Sub(e.at[0]), delay)
	assert.GreaterOrEqual(t, e.at[2].Sub(e.at[1]), delay)
}

func TestRejectedRecordsAreCounted(t *testing.T) {
	posts := upstream(5, 1)
	posts[1].PostedAt = ""
	posts[3].Id = ""

	f := &fakeForum{posts: posts}
	st := memory.NewStore()

	stats, err := newService(f, st, &fakeEmbedder{}).Run(context.Background(), Incremental)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Fetched)
	assert.Equal(t, 2, stats.Rejected)
	assert.Equal(t, 3, stats.Inserted)
}

func TestFetchFailureSkipsPage(t *testing.T) {
	f := &fakeForum{posts: upstream(250, 1), failing: map[int]int{100: 1}}
	st := memory.NewStore()

	stats, err := newService(f, st, &fakeEmbedder{}).Run(context.Background(), Full)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.FetchFailures)
	assert.Equal(t, 150, stats.Fetched)
	assert.Equal(t, 200, stats.LastOffset)
	assert.False(t, stats.ReachedOffsetLimit)
}

func TestGivesUpAfterConsecutiveFetchFailures(t *testing.T) {
	f := &fakeForum{
		posts:   upstream(1000, 1),
		failing: map[int]int{0: 1, 100: 1, 200: 1, 300: 1},
	}
	st := memory.NewStore()

	stats, err := newService(f, st, &fakeEmbedder{}).Run(context.Background(), Full)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.FetchFailures)
	assert.Zero(t, stats.Fetched)
	assert.Equal(t, -1, stats.LastOffset)
	assert.Len(t, f.queries, 3)
}

func TestShardedFetchCommitsEveryPage(t *testing.T) {
	f := &fakeForum{posts: upstream(550, 1)}
	st := memory.NewStore()

	stats, err := newService(f, st, &fakeEmbedder{}, WithShards(3)).Run(context.Background(), Full)
	require.NoError(t, err)

	assert.Equal(t, 550, stats.Fetched)
	assert.Equal(t, 550, stats.Inserted)
	assert.Equal(t, 500, stats.LastOffset)
	assert.Len(t, f.queries, 6)
}

func TestCancelledShardDiscardsBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &fakeForum{posts: upstream(550, 1), failing: map[int]int{100: 1}}
	f.onFetch = func(query forum.Query) {
		if query.Offset == 100 {
			cancel()
		}
	}

	stats, err := newService(f, memory.NewStore(), &fakeEmbedder{}, WithShards(2)).Run(ctx, Full)
	require.ErrorIs(t, err, context.Canceled)

	assert.Zero(t, stats.FetchFailures)
	assert.Zero(t, stats.Fetched)
	assert.Equal(t, -1, stats.LastOffset)
	assert.Len(t, f.queries, 2)
}

func TestIncrementalRunUsesCutoff(t *testing.T) {
	f := &fakeForum{posts: upstream(10, 1)}
	st := memory.NewStore()

	before := time.Now().Add(-2 * time.Hour)

	_, err := newService(f, st, &fakeEmbedder{}, WithSince(2*time.Hour)).Run(context.Background(), Incremental)
	require.NoError(t, err)

	require.NotEmpty(t, f.queries)
	after := f.queries[0].After
	require.NotNil(t, after)
	assert.WithinDuration(t, before, *after, time.Minute)

	assert.Zero(t, st.(memory.Indexer).Lists())
}

func TestFullRunFetchesWithoutCutoff(t *testing.T) {
	f := &fakeForum{posts: upstream(10, 1)}

	stats, err := newService(f, memory.NewStore(), &fakeEmbedder{}).Run(context.Background(), Full)
	require.NoError(t, err)

	require.NotEmpty(t, f.queries)
	assert.Nil(t, f.queries[0].After)
	assert.Zero(t, stats.IndexLists)
}

func TestCancellationReturnsCheckpoint(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &fakeForum{posts: upstream(1000, 1)}
	f.onFetch = func(query forum.Query) {
		if query.Offset == 100 {
			cancel()
		}
	}

	stats, err := newService(f, memory.NewStore(), &fakeEmbedder{}).Run(ctx, Full)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 0, stats.LastOffset)
	assert.Equal(t, 200, stats.Fetched)
	assert.Len(t, f.queries, 2)
}

func TestRebuildIndexNeedsEnoughRows(t *testing.T) {
	st := memory.NewStore()
	svc := newService(&fakeForum{}, st, &fakeEmbedder{})

	lists, err := svc.RebuildIndex(context.Background())
	require.NoError(t, err)
	assert.Zero(t, lists)
	assert.Zero(t, st.(memory.Indexer).Lists())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Incremental, m)

	m, err = ParseMode("FULL")
	require.NoError(t, err)
	assert.Equal(t, Full, m)

	_, err = ParseMode("partial")
	assert.Error(t, err)
}

func TestRunSinceOverridesWindow(t *testing.T) {
	f := &fakeForum{posts: upstream(3, 1)}

	before := time.Now().Add(-6 * time.Hour)

	stats, err := newService(f, memory.NewStore(), &fakeEmbedder{}).RunSince(context.Background(), 6*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, Incremental, stats.Mode)

	require.NotEmpty(t, f.queries)
	assert.WithinDuration(t, before, *f.queries[0].After, time.Minute)
}
