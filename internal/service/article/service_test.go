package article

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/forumsearch/forum"
	"github.com/w-h-a/forumsearch/store"
	"github.com/w-h-a/forumsearch/store/memory"
)

type fakeForum struct {
	selectors []forum.Selector
	articles  map[string]forum.Article
}

func (f *fakeForum) FetchPosts(ctx context.Context, query forum.Query) ([]forum.Post, error) {
	return nil, nil
}

func (f *fakeForum) FetchArticle(ctx context.Context, selector forum.Selector) (forum.Article, error) {
	f.selectors = append(f.selectors, selector)

	key := selector.Id
	if len(key) == 0 {
		key = selector.Slug
	}

	a, ok := f.articles[key]
	if !ok {
		return forum.Article{}, forum.ErrNotFound
	}

	return a, nil
}

func stored(t *testing.T) store.Store {
	t.Helper()
	st := memory.NewStore()
	_, err := st.Upsert(context.Background(), store.Post{
		ExternalId: "abcDEF1234567890x",
		Slug:       "risks-from-learned-optimization",
		Title:      "Risks from Learned Optimization",
		PostedAt:   time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return st
}

func TestGet(t *testing.T) {
	svc := New(stored(t), &fakeForum{})

	p, err := svc.Get(context.Background(), "risks-from-learned-optimization")
	require.NoError(t, err)
	assert.Equal(t, "abcDEF1234567890x", p.ExternalId)

	_, err = svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Get(context.Background(), " ")
	assert.ErrorIs(t, err, ErrMissingIdentifier)
}

func TestFetchResolvesStoredSlug(t *testing.T) {
	f := &fakeForum{articles: map[string]forum.Article{
		"abcDEF1234567890x": {
			Post:     forum.Post{Id: "abcDEF1234567890x", Title: "Risks from Learned Optimization"},
			HtmlBody: "<p>mesa</p>",
		},
	}}

	svc := New(stored(t), f)

	md, err := svc.Markdown(context.Background(), "risks-from-learned-optimization")
	require.NoError(t, err)

	require.Len(t, f.selectors, 1)
	assert.Equal(t, forum.Selector{Id: "abcDEF1234567890x"}, f.selectors[0])
	assert.Contains(t, md, "# Risks from Learned Optimization")
	assert.Contains(t, md, "<p>mesa</p>")
}

func TestFetchUnknownSlugGoesUpstream(t *testing.T) {
	f := &fakeForum{articles: map[string]forum.Article{
		"new-post": {Post: forum.Post{Id: "zzzDEF1234567890x", Title: "New"}},
	}}

	svc := New(stored(t), f)

	a, err := svc.Fetch(context.Background(), "new-post")
	require.NoError(t, err)
	assert.Equal(t, "zzzDEF1234567890x", a.Id)
	assert.Equal(t, forum.Selector{Slug: "new-post"}, f.selectors[0])
}

func TestFetchNotFound(t *testing.T) {
	svc := New(stored(t), &fakeForum{})

	_, err := svc.Fetch(context.Background(), "qqqDEF1234567890x")
	assert.ErrorIs(t, err, forum.ErrNotFound)
}
