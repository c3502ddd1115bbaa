// Package storetest holds the behavioural contract every store.Store backend must satisfy.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/w-h-a/forumsearch/store"
)

// Dimensions is the embedding width used by the contract fixtures.
const Dimensions = 3

type ContractSuite struct {
	suite.Suite
	// NewStore returns an empty store for each test.
	NewStore func() store.Store
	store    store.Store
	ctx      context.Context
}

func (s *ContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStore()
}

func (s *ContractSuite) TearDownTest() {
	if s.store != nil {
		s.Require().NoError(s.store.Close())
	}
}

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func Fixture(n int, embedding []float32) store.Post {
	return store.Post{
		ExternalId:   fmt.Sprintf("post%013d", n),
		Slug:         fmt.Sprintf("post-%d", n),
		Title:        fmt.Sprintf("Post %d", n),
		Summary:      fmt.Sprintf("Summary of post %d", n),
		Url:          fmt.Sprintf("https://www.lesswrong.com/posts/%d", n),
		Author:       "Author",
		AuthorId:     "author",
		Score:        n,
		VoteCount:    n * 2,
		CommentCount: n * 3,
		WordCount:    100 + n,
		PostedAt:     base.Add(time.Duration(n) * time.Hour),
		Embedding:    embedding,
	}
}

func (s *ContractSuite) upsert(posts ...store.Post) {
	for _, p := range posts {
		_, err := s.store.Upsert(s.ctx, p)
		s.Require().NoError(err)
	}
}

func (s *ContractSuite) TestUpsertIsIdempotent() {
	p := Fixture(1, []float32{1, 0, 0})

	inserted, err := s.store.Upsert(s.ctx, p)
	s.Require().NoError(err)
	s.True(inserted)

	first, err := s.store.GetByIdOrSlug(s.ctx, p.ExternalId)
	s.Require().NoError(err)

	inserted, err = s.store.Upsert(s.ctx, p)
	s.Require().NoError(err)
	s.False(inserted)

	second, err := s.store.GetByIdOrSlug(s.ctx, p.ExternalId)
	s.Require().NoError(err)

	s.Equal(first.ExternalId, second.ExternalId)
	s.Equal(first.Slug, second.Slug)
	s.Equal(first.Title, second.Title)
	s.Equal(first.Summary, second.Summary)
	s.Equal(first.Url, second.Url)
	s.Equal(first.Author, second.Author)
	s.Equal(first.AuthorId, second.AuthorId)
	s.Equal(first.Score, second.Score)
	s.Equal(first.VoteCount, second.VoteCount)
	s.Equal(first.CommentCount, second.CommentCount)
	s.Equal(first.WordCount, second.WordCount)
	s.True(first.PostedAt.Equal(second.PostedAt))
	s.True(first.CreatedAt.Equal(second.CreatedAt))
	s.InDeltaSlice(first.Embedding, second.Embedding, 1e-6)
	s.False(second.UpdatedAt.Before(first.UpdatedAt))

	page, err := s.store.ListRecent(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Equal(1, page.Total)
}

func (s *ContractSuite) TestUpsertKeepsLatestScore() {
	p := Fixture(1, nil)
	p.Score = 10
	s.upsert(p)

	p.Score = 42
	p.VoteCount = 7
	s.upsert(p)

	got, err := s.store.GetByIdOrSlug(s.ctx, p.ExternalId)
	s.Require().NoError(err)
	s.Equal(42, got.Score)
	s.Equal(7, got.VoteCount)

	page, err := s.store.ListRecent(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Equal(1, page.Total)
	s.Len(page.Posts, 1)
}

func (s *ContractSuite) TestNilEmbeddingNeverClearsStoredOne() {
	p := Fixture(1, []float32{0, 1, 0})
	s.upsert(p)

	p.Embedding = nil
	p.Score = 99
	s.upsert(p)

	s.Require().NoError(s.store.UpdateEmbedding(s.ctx, p.ExternalId, nil))

	got, err := s.store.GetByIdOrSlug(s.ctx, p.ExternalId)
	s.Require().NoError(err)
	s.Equal(99, got.Score)
	s.True(got.HasEmbedding)
	s.InDeltaSlice([]float32{0, 1, 0}, got.Embedding, 1e-6)

	count, err := s.store.CountEmbedded(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *ContractSuite) TestNewEmbeddingOverwrites() {
	p := Fixture(1, []float32{0, 1, 0})
	s.upsert(p)

	p.Embedding = []float32{1, 0, 0}
	s.upsert(p)

	got, err := s.store.GetByIdOrSlug(s.ctx, p.ExternalId)
	s.Require().NoError(err)
	s.InDeltaSlice([]float32{1, 0, 0}, got.Embedding, 1e-6)
}

func (s *ContractSuite) TestUpdateEmbedding() {
	p := Fixture(1, nil)
	s.upsert(p)

	s.Require().NoError(s.store.UpdateEmbedding(s.ctx, p.ExternalId, []float32{0, 0, 1}))

	got, err := s.store.GetByIdOrSlug(s.ctx, p.ExternalId)
	s.Require().NoError(err)
	s.True(got.HasEmbedding)
	s.InDeltaSlice([]float32{0, 0, 1}, got.Embedding, 1e-6)
}

func (s *ContractSuite) TestGetByIdOrSlug() {
	p := Fixture(3, nil)
	s.upsert(p)

	byId, err := s.store.GetByIdOrSlug(s.ctx, p.ExternalId)
	s.Require().NoError(err)
	s.Equal(p.Title, byId.Title)

	bySlug, err := s.store.GetByIdOrSlug(s.ctx, p.Slug)
	s.Require().NoError(err)
	s.Equal(p.ExternalId, bySlug.ExternalId)

	_, err = s.store.GetByIdOrSlug(s.ctx, "missing")
	s.True(errors.Is(err, store.ErrNotFound))
}

func (s *ContractSuite) TestListRecentOrdering() {
	// two posts share a timestamp to exercise the id tie-break
	a := Fixture(1, nil)
	b := Fixture(2, nil)
	b.PostedAt = a.PostedAt
	c := Fixture(3, nil)
	s.upsert(b, c, a)

	page, err := s.store.ListRecent(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(page.Posts, 3)
	s.Equal(c.ExternalId, page.Posts[0].ExternalId)
	s.Equal(a.ExternalId, page.Posts[1].ExternalId)
	s.Equal(b.ExternalId, page.Posts[2].ExternalId)
}

func (s *ContractSuite) TestPaginationIsDeterministic() {
	for i := 0; i < 25; i++ {
		p := Fixture(i, nil)
		// groups of five share a timestamp
		p.PostedAt = base.Add(time.Duration(i/5) * time.Hour)
		s.upsert(p)
	}

	first, err := s.store.ListRecent(s.ctx, 10, 0)
	s.Require().NoError(err)
	second, err := s.store.ListRecent(s.ctx, 10, 10)
	s.Require().NoError(err)
	both, err := s.store.ListRecent(s.ctx, 20, 0)
	s.Require().NoError(err)

	s.Equal(25, first.Total)
	s.Equal(25, second.Total)
	s.True(first.HasMore())

	ids := func(posts []store.Post) []string {
		out := make([]string, 0, len(posts))
		for _, p := range posts {
			out = append(out, p.ExternalId)
		}
		return out
	}

	union := append(ids(first.Posts), ids(second.Posts)...)
	s.Equal(ids(both.Posts), union)

	seen := map[string]bool{}
	for _, id := range union {
		s.False(seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func (s *ContractSuite) TestOffsetBeyondEnd() {
	for i := 0; i < 5; i++ {
		s.upsert(Fixture(i, nil))
	}

	page, err := s.store.ListRecent(s.ctx, 10, 10_000)
	s.Require().NoError(err)
	s.Empty(page.Posts)
	s.Equal(5, page.Total)
	s.Equal(10_000, page.Offset)
}

func (s *ContractSuite) TestPaginationIsClamped() {
	for i := 0; i < 3; i++ {
		s.upsert(Fixture(i, nil))
	}

	page, err := s.store.ListRecent(s.ctx, 0, -5)
	s.Require().NoError(err)
	s.Equal(1, page.Limit)
	s.Equal(0, page.Offset)
	s.Len(page.Posts, 1)

	page, err = s.store.ListRecent(s.ctx, 1000, 0)
	s.Require().NoError(err)
	s.Equal(100, page.Limit)
	s.Len(page.Posts, 3)
}

func (s *ContractSuite) TestSearchSkipsPostsWithoutEmbedding() {
	s.upsert(
		Fixture(1, []float32{1, 0, 0}),
		Fixture(2, []float32{0, 1, 0}),
		Fixture(3, []float32{0, 0, 1}),
		Fixture(4, nil),
		Fixture(5, nil),
	)

	page, err := s.store.SearchByEmbedding(s.ctx, []float32{1, 1, 0}, 5, 0)
	s.Require().NoError(err)
	s.Equal(3, page.Total)
	s.Len(page.Hits, 3)

	for _, hit := range page.Hits {
		s.NotEqual(Fixture(4, nil).ExternalId, hit.Post.ExternalId)
		s.NotEqual(Fixture(5, nil).ExternalId, hit.Post.ExternalId)
	}
}

func (s *ContractSuite) TestSearchOrdering() {
	s.upsert(
		Fixture(1, []float32{1, 0, 0}),
		Fixture(2, []float32{0.9, 0.1, 0}),
		Fixture(3, []float32{0, 1, 0}),
		Fixture(4, []float32{-1, 0, 0}),
		Fixture(5, []float32{0.5, 0.5, 0.5}),
	)

	page, err := s.store.SearchByEmbedding(s.ctx, []float32{1, 0, 0}, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(page.Hits, 5)

	s.Equal(Fixture(1, nil).ExternalId, page.Hits[0].Post.ExternalId)
	s.InDelta(1.0, page.Hits[0].Similarity, 1e-5)
	s.Equal(Fixture(4, nil).ExternalId, page.Hits[4].Post.ExternalId)
	s.InDelta(-1.0, page.Hits[4].Similarity, 1e-5)

	for i := 1; i < len(page.Hits); i++ {
		s.LessOrEqual(page.Hits[i].Similarity, page.Hits[i-1].Similarity)
	}

	next, err := s.store.SearchByEmbedding(s.ctx, []float32{1, 0, 0}, 2, 2)
	s.Require().NoError(err)
	s.Require().Len(next.Hits, 2)
	s.Equal(page.Hits[2].Post.ExternalId, next.Hits[0].Post.ExternalId)
	s.Equal(page.Hits[3].Post.ExternalId, next.Hits[1].Post.ExternalId)

	empty, err := s.store.SearchByEmbedding(s.ctx, []float32{1, 0, 0}, 5, 500)
	s.Require().NoError(err)
	s.Empty(empty.Hits)
	s.Equal(5, empty.Total)
}

func (s *ContractSuite) TestMissingEmbeddings() {
	s.upsert(
		Fixture(1, []float32{1, 0, 0}),
		Fixture(2, nil),
		Fixture(3, nil),
	)

	missing, err := s.store.MissingEmbeddings(s.ctx, []string{
		Fixture(1, nil).ExternalId,
		Fixture(2, nil).ExternalId,
		Fixture(3, nil).ExternalId,
		"unknown",
	})
	s.Require().NoError(err)
	s.Require().Len(missing, 2)

	got := map[string]bool{}
	for _, p := range missing {
		got[p.ExternalId] = true
	}
	s.True(got[Fixture(2, nil).ExternalId])
	s.True(got[Fixture(3, nil).ExternalId])

	oldest, err := s.store.ListMissingEmbeddings(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(oldest, 1)
	s.Equal(Fixture(2, nil).ExternalId, oldest[0].ExternalId)

	count, err := s.store.CountEmbedded(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *ContractSuite) TestConcurrentUpsertsOnDisjointIds() {
	var wg sync.WaitGroup
	errs := make(chan error, 20)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := s.store.Upsert(s.ctx, Fixture(n, []float32{float32(n), 1, 0})); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		s.Require().NoError(err)
	}

	page, err := s.store.ListRecent(s.ctx, 100, 0)
	s.Require().NoError(err)
	s.Equal(20, page.Total)
}

func (s *ContractSuite) TestBuildIndex() {
	s.Require().NoError(s.store.BuildIndex(s.ctx, store.MinIndexLists))
}
