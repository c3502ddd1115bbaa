package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/w-h-a/forumsearch/store"
)

// Indexer exposes the list count of the last BuildIndex call.
type Indexer interface {
	Lists() int
}

type memoryStore struct {
	options store.Options
	posts   map[string]store.Post
	lists   int
	mtx     sync.RWMutex
}

func (s *memoryStore) Upsert(ctx context.Context, post store.Post) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := time.Now().UTC()

	existing, ok := s.posts[post.ExternalId]

	rec := post
	rec.Embedding = copyVector(post.Embedding)
	rec.UpdatedAt = now

	if ok {
		rec.CreatedAt = existing.CreatedAt
		if len(rec.Embedding) == 0 {
			rec.Embedding = existing.Embedding
		}
	} else {
		rec.CreatedAt = now
	}

	rec.HasEmbedding = len(rec.Embedding) > 0

	s.posts[post.ExternalId] = rec

	return !ok, nil
}

func (s *memoryStore) UpdateEmbedding(ctx context.Context, externalId string, vector []float32) error {
	if len(vector) == 0 {
		return nil
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	rec, ok := s.posts[externalId]
	if !ok {
		return store.ErrNotFound
	}

	rec.Embedding = copyVector(vector)
	rec.HasEmbedding = true
	rec.UpdatedAt = time.Now().UTC()

	s.posts[externalId] = rec

	return nil
}

func (s *memoryStore) GetByIdOrSlug(ctx context.Context, identifier string) (store.Post, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if rec, ok := s.posts[identifier]; ok {
		return clonePost(rec), nil
	}

	var match *store.Post
	for id := range s.posts {
		rec := s.posts[id]
		if rec.Slug != identifier {
			continue
		}
		if match == nil || rec.ExternalId < match.ExternalId {
			match = &rec
		}
	}

	if match == nil {
		return store.Post{}, store.ErrNotFound
	}

	return clonePost(*match), nil
}

func (s *memoryStore) ListRecent(ctx context.Context, limit int, offset int) (store.Page, error) {
	limit, offset = store.ClampPage(limit, offset)

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	all := make([]store.Post, 0, len(s.posts))
	for _, rec := range s.posts {
		all = append(all, rec)
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].PostedAt.Equal(all[j].PostedAt) {
			return all[i].PostedAt.After(all[j].PostedAt)
		}
		return all[i].ExternalId < all[j].ExternalId
	})

	start, end := store.Window(len(all), limit, offset)

	posts := make([]store.Post, 0, end-start)
	for _, rec := range all[start:end] {
		posts = append(posts, clonePost(rec))
	}

	return store.Page{
		Posts:  posts,
		Total:  len(all),
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (s *memoryStore) SearchByEmbedding(ctx context.Context, vector []float32, limit int, offset int) (store.SearchPage, error) {
	limit, offset = store.ClampPage(limit, offset)

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	candidates := make([]store.Hit, 0, len(s.posts))

	for _, rec := range s.posts {
		if len(rec.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, store.Hit{
			Post:       rec,
			Similarity: store.CosineSimilarity(vector, rec.Embedding),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Similarity != candidates[j].Similarity {
			return candidates[i].Similarity > candidates[j].Similarity
		}
		return candidates[i].Post.ExternalId < candidates[j].Post.ExternalId
	})

	start, end := store.Window(len(candidates), limit, offset)

	hits := make([]store.Hit, 0, end-start)
	for _, hit := range candidates[start:end] {
		hit.Post = clonePost(hit.Post)
		hits = append(hits, hit)
	}

	return store.SearchPage{
		Hits:   hits,
		Total:  len(candidates),
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (s *memoryStore) MissingEmbeddings(ctx context.Context, externalIds []string) ([]store.Post, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var missing []store.Post
	for _, id := range externalIds {
		rec, ok := s.posts[id]
		if !ok || len(rec.Embedding) > 0 {
			continue
		}
		missing = append(missing, clonePost(rec))
	}

	return missing, nil
}

func (s *memoryStore) ListMissingEmbeddings(ctx context.Context, limit int) ([]store.Post, error) {
	if limit < 1 {
		return nil, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var missing []store.Post
	for _, rec := range s.posts {
		if len(rec.Embedding) == 0 {
			missing = append(missing, rec)
		}
	}

	sort.Slice(missing, func(i, j int) bool {
		if !missing[i].PostedAt.Equal(missing[j].PostedAt) {
			return missing[i].PostedAt.Before(missing[j].PostedAt)
		}
		return missing[i].ExternalId < missing[j].ExternalId
	})

	if len(missing) > limit {
		missing = missing[:limit]
	}

	for i := range missing {
		missing[i] = clonePost(missing[i])
	}

	return missing, nil
}

func (s *memoryStore) CountEmbedded(ctx context.Context) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	count := 0
	for _, rec := range s.posts {
		if len(rec.Embedding) > 0 {
			count++
		}
	}

	return count, nil
}

func (s *memoryStore) BuildIndex(ctx context.Context, lists int) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.lists = lists

	return nil
}

// Lists reports the list count of the last BuildIndex call, 0 if none.
func (s *memoryStore) Lists() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.lists
}

func (s *memoryStore) Close() error {
	return nil
}

func clonePost(p store.Post) store.Post {
	p.Embedding = copyVector(p.Embedding)
	return p
}

func copyVector(v []float32) []float32 {
	if len(v) == 0 {
		return nil
	}
	cpy := make([]float32, len(v))
	copy(cpy, v)
	return cpy
}

func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	s := &memoryStore{
		options: options,
		posts:   map[string]store.Post{},
		mtx:     sync.RWMutex{},
	}

	return s
}
