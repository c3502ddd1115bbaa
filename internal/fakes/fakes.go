// Package fakes holds in-memory collaborators for tests.
package fakes

import (
	"context"
	"sync"

	"github.com/w-h-a/forumsearch/embedder"
	"github.com/w-h-a/forumsearch/forum"
)

// Embedder returns Vectors[text] when set and Default otherwise.
type Embedder struct {
	Vectors map[string][]float32
	Default []float32
	Err     error
	mtx     sync.Mutex
	Calls   int
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.Calls++

	if e.Err != nil {
		return nil, e.Err
	}

	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := e.Vectors[t]; ok {
			vectors[i] = v
			continue
		}
		vectors[i] = e.Default
	}

	return vectors, nil
}

var _ embedder.Embedder = (*Embedder)(nil)

// Forum serves Posts by offset and Articles by id or slug.
type Forum struct {
	Posts    []forum.Post
	Articles []forum.Article
	mtx      sync.Mutex
	Queries  []forum.Query
}

func (f *Forum) FetchPosts(ctx context.Context, query forum.Query) ([]forum.Post, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.Queries = append(f.Queries, query)

	if query.Offset >= len(f.Posts) {
		return nil, nil
	}

	end := min(query.Offset+query.Limit, len(f.Posts))

	return append([]forum.Post{}, f.Posts[query.Offset:end]...), nil
}

func (f *Forum) FetchArticle(ctx context.Context, selector forum.Selector) (forum.Article, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	for _, a := range f.Articles {
		if len(selector.Id) > 0 && a.Id == selector.Id {
			return a, nil
		}
		if len(selector.Id) == 0 && len(selector.Slug) > 0 && a.Slug == selector.Slug {
			return a, nil
		}
	}

	return forum.Article{}, forum.ErrNotFound
}

type Generator struct {
	Reply   string
	Err     error
	Prompts []string
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	g.Prompts = append(g.Prompts, prompt)
	if g.Err != nil {
		return "", g.Err
	}
	return g.Reply, nil
}
