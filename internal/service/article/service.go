package article

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/w-h-a/forumsearch/forum"
	"github.com/w-h-a/forumsearch/store"
)

var ErrMissingIdentifier = errors.New("post id or slug is required")

type Service struct {
	store store.Store
	forum forum.Client
}

// Get returns the stored record for an id or slug.
func (s *Service) Get(ctx context.Context, identifier string) (store.Post, error) {
	identifier = strings.TrimSpace(identifier)
	if len(identifier) == 0 {
		return store.Post{}, ErrMissingIdentifier
	}

	post, err := s.store.GetByIdOrSlug(ctx, identifier)
	if err != nil {
		return store.Post{}, fmt.Errorf("get post %q: %w", identifier, err)
	}

	return post, nil
}

// Fetch retrieves the full article from upstream. A stored record resolves
// slugs to ids; otherwise the identifier's shape decides.
func (s *Service) Fetch(ctx context.Context, identifier string) (forum.Article, error) {
	identifier = strings.TrimSpace(identifier)
	if len(identifier) == 0 {
		return forum.Article{}, ErrMissingIdentifier
	}

	selector := forum.SelectorFor(identifier)

	post, err := s.store.GetByIdOrSlug(ctx, identifier)
	switch {
	case err == nil:
		selector = forum.Selector{Id: post.ExternalId}
	case !errors.Is(err, store.ErrNotFound):
		return forum.Article{}, fmt.Errorf("resolve %q: %w", identifier, err)
	}

	article, err := s.forum.FetchArticle(ctx, selector)
	if err != nil {
		return forum.Article{}, fmt.Errorf("fetch article %q: %w", identifier, err)
	}

	return article, nil
}

// Markdown fetches the article and renders it for display.
func (s *Service) Markdown(ctx context.Context, identifier string) (string, error) {
	article, err := s.Fetch(ctx, identifier)
	if err != nil {
		return "", err
	}
	return forum.Markdown(article), nil
}

func New(st store.Store, forumClient forum.Client) *Service {
	if st == nil {
		panic("store is required")
	}

	if forumClient == nil {
		panic("forum client is required")
	}

	return &Service{
		store: st,
		forum: forumClient,
	}
}
