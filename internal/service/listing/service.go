package listing

import (
	"context"
	"fmt"

	"github.com/w-h-a/forumsearch/store"
)

type Service struct {
	store store.Store
}

// List returns the newest posts first.
func (s *Service) List(ctx context.Context, limit int, offset int) (store.Page, error) {
	page, err := s.store.ListRecent(ctx, limit, offset)
	if err != nil {
		return store.Page{}, fmt.Errorf("list posts: %w", err)
	}
	return page, nil
}

func New(st store.Store) *Service {
	if st == nil {
		panic("store is required")
	}

	return &Service{
		store: st,
	}
}
