package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("post not found")

// Store persists posts keyed by their upstream external id.
//
// Upsert must resolve conflicts in a single statement so concurrent calls for
// disjoint ids never race. A nil embedding never clears a stored one.
type Store interface {
	Upsert(ctx context.Context, post Post) (bool, error)
	UpdateEmbedding(ctx context.Context, externalId string, vector []float32) error
	GetByIdOrSlug(ctx context.Context, identifier string) (Post, error)
	ListRecent(ctx context.Context, limit int, offset int) (Page, error)
	SearchByEmbedding(ctx context.Context, vector []float32, limit int, offset int) (SearchPage, error)
	MissingEmbeddings(ctx context.Context, externalIds []string) ([]Post, error)
	ListMissingEmbeddings(ctx context.Context, limit int) ([]Post, error)
	CountEmbedded(ctx context.Context) (int, error)
	BuildIndex(ctx context.Context, lists int) error
	Close() error
}
