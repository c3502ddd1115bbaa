package ingest

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	PageSize         int
	Shards           int
	EmbedBatchSize   int
	EmbedDelay       time.Duration
	FetchDelay       time.Duration
	BackfillLimit    int
	MaxFetchFailures int
	// Since bounds an incremental run to posts newer than now minus Since.
	Since   time.Duration
	Context context.Context
}

func WithPageSize(size int) Option {
	return func(o *Options) {
		o.PageSize = size
	}
}

func WithShards(shards int) Option {
	return func(o *Options) {
		o.Shards = shards
	}
}

func WithEmbedBatchSize(size int) Option {
	return func(o *Options) {
		o.EmbedBatchSize = size
	}
}

func WithEmbedDelay(delay time.Duration) Option {
	return func(o *Options) {
		o.EmbedDelay = delay
	}
}

func WithFetchDelay(delay time.Duration) Option {
	return func(o *Options) {
		o.FetchDelay = delay
	}
}

func WithBackfillLimit(limit int) Option {
	return func(o *Options) {
		o.BackfillLimit = limit
	}
}

func WithMaxFetchFailures(n int) Option {
	return func(o *Options) {
		o.MaxFetchFailures = n
	}
}

func WithSince(since time.Duration) Option {
	return func(o *Options) {
		o.Since = since
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		PageSize:         100,
		Shards:           1,
		EmbedBatchSize:   100,
		EmbedDelay:       500 * time.Millisecond,
		FetchDelay:       time.Second,
		BackfillLimit:    500,
		MaxFetchFailures: 3,
		Since:            48 * time.Hour,
		Context:          context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.PageSize < 1 {
		options.PageSize = 100
	}
	if options.Shards < 1 {
		options.Shards = 1
	}
	if options.EmbedBatchSize < 1 {
		options.EmbedBatchSize = 100
	}
	if options.MaxFetchFailures < 1 {
		options.MaxFetchFailures = 1
	}
	return options
}
