package toolhandler

import "context"

type Option func(*Options)

type Options struct {
	DefaultLimit int
	Context      context.Context
}

func WithDefaultLimit(limit int) Option {
	return func(o *Options) {
		o.DefaultLimit = limit
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		DefaultLimit: 10,
		Context:      context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
