package store

import "context"

type Option func(*Options)

type Options struct {
	Location   string
	Dimensions int
	Probes     int
	Context    context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithDimensions(dims int) Option {
	return func(o *Options) {
		o.Dimensions = dims
	}
}

// WithProbes sets how many index lists an approximate search visits.
func WithProbes(probes int) Option {
	return func(o *Options) {
		o.Probes = probes
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Dimensions: 1536,
		Probes:     10,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
