package toolprovider

import "context"

type Option func(*Options)

type Options struct {
	Addrs   []string
	Headers map[string]string
	Context context.Context
}

// WithAddrs sets the UTCP manual endpoints to discover tools from.
func WithAddrs(addrs ...string) Option {
	return func(o *Options) {
		o.Addrs = addrs
	}
}

func WithHeaders(headers map[string]string) Option {
	return func(o *Options) {
		o.Headers = headers
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Headers: map[string]string{},
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
