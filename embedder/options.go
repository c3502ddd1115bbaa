package embedder

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	ApiKey     string
	Model      string
	BaseUrl    string
	Dimensions int
	Timeout    time.Duration
	Context    context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithBaseUrl(url string) Option {
	return func(o *Options) {
		o.BaseUrl = url
	}
}

func WithDimensions(dimensions int) Option {
	return func(o *Options) {
		o.Dimensions = dimensions
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Dimensions: 1536,
		Timeout:    30 * time.Second,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
