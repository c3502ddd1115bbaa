package server

import (
	"context"
	"time"

	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
)

type Option func(*Options)

type Options struct {
	Name            string
	Version         string
	Address         string
	Catalog         *toolhandler.Catalog
	ShutdownTimeout time.Duration
	Context         context.Context
}

func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

func WithVersion(version string) Option {
	return func(o *Options) {
		o.Version = version
	}
}

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func WithCatalog(catalog *toolhandler.Catalog) Option {
	return func(o *Options) {
		o.Catalog = catalog
	}
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ShutdownTimeout = d
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Name:            "forumsearch",
		Version:         "0.1.0",
		ShutdownTimeout: 10 * time.Second,
		Context:         context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
