package forum

import (
	"context"
	"time"
)

const (
	DefaultUrl       = "https://www.lesswrong.com/graphql"
	DefaultUserAgent = "forumsearch/0.1.0"
)

type Option func(*Options)

type Options struct {
	Url       string
	UserAgent string
	View      string
	// AlignmentOnly restricts the post query to Alignment Forum posts.
	AlignmentOnly bool
	Timeout       time.Duration
	Context       context.Context
}

func WithUrl(url string) Option {
	return func(o *Options) {
		o.Url = url
	}
}

func WithUserAgent(userAgent string) Option {
	return func(o *Options) {
		o.UserAgent = userAgent
	}
}

func WithView(view string) Option {
	return func(o *Options) {
		o.View = view
	}
}

func WithAlignmentOnly(alignmentOnly bool) Option {
	return func(o *Options) {
		o.AlignmentOnly = alignmentOnly
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Url:           DefaultUrl,
		UserAgent:     DefaultUserAgent,
		View:          "new",
		AlignmentOnly: true,
		Timeout:       30 * time.Second,
		Context:       context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
