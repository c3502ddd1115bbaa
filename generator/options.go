package generator

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	ApiKey       string
	Model        string
	BaseUrl      string
	SystemPrompt string
	MaxTokens    int
	Timeout      time.Duration
	Context      context.Context
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

func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxTokens: 1024,
		Timeout:   60 * time.Second,
		Context:   context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
