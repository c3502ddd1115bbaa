package openai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/forumsearch/generator"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultModel = openai.GPT4oMini

type openAIGenerator struct {
	options generator.Options
	client  *openai.Client
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var messages []openai.ChatCompletionMessage

	if len(g.options.SystemPrompt) > 0 {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: g.options.SystemPrompt,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:     g.options.Model,
		Messages:  messages,
		MaxTokens: g.options.MaxTokens,
	}

	rsp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", generator.ErrEmptyResponse
	}

	return rsp.Choices[0].Message.Content, nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	g := &openAIGenerator{
		options: options,
	}

	config := openai.DefaultConfig(options.ApiKey)

	if len(options.BaseUrl) > 0 {
		config.BaseURL = options.BaseUrl
	}

	config.HTTPClient = &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   options.Timeout,
	}

	g.client = openai.NewClientWithConfig(config)

	return g
}
