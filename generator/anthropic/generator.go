package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/w-h-a/forumsearch/generator"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultModel = "claude-3-5-haiku-latest"

type anthropicGenerator struct {
	options generator.Options
	client  *anthropic.Client
}

func (g *anthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.options.Model),
		MaxTokens: int64(g.options.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	if len(g.options.SystemPrompt) > 0 {
		req.System = []anthropic.TextBlockParam{
			{Text: g.options.SystemPrompt},
		}
	}

	rsp, err := g.client.Messages.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, content := range rsp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	result := b.String()
	if len(result) == 0 {
		return "", generator.ErrEmptyResponse
	}

	return result, nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	g := &anthropicGenerator{
		options: options,
	}

	clientOpts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(options.ApiKey),
		anthropicopt.WithHTTPClient(&http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   options.Timeout,
		}),
	}

	if len(options.BaseUrl) > 0 {
		clientOpts = append(clientOpts, anthropicopt.WithBaseURL(options.BaseUrl))
	}

	client := anthropic.NewClient(clientOpts...)

	g.client = &client

	return g
}
