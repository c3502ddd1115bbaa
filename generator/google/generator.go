package google

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/forumsearch/generator"
	genaiopt "google.golang.org/api/option"
)

const defaultModel = "gemini-1.5-flash"

type googleGenerator struct {
	options generator.Options
	client  *genai.Client
}

func (g *googleGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.options.Model)

	if g.options.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(g.options.MaxTokens))
	}

	if len(g.options.SystemPrompt) > 0 {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(g.options.SystemPrompt)},
		}
	}

	rsp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	if len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil {
		return "", generator.ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	if b.Len() == 0 {
		return "", generator.ErrEmptyResponse
	}

	return b.String(), nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	g := &googleGenerator{
		options: options,
	}

	client, err := genai.NewClient(
		context.Background(),
		genaiopt.WithAPIKey(options.ApiKey),
	)
	if err != nil {
		detail := "failed to initialize google generator"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	g.client = client

	return g
}
