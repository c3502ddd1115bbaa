package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/w-h-a/forumsearch/generator"
	"github.com/w-h-a/forumsearch/internal/service/search"
	"github.com/w-h-a/forumsearch/store"
)

const (
	defaultK = 5
	// SystemPrompt is the default instruction given to the generator.
	SystemPrompt = "You answer questions about AI alignment research using only the forum posts provided. Cite posts by title and URL. Say so when the posts do not answer the question."
)

var ErrNoSources = errors.New("no posts matched the question")

type Answer struct {
	Text    string      `json:"answer"`
	Sources []store.Hit `json:"sources"`
}

type Service struct {
	search    *search.Service
	generator generator.Generator
}

// Answer retrieves the k most similar posts and asks the generator to answer from them.
func (s *Service) Answer(ctx context.Context, question string, k int) (Answer, error) {
	if k < 1 {
		k = defaultK
	}

	page, err := s.search.Search(ctx, question, k, 0)
	if err != nil {
		return Answer{}, err
	}

	if len(page.Hits) == 0 {
		return Answer{}, ErrNoSources
	}

	text, err := s.generator.Generate(ctx, Prompt(question, page.Hits))
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	return Answer{
		Text:    strings.TrimSpace(text),
		Sources: page.Hits,
	}, nil
}

// Prompt lists the retrieved posts ahead of the question.
func Prompt(question string, hits []store.Hit) string {
	var sb strings.Builder

	sb.WriteString("Relevant posts:\n\n")

	for i, h := range hits {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, h.Post.Title))
		sb.WriteString(fmt.Sprintf("   Author: %s\n", h.Post.Author))
		sb.WriteString(fmt.Sprintf("   URL: %s\n", h.Post.Url))
		sb.WriteString(fmt.Sprintf("   Similarity: %.4f\n", h.Similarity))
		if len(h.Post.Summary) > 0 {
			sb.WriteString(fmt.Sprintf("   Summary: %s\n", h.Post.Summary))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Question:\n")
	sb.WriteString(strings.TrimSpace(question))
	sb.WriteString("\n")

	return sb.String()
}

func New(searchService *search.Service, gen generator.Generator) *Service {
	if searchService == nil {
		panic("search service is required")
	}

	if gen == nil {
		panic("generator is required")
	}

	return &Service{
		search:    searchService,
		generator: gen,
	}
}
