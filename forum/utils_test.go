package forum

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectorFor(t *testing.T) {
	assert.Equal(t, Selector{Id: "abcDEF1234567890x"}, SelectorFor("abcDEF1234567890x"))
	assert.Equal(t, Selector{Slug: "the-sharp-left-turn"}, SelectorFor("the-sharp-left-turn"))
	assert.Equal(t, Selector{Slug: "abcDEF1234567890"}, SelectorFor("abcDEF1234567890"))
	assert.Equal(t, Selector{Slug: "abc-EF1234567890x"}, SelectorFor("abc-EF1234567890x"))
}

func TestMarkdown(t *testing.T) {
	a := Article{
		Post: Post{
			Id:           "abcDEF1234567890x",
			Title:        "Risks from Learned Optimization",
			PageUrl:      "https://www.alignmentforum.org/posts/abcDEF1234567890x",
			PostedAt:     "2019-06-01T00:00:00.000Z",
			BaseScore:    120,
			VoteCount:    64,
			CommentCount: 12,
			Contents:     &Contents{WordCount: 4200},
			User:         &User{DisplayName: "Evan", Username: "evhub"},
		},
		HtmlBody: "<p>body</p>",
	}

	md := Markdown(a)

	assert.True(t, strings.HasPrefix(md, "# Risks from Learned Optimization\n\n"))
	assert.Contains(t, md, "**Author**: Evan (@evhub)\n")
	assert.Contains(t, md, "**Posted**: 2019-06-01\n")
	assert.Contains(t, md, "**Karma**: 120 (64 votes)\n")
	assert.Contains(t, md, "**Comments**: 12\n")
	assert.Contains(t, md, "**Word Count**: 4200\n")
	assert.Contains(t, md, "---\n\n<p>body</p>\n\n---\n\n")
}

func TestMarkdownWithoutUser(t *testing.T) {
	md := Markdown(Article{Post: Post{Title: "T"}})

	assert.Contains(t, md, "**Author**: Unknown\n")
	assert.Contains(t, md, "**Word Count**: 0\n")
}

func TestRound(t *testing.T) {
	assert.Equal(t, 3, Round(2.6))
	assert.Equal(t, 0, Round(math.NaN()))
	assert.Equal(t, -1, Round(-1))
}
