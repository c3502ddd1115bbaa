package forum

import (
	"fmt"
	"math"
	"strings"
)

const idLength = 17

// SelectorFor decides by shape: 17 ASCII alphanumerics is an id, anything else a slug.
func SelectorFor(identifier string) Selector {
	identifier = strings.TrimSpace(identifier)
	if LooksLikeId(identifier) {
		return Selector{Id: identifier}
	}
	return Selector{Slug: identifier}
}

func LooksLikeId(s string) bool {
	if len(s) != idLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// Markdown renders an article with its metadata header.
func Markdown(a Article) string {
	var displayName, username string
	if a.User != nil {
		displayName = a.User.DisplayName
		username = a.User.Username
	}
	if len(displayName) == 0 {
		displayName = "Unknown"
	}

	var wordCount float64
	body := a.HtmlBody
	if a.Contents != nil {
		wordCount = a.Contents.WordCount
		if len(body) == 0 {
			body = a.Contents.Html
		}
	}

	posted := a.PostedAt
	if len(posted) > 10 {
		posted = posted[:10]
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", a.Title)
	if len(username) > 0 {
		fmt.Fprintf(&b, "**Author**: %s (@%s)\n", displayName, username)
	} else {
		fmt.Fprintf(&b, "**Author**: %s\n", displayName)
	}
	fmt.Fprintf(&b, "**Posted**: %s\n", posted)
	fmt.Fprintf(&b, "**Karma**: %d (%d votes)\n", Round(a.BaseScore), Round(a.VoteCount))
	fmt.Fprintf(&b, "**Comments**: %d\n", Round(a.CommentCount))
	fmt.Fprintf(&b, "**Word Count**: %d\n", Round(wordCount))
	fmt.Fprintf(&b, "**URL**: %s\n\n", a.PageUrl)
	b.WriteString("---\n\n")
	b.WriteString(body)
	b.WriteString("\n\n---\n\n")
	b.WriteString("*Fetched from Alignment Forum*\n")

	return b.String()
}

// Round converts an upstream numeric field to int, treating NaN as 0.
func Round(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}
