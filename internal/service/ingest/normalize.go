package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/w-h-a/forumsearch/forum"
	"github.com/w-h-a/forumsearch/store"
)

const (
	maxSummaryRunes = 500
	unknownAuthor   = "Unknown"
)

var ErrRejected = errors.New("record rejected")

// Normalize maps an upstream post onto a store record.
func Normalize(p forum.Post) (store.Post, error) {
	id := strings.TrimSpace(p.Id)
	if len(id) == 0 {
		return store.Post{}, fmt.Errorf("%w: missing id", ErrRejected)
	}

	postedAt, err := parseTime(p.PostedAt)
	if err != nil {
		return store.Post{}, fmt.Errorf("%w: post %s: %w", ErrRejected, id, err)
	}

	post := store.Post{
		ExternalId:   id,
		Slug:         strings.TrimSpace(p.Slug),
		Title:        strings.TrimSpace(p.Title),
		Url:          strings.TrimSpace(p.PageUrl),
		Author:       unknownAuthor,
		Score:        forum.Round(p.BaseScore),
		VoteCount:    forum.Round(p.VoteCount),
		CommentCount: forum.Round(p.CommentCount),
		PostedAt:     postedAt,
	}

	if p.Contents != nil {
		post.Summary = truncate(strings.TrimSpace(p.Contents.PlaintextDescription), maxSummaryRunes)
		post.WordCount = forum.Round(p.Contents.WordCount)
	}

	if p.User != nil {
		if name := strings.TrimSpace(p.User.DisplayName); len(name) > 0 {
			post.Author = name
		}
		post.AuthorId = strings.TrimSpace(p.User.Slug)
	}

	return post, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return time.Time{}, errors.New("missing posted at")
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("posted at %q: %w", s, err)
	}

	return t.UTC(), nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
