// Package forum describes the upstream forum content API.
package forum

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrOffsetLimit is returned when the upstream refuses an offset past its skip ceiling.
	ErrOffsetLimit = errors.New("upstream offset limit reached")
	ErrNotFound    = errors.New("article not found upstream")
)

type Client interface {
	FetchPosts(ctx context.Context, query Query) ([]Post, error)
	FetchArticle(ctx context.Context, selector Selector) (Article, error)
}

// Query selects one page of posts, newest first.
type Query struct {
	After  *time.Time
	Offset int
	Limit  int
}

// Selector picks a single post by id or by slug; Id wins when both are set.
type Selector struct {
	Id   string
	Slug string
}

type Post struct {
	Id           string    `json:"_id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	PageUrl      string    `json:"pageUrl"`
	PostedAt     string    `json:"postedAt"`
	BaseScore    float64   `json:"baseScore"`
	VoteCount    float64   `json:"voteCount"`
	CommentCount float64   `json:"commentCount"`
	Contents     *Contents `json:"contents"`
	User         *User     `json:"user"`
}

type Contents struct {
	WordCount            float64 `json:"wordCount"`
	PlaintextDescription string  `json:"plaintextDescription"`
	Html                 string  `json:"html"`
}

type User struct {
	DisplayName string `json:"displayName"`
	Slug        string `json:"slug"`
	Username    string `json:"username"`
}

type Article struct {
	Post
	HtmlBody string `json:"htmlBody"`
}
