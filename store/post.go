package store

import "time"

type Post struct {
	ExternalId   string    `json:"external_id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Url          string    `json:"url"`
	Author       string    `json:"author"`
	AuthorId     string    `json:"author_id"`
	Score        int       `json:"score"`
	VoteCount    int       `json:"vote_count"`
	CommentCount int       `json:"comment_count"`
	WordCount    int       `json:"word_count"`
	PostedAt     time.Time `json:"posted_at"`
	Embedding    []float32 `json:"-"`
	HasEmbedding bool      `json:"has_embedding"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Page struct {
	Posts  []Post `json:"posts"`
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

func (p Page) HasMore() bool {
	return p.Offset+len(p.Posts) < p.Total
}

type Hit struct {
	Post       Post    `json:"post"`
	Similarity float64 `json:"similarity"`
}

type SearchPage struct {
	Hits   []Hit `json:"hits"`
	Total  int   `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

func (p SearchPage) HasMore() bool {
	return p.Offset+len(p.Hits) < p.Total
}
