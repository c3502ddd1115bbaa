package toolhandler

import (
	"encoding/json"

	"github.com/w-h-a/forumsearch/store"
)

type PageResult struct {
	Total   int          `json:"total"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
	HasMore bool         `json:"has_more"`
	Posts   []store.Post `json:"posts"`
}

type SearchItem struct {
	store.Post
	Similarity float64 `json:"similarity"`
}

type SearchResult struct {
	Query   string       `json:"query"`
	Total   int          `json:"total"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
	HasMore bool         `json:"has_more"`
	Results []SearchItem `json:"results"`
}

func NewPageResult(page store.Page) PageResult {
	posts := page.Posts
	if posts == nil {
		posts = []store.Post{}
	}

	return PageResult{
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore(),
		Posts:   posts,
	}
}

func NewSearchResult(query string, page store.SearchPage) SearchResult {
	items := make([]SearchItem, 0, len(page.Hits))
	for _, h := range page.Hits {
		items = append(items, SearchItem{Post: h.Post, Similarity: h.Similarity})
	}

	return SearchResult{
		Query:   query,
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore(),
		Results: items,
	}
}

// JSON renders v as the indented content of a tool response.
func JSON(v any, metadata map[string]string) (ToolResponse, error) {
	bs, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ToolResponse{}, err
	}

	return ToolResponse{
		Content:  string(bs),
		Metadata: metadata,
	}, nil
}
