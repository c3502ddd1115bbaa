package graphql

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/machinebox/graphql"
	"github.com/w-h-a/forumsearch/forum"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const skipLimitMessage = "Exceeded maximum value for skip"

type postsResponse struct {
	Posts struct {
		Results []forum.Post `json:"results"`
	} `json:"posts"`
}

type articleResponse struct {
	Post struct {
		Result *forum.Article `json:"result"`
	} `json:"post"`
}

type graphqlClient struct {
	options forum.Options
	client  *graphql.Client
}

func (c *graphqlClient) FetchPosts(ctx context.Context, query forum.Query) ([]forum.Post, error) {
	req := graphql.NewRequest(postsQuery)

	req.Var("view", c.options.View)
	req.Var("limit", query.Limit)
	req.Var("offset", query.Offset)
	if query.After != nil {
		req.Var("after", query.After.UTC().Format(time.RFC3339))
	}
	if c.options.AlignmentOnly {
		req.Var("af", true)
	}

	c.headers(req)

	var rsp postsResponse
	if err := c.client.Run(ctx, req, &rsp); err != nil {
		if strings.Contains(err.Error(), skipLimitMessage) {
			return nil, fmt.Errorf("%w: offset %d", forum.ErrOffsetLimit, query.Offset)
		}
		return nil, fmt.Errorf("fetch posts at offset %d: %w", query.Offset, err)
	}

	return rsp.Posts.Results, nil
}

func (c *graphqlClient) FetchArticle(ctx context.Context, selector forum.Selector) (forum.Article, error) {
	var req *graphql.Request

	switch {
	case len(selector.Id) > 0:
		req = graphql.NewRequest(articleByIdQuery)
		req.Var("id", selector.Id)
	case len(selector.Slug) > 0:
		req = graphql.NewRequest(articleBySlugQuery)
		req.Var("slug", selector.Slug)
	default:
		return forum.Article{}, forum.ErrNotFound
	}

	c.headers(req)

	var rsp articleResponse
	if err := c.client.Run(ctx, req, &rsp); err != nil {
		return forum.Article{}, fmt.Errorf("fetch article: %w", err)
	}

	if rsp.Post.Result == nil || len(rsp.Post.Result.Id) == 0 {
		return forum.Article{}, forum.ErrNotFound
	}

	return *rsp.Post.Result, nil
}

func (c *graphqlClient) headers(req *graphql.Request) {
	req.Header.Set("User-Agent", c.options.UserAgent)
	req.Header.Set("Accept", "application/json")
}

func NewClient(opts ...forum.Option) forum.Client {
	options := forum.NewOptions(opts...)

	c := &graphqlClient{
		options: options,
	}

	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   options.Timeout,
	}

	client := graphql.NewClient(options.Url, graphql.WithHTTPClient(httpClient))
	client.Log = func(s string) {
		slog.Debug(s)
	}

	c.client = client

	return c
}
