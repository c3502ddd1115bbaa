package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/w-h-a/forumsearch/generator"
	anthropicgenerator "github.com/w-h-a/forumsearch/generator/anthropic"
	googlegenerator "github.com/w-h-a/forumsearch/generator/google"
	openaigenerator "github.com/w-h-a/forumsearch/generator/openai"
	"github.com/w-h-a/forumsearch/internal/service/answer"
	"github.com/w-h-a/forumsearch/internal/service/ingest"
	"github.com/w-h-a/forumsearch/server"
	httpserver "github.com/w-h-a/forumsearch/server/http"
	mcpserver "github.com/w-h-a/forumsearch/server/mcp"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
	"github.com/w-h-a/forumsearch/tool_handler/fetcharticle"
	"github.com/w-h-a/forumsearch/tool_handler/getpost"
	"github.com/w-h-a/forumsearch/tool_handler/listposts"
	"github.com/w-h-a/forumsearch/tool_handler/searchposts"
	"github.com/w-h-a/forumsearch/tool_handler/syncposts"
	toolprovider "github.com/w-h-a/forumsearch/tool_provider"
	"github.com/w-h-a/forumsearch/tool_provider/utcp"
	"golang.org/x/sync/errgroup"
)

type serveCmd struct {
	Transport string        `help:"Tool transport" default:"stdio" enum:"stdio,http,mcp-http"`
	Address   string        `help:"Listen address for HTTP transports" default:":8080"`
	BaseUrl   string        `help:"Public base URL advertised in the UTCP manual" default:""`
	SyncEvery time.Duration `help:"Run an incremental sync on this interval (disabled when 0)" default:"0s"`
}

func (c *serveCmd) Run(a *app) error {
	catalog := a.tools()

	opts := []server.Option{
		server.WithName(name),
		server.WithVersion(version),
		server.WithCatalog(catalog),
	}

	var srv server.Server

	switch c.Transport {
	case "http":
		opts = append(opts, server.WithAddress(c.Address))
		if len(c.BaseUrl) > 0 {
			opts = append(opts, httpserver.WithBaseUrl(c.BaseUrl))
		}
		srv = httpserver.NewServer(opts...)
	case "mcp-http":
		srv = mcpserver.NewServer(append(opts, server.WithAddress(c.Address), mcpserver.WithLogger(slog.Default()))...)
	default:
		srv = mcpserver.NewServer(append(opts, mcpserver.WithLogger(slog.Default()))...)
	}

	runCtx, cancel := context.WithCancel(a.ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		return srv.Run(ctx)
	})

	if c.SyncEvery > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(c.SyncEvery)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}

				if _, err := catalog.Invoke(ctx, syncposts.Name, nil); err != nil {
					slog.WarnContext(ctx, "scheduled sync failed", "error", err)
				}
			}
		})
	}

	return g.Wait()
}

type syncCmd struct {
	Mode  string `help:"Ingestion mode" default:"incremental" enum:"incremental,full"`
	Hours int    `help:"Incremental window in hours (48 when 0)" default:"0"`
}

func (c *syncCmd) Run(a *app) error {
	mode, err := ingest.ParseMode(c.Mode)
	if err != nil {
		return err
	}

	var stats ingest.Stats

	if mode == ingest.Incremental && c.Hours > 0 {
		stats, err = a.ingest().RunSince(a.ctx, time.Duration(c.Hours)*time.Hour)
	} else {
		stats, err = a.ingest().Run(a.ctx, mode)
	}

	if printErr := printJSON(stats); printErr != nil {
		return printErr
	}

	return err
}

type backfillCmd struct{}

func (c *backfillCmd) Run(a *app) error {
	stats, err := a.ingest().Backfill(a.ctx)
	if printErr := printJSON(stats); printErr != nil {
		return printErr
	}
	return err
}

type indexCmd struct{}

func (c *indexCmd) Run(a *app) error {
	lists, err := a.ingest().RebuildIndex(a.ctx)
	if err != nil {
		return err
	}

	return printJSON(map[string]any{
		"rebuilt": lists > 0,
		"lists":   lists,
	})
}

type listCmd struct {
	Limit  int `help:"Posts per page" default:"10"`
	Offset int `help:"Posts to skip" default:"0"`
}

func (c *listCmd) Run(a *app) error {
	return invoke(a, listposts.Name, map[string]any{
		"limit":  c.Limit,
		"offset": c.Offset,
	})
}

type searchCmd struct {
	Query  []string `arg:"" help:"Search query."`
	Limit  int      `help:"Results per page" default:"10"`
	Offset int      `help:"Results to skip" default:"0"`
}

func (c *searchCmd) Run(a *app) error {
	return invoke(a, searchposts.Name, map[string]any{
		"query":  strings.Join(c.Query, " "),
		"limit":  c.Limit,
		"offset": c.Offset,
	})
}

type getCmd struct {
	Id string `arg:"" help:"Post id or slug."`
}

func (c *getCmd) Run(a *app) error {
	return invoke(a, getpost.Name, map[string]any{"post_id": c.Id})
}

type articleCmd struct {
	Id string `arg:"" help:"Post id or slug."`
}

func (c *articleCmd) Run(a *app) error {
	return invoke(a, fetcharticle.Name, map[string]any{"post_id": c.Id})
}

type askCmd struct {
	Question        []string `arg:"" help:"Question to answer."`
	K               int      `help:"Posts to retrieve" default:"5"`
	Generator       string   `help:"Answer generator" default:"openai" enum:"openai,anthropic,google"`
	GeneratorModel  string   `help:"Generator model identifier (provider default when empty)" default:""`
	AnthropicApiKey string   `help:"Anthropic API key" env:"ANTHROPIC_API_KEY" default:""`
	MaxTokens       int      `help:"Maximum answer tokens" default:"1024"`
}

func (c *askCmd) Run(a *app) error {
	opts := []generator.Option{
		generator.WithSystemPrompt(answer.SystemPrompt),
		generator.WithMaxTokens(c.MaxTokens),
	}
	if len(c.GeneratorModel) > 0 {
		opts = append(opts, generator.WithModel(c.GeneratorModel))
	}

	var gen generator.Generator

	switch c.Generator {
	case "anthropic":
		gen = anthropicgenerator.NewGenerator(append(opts, generator.WithApiKey(c.AnthropicApiKey))...)
	case "google":
		gen = googlegenerator.NewGenerator(append(opts, generator.WithApiKey(cfg.GoogleApiKey))...)
	default:
		opts = append(opts, generator.WithApiKey(cfg.OpenaiApiKey))
		if len(cfg.OpenaiBaseUrl) > 0 {
			opts = append(opts, generator.WithBaseUrl(cfg.OpenaiBaseUrl))
		}
		gen = openaigenerator.NewGenerator(opts...)
	}

	svc := answer.New(a.search(), gen)

	ans, err := svc.Answer(a.ctx, strings.Join(c.Question, " "), c.K)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, ans.Text)
	fmt.Fprintln(os.Stdout)
	fmt.Fprintln(os.Stdout, "Sources:")
	for _, h := range ans.Sources {
		fmt.Fprintf(os.Stdout, "- %s (%s) similarity=%.4f\n", h.Post.Title, h.Post.Url, h.Similarity)
	}

	return nil
}

type callCmd struct {
	Tool   string            `arg:"" optional:"" help:"Remote tool name. Lists remote tools when empty."`
	Addr   []string          `help:"UTCP manual endpoints" default:"http://localhost:8080/utcp"`
	Header map[string]string `help:"Extra request headers (key=value)"`
	Args   string            `help:"Tool arguments as a JSON object" default:"{}"`
	Limit  int               `help:"Maximum tools to discover" default:"20"`
}

func (c *callCmd) Run(a *app) error {
	provider := utcp.NewToolProvider(
		toolprovider.WithAddrs(c.Addr...),
		toolprovider.WithHeaders(c.Header),
	)

	handlers, err := provider.Load(a.ctx, c.Tool, c.Limit)
	if err != nil {
		return err
	}

	if len(c.Tool) == 0 {
		specs := make([]toolhandler.ToolSpec, 0, len(handlers))
		for _, th := range handlers {
			specs = append(specs, th.Spec())
		}
		return printJSON(specs)
	}

	args := map[string]any{}
	if err := json.Unmarshal([]byte(c.Args), &args); err != nil {
		return fmt.Errorf("invalid --args: %w", err)
	}

	catalog, err := toolhandler.NewCatalog()
	if err != nil {
		return err
	}

	for _, th := range handlers {
		if strings.EqualFold(th.Spec().Name, c.Tool) {
			if err := catalog.Register(th); err != nil {
				return err
			}
			break
		}
	}

	rsp, err := catalog.Invoke(a.ctx, c.Tool, args)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, rsp.Content)

	return nil
}

func invoke(a *app, tool string, args map[string]any) error {
	rsp, err := a.tools().Invoke(a.ctx, tool, args)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, rsp.Content)

	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
