package main

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/w-h-a/forumsearch/embedder"
	"github.com/w-h-a/forumsearch/embedder/cache"
	googleembedder "github.com/w-h-a/forumsearch/embedder/google"
	openaiembedder "github.com/w-h-a/forumsearch/embedder/openai"
	"github.com/w-h-a/forumsearch/forum"
	"github.com/w-h-a/forumsearch/forum/graphql"
	"github.com/w-h-a/forumsearch/internal/service/article"
	"github.com/w-h-a/forumsearch/internal/service/ingest"
	"github.com/w-h-a/forumsearch/internal/service/listing"
	"github.com/w-h-a/forumsearch/internal/service/search"
	"github.com/w-h-a/forumsearch/store"
	"github.com/w-h-a/forumsearch/store/memory"
	"github.com/w-h-a/forumsearch/store/postgres"
	"github.com/w-h-a/forumsearch/store/sqlite"
	toolhandler "github.com/w-h-a/forumsearch/tool_handler"
	"github.com/w-h-a/forumsearch/tool_handler/fetcharticle"
	"github.com/w-h-a/forumsearch/tool_handler/getpost"
	"github.com/w-h-a/forumsearch/tool_handler/listposts"
	"github.com/w-h-a/forumsearch/tool_handler/searchposts"
	"github.com/w-h-a/forumsearch/tool_handler/syncposts"
)

// app builds infrastructure handles on first use so each command only
// connects to what it needs.
type app struct {
	ctx      context.Context
	st       store.Store
	emb      embedder.Embedder
	fc       forum.Client
	rdb      *redis.Client
	ingester *ingest.Service
	catalog  *toolhandler.Catalog
}

func (a *app) store() store.Store {
	if a.st != nil {
		return a.st
	}

	opts := []store.Option{
		store.WithDimensions(embeddingDimensions(cfg.Embedder, cfg.Dimensions)),
		store.WithProbes(cfg.Probes),
	}

	switch cfg.Store {
	case "sqlite":
		a.st = sqlite.NewStore(append(opts, store.WithLocation(cfg.SqlitePath))...)
	case "memory":
		a.st = memory.NewStore(opts...)
	default:
		a.st = postgres.NewStore(append(opts, store.WithLocation(cfg.DatabaseUrl))...)
	}

	slog.InfoContext(a.ctx, "store ready", "backend", cfg.Store)

	return a.st
}

func (a *app) embedder() embedder.Embedder {
	if a.emb != nil {
		return a.emb
	}

	dimensions := embeddingDimensions(cfg.Embedder, cfg.Dimensions)

	opts := []embedder.Option{
		embedder.WithDimensions(dimensions),
	}
	if len(cfg.EmbeddingModel) > 0 {
		opts = append(opts, embedder.WithModel(cfg.EmbeddingModel))
	}

	var emb embedder.Embedder

	switch cfg.Embedder {
	case "google":
		emb = googleembedder.NewEmbedder(append(opts, embedder.WithApiKey(cfg.GoogleApiKey))...)
	default:
		opts = append(opts, embedder.WithApiKey(cfg.OpenaiApiKey))
		if len(cfg.OpenaiBaseUrl) > 0 {
			opts = append(opts, embedder.WithBaseUrl(cfg.OpenaiBaseUrl))
		}
		emb = openaiembedder.NewEmbedder(opts...)
	}

	if len(cfg.RedisUrl) > 0 {
		emb = cache.NewEmbedder(
			embedder.WithModel(cfg.Embedder+":"+cfg.EmbeddingModel),
			embedder.WithDimensions(dimensions),
			cache.WithNext(emb),
			cache.WithRedisClient(a.redis()),
			cache.WithTTL(cfg.CacheTtl),
		)
	}

	a.emb = emb

	return a.emb
}

func (a *app) redis() *redis.Client {
	if a.rdb != nil {
		return a.rdb
	}

	opts, err := redis.ParseURL(cfg.RedisUrl)
	if err != nil {
		detail := "failed to parse redis url"
		slog.ErrorContext(a.ctx, detail, "error", err)
		panic(detail)
	}

	a.rdb = redis.NewClient(opts)

	return a.rdb
}

func (a *app) forum() forum.Client {
	if a.fc == nil {
		a.fc = graphql.NewClient(forumOptions()...)
	}
	return a.fc
}

func (a *app) ingest() *ingest.Service {
	if a.ingester == nil {
		a.ingester = ingest.New(
			a.forum(),
			a.store(),
			a.embedder(),
			ingest.WithPageSize(cfg.PageSize),
			ingest.WithShards(cfg.Shards),
			ingest.WithEmbedBatchSize(cfg.EmbedBatchSize),
			ingest.WithEmbedDelay(cfg.EmbedDelay),
			ingest.WithFetchDelay(cfg.FetchDelay),
			ingest.WithBackfillLimit(cfg.BackfillLimit),
		)
	}
	return a.ingester
}

func (a *app) search() *search.Service {
	return search.New(a.embedder(), a.store())
}

// tools registers every local tool in a single catalog shared by all transports.
func (a *app) tools() *toolhandler.Catalog {
	if a.catalog != nil {
		return a.catalog
	}

	articles := article.New(a.store(), a.forum())
	limit := toolhandler.WithDefaultLimit(cfg.DefaultLimit)

	catalog, err := toolhandler.NewCatalog(
		listposts.NewToolHandler(limit, listposts.WithListingService(listing.New(a.store()))),
		searchposts.NewToolHandler(limit, searchposts.WithSearchService(a.search())),
		getpost.NewToolHandler(getpost.WithArticleService(articles)),
		fetcharticle.NewToolHandler(fetcharticle.WithArticleService(articles)),
		syncposts.NewToolHandler(syncposts.WithIngestService(a.ingest())),
	)
	if err != nil {
		detail := "failed to register tools"
		slog.ErrorContext(a.ctx, detail, "error", err)
		panic(detail)
	}

	a.catalog = catalog

	return a.catalog
}

func (a *app) close() {
	if a.st != nil {
		if err := a.st.Close(); err != nil {
			slog.WarnContext(a.ctx, "failed to close store", "error", err)
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			slog.WarnContext(a.ctx, "failed to close redis", "error", err)
		}
	}
}

func newApp(ctx context.Context) *app {
	return &app{ctx: ctx}
}
