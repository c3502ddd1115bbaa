package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/forumsearch/embedder"
	"github.com/w-h-a/forumsearch/forum"
	"github.com/w-h-a/forumsearch/store"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	options  Options
	forum    forum.Client
	store    store.Store
	embedder embedder.Embedder
}

type page struct {
	offset int
	posts  []forum.Post
	err    error
}

// run carries the state of a single ingestion pass.
type run struct {
	stats  Stats
	failed map[string]bool
	calls  int
}

// Run fetches posts from upstream, upserts them, embeds those without a vector
// and, for a full run, rebuilds the vector index. Per-record and per-page
// failures are counted in the stats; store query failures end the run.
func (s *Service) Run(ctx context.Context, mode Mode) (Stats, error) {
	return s.run(ctx, mode, s.options.Since)
}

// RunSince is an incremental run over posts newer than now minus since.
func (s *Service) RunSince(ctx context.Context, since time.Duration) (Stats, error) {
	if since <= 0 {
		since = s.options.Since
	}
	return s.run(ctx, Incremental, since)
}

func (s *Service) run(ctx context.Context, mode Mode, since time.Duration) (Stats, error) {
	start := time.Now()

	r := &run{
		stats: Stats{
			RunId:      uuid.NewString(),
			Mode:       mode,
			LastOffset: -1,
		},
		failed: map[string]bool{},
	}

	log := slog.With("run_id", r.stats.RunId, "mode", mode)

	var after *time.Time
	if mode == Incremental {
		cutoff := start.Add(-since).UTC()
		after = &cutoff
	}

	log.InfoContext(ctx, "ingestion started", "after", after)

	finish := func(err error) (Stats, error) {
		r.stats.Duration = time.Since(start)
		if err != nil {
			log.WarnContext(ctx, "ingestion stopped", "checkpoint", r.stats.LastOffset, "error", err)
		} else {
			log.InfoContext(ctx, "ingestion finished",
				"fetched", r.stats.Fetched,
				"inserted", r.stats.Inserted,
				"updated", r.stats.Updated,
				"embedded", r.stats.Embedded,
				"embed_failures", r.stats.EmbedFailures,
				"fetch_failures", r.stats.FetchFailures,
				"reached_offset_limit", r.stats.ReachedOffsetLimit,
				"duration", r.stats.Duration,
			)
		}
		return r.stats, err
	}

	offset := 0
	consecutiveFailures := 0

	for {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		pages, err := s.fetch(ctx, after, offset)
		if err != nil {
			return finish(err)
		}

		done := false

		for _, pg := range pages {
			if errors.Is(pg.err, forum.ErrOffsetLimit) {
				log.InfoContext(ctx, "upstream offset limit reached", "offset", pg.offset)
				r.stats.ReachedOffsetLimit = true
				done = true
				break
			}

			if pg.err != nil {
				if err := ctx.Err(); err != nil {
					return finish(err)
				}
				r.stats.FetchFailures++
				consecutiveFailures++
				log.WarnContext(ctx, "failed to fetch page", "offset", pg.offset, "error", pg.err)
				if consecutiveFailures >= s.options.MaxFetchFailures {
					log.WarnContext(ctx, "giving up after consecutive fetch failures", "failures", consecutiveFailures)
					done = true
					break
				}
				continue
			}

			consecutiveFailures = 0

			if err := s.commit(ctx, r, pg.posts); err != nil {
				return finish(err)
			}

			r.stats.LastOffset = pg.offset

			log.DebugContext(ctx, "page committed", "offset", pg.offset, "posts", len(pg.posts))

			if len(pg.posts) < s.options.PageSize {
				done = true
				break
			}
		}

		if done {
			break
		}

		offset += s.options.PageSize * s.options.Shards

		if err := pause(ctx, s.options.FetchDelay); err != nil {
			return finish(err)
		}
	}

	if err := s.backfill(ctx, r); err != nil {
		return finish(err)
	}

	if mode == Full {
		lists, err := s.RebuildIndex(ctx)
		if err != nil {
			return finish(err)
		}
		r.stats.IndexLists = lists
	}

	return finish(nil)
}

// Backfill embeds stored posts that still lack a vector.
func (s *Service) Backfill(ctx context.Context) (Stats, error) {
	start := time.Now()

	r := &run{
		stats: Stats{
			RunId:      uuid.NewString(),
			LastOffset: -1,
		},
		failed: map[string]bool{},
	}

	err := s.backfill(ctx, r)

	r.stats.Duration = time.Since(start)

	slog.InfoContext(ctx, "backfill finished",
		"run_id", r.stats.RunId,
		"embedded", r.stats.Embedded,
		"embed_failures", r.stats.EmbedFailures,
	)

	return r.stats, err
}

// RebuildIndex rebuilds the approximate index once enough posts are embedded.
// It returns the list count used, or 0 when the index was not rebuilt.
func (s *Service) RebuildIndex(ctx context.Context) (int, error) {
	count, err := s.store.CountEmbedded(ctx)
	if err != nil {
		return 0, fmt.Errorf("count embedded posts: %w", err)
	}

	if count < store.MinIndexRows {
		slog.InfoContext(ctx, "skipping index rebuild", "embedded", count, "minimum", store.MinIndexRows)
		return 0, nil
	}

	lists := store.IndexLists(count)

	if err := s.store.BuildIndex(ctx, lists); err != nil {
		return 0, fmt.Errorf("build index: %w", err)
	}

	return lists, nil
}

// fetch reads one page per shard concurrently. A page that fails on its own is
// returned with its error; a failure caused by cancellation aborts the batch.
func (s *Service) fetch(ctx context.Context, after *time.Time, offset int) ([]page, error) {
	pages := make([]page, s.options.Shards)

	var g errgroup.Group
	g.SetLimit(s.options.Shards)

	for i := range pages {
		off := offset + i*s.options.PageSize
		g.Go(func() error {
			posts, err := s.forum.FetchPosts(ctx, forum.Query{
				After:  after,
				Offset: off,
				Limit:  s.options.PageSize,
			})
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			pages[i] = page{offset: off, posts: posts, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return pages, nil
}

func (s *Service) commit(ctx context.Context, r *run, posts []forum.Post) error {
	r.stats.Fetched += len(posts)

	ids := make([]string, 0, len(posts))

	for _, raw := range posts {
		post, err := Normalize(raw)
		if err != nil {
			r.stats.Rejected++
			slog.DebugContext(ctx, "rejected post", "error", err)
			continue
		}

		inserted, err := s.store.Upsert(ctx, post)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.stats.UpsertFailures++
			slog.WarnContext(ctx, "failed to upsert post", "post_id", post.ExternalId, "error", err)
			continue
		}

		if inserted {
			r.stats.Inserted++
		} else {
			r.stats.Updated++
		}

		ids = append(ids, post.ExternalId)
	}

	missing, err := s.store.MissingEmbeddings(ctx, ids)
	if err != nil {
		return fmt.Errorf("find posts missing embeddings: %w", err)
	}

	return s.embed(ctx, r, missing)
}

func (s *Service) backfill(ctx context.Context, r *run) error {
	if s.options.BackfillLimit < 1 {
		return nil
	}

	missing, err := s.store.ListMissingEmbeddings(ctx, s.options.BackfillLimit+len(r.failed))
	if err != nil {
		return fmt.Errorf("list posts missing embeddings: %w", err)
	}

	pending := make([]store.Post, 0, len(missing))
	for _, p := range missing {
		if r.failed[p.ExternalId] {
			continue
		}
		pending = append(pending, p)
		if len(pending) == s.options.BackfillLimit {
			break
		}
	}

	if len(pending) > 0 {
		slog.InfoContext(ctx, "backfilling embeddings", "posts", len(pending))
	}

	return s.embed(ctx, r, pending)
}

func (s *Service) embed(ctx context.Context, r *run, posts []store.Post) error {
	for start := 0; start < len(posts); start += s.options.EmbedBatchSize {
		end := min(start+s.options.EmbedBatchSize, len(posts))
		batch := posts[start:end]

		if r.calls > 0 {
			if err := pause(ctx, s.options.EmbedDelay); err != nil {
				return err
			}
		}
		r.calls++

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = embedder.Text(p.Title, p.Summary)
		}

		vectors, err := s.embedder.Embed(ctx, texts)
		if err == nil {
			err = embedder.Check(texts, vectors, 0)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.stats.EmbedFailures += len(batch)
			for _, p := range batch {
				r.failed[p.ExternalId] = true
			}
			slog.WarnContext(ctx, "failed to embed batch", "posts", len(batch), "error", err)
			continue
		}

		for i, p := range batch {
			if err := s.store.UpdateEmbedding(ctx, p.ExternalId, vectors[i]); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.stats.EmbedFailures++
				r.failed[p.ExternalId] = true
				slog.WarnContext(ctx, "failed to store embedding", "post_id", p.ExternalId, "error", err)
				continue
			}
			r.stats.Embedded++
		}
	}

	return nil
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func New(
	forumClient forum.Client,
	st store.Store,
	emb embedder.Embedder,
	opts ...Option,
) *Service {
	if forumClient == nil {
		panic("forum client is required")
	}

	if st == nil {
		panic("store is required")
	}

	if emb == nil {
		panic("embedder is required")
	}

	return &Service{
		options:  NewOptions(opts...),
		forum:    forumClient,
		store:    st,
		embedder: emb,
	}
}
