package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/w-h-a/forumsearch/internal/vecenc"
	"github.com/w-h-a/forumsearch/store"
	_ "modernc.org/sqlite"
)

const columns = `
	external_id, slug, title, summary, page_url, author, author_id,
	score, vote_count, comment_count, word_count, posted_at, embedding,
	created_at, updated_at
`

type sqliteStore struct {
	options store.Options
	conn    *sql.DB
}

func (s *sqliteStore) Upsert(ctx context.Context, post store.Post) (bool, error) {
	now := time.Now().UTC().UnixNano()

	query := `
		INSERT INTO posts (
			external_id, slug, title, summary, page_url, author, author_id,
			score, vote_count, comment_count, word_count, posted_at, embedding,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (external_id) DO UPDATE SET
			slug = excluded.slug,
			title = excluded.title,
			summary = excluded.summary,
			page_url = excluded.page_url,
			author = excluded.author,
			author_id = excluded.author_id,
			score = excluded.score,
			vote_count = excluded.vote_count,
			comment_count = excluded.comment_count,
			word_count = excluded.word_count,
			posted_at = excluded.posted_at,
			embedding = COALESCE(excluded.embedding, posts.embedding),
			revision = posts.revision + 1,
			updated_at = excluded.updated_at
		RETURNING revision
	`

	var revision int64
	if err := s.conn.QueryRowContext(
		ctx,
		query,
		post.ExternalId,
		post.Slug,
		post.Title,
		post.Summary,
		post.Url,
		post.Author,
		post.AuthorId,
		post.Score,
		post.VoteCount,
		post.CommentCount,
		post.WordCount,
		post.PostedAt.UTC().UnixNano(),
		blob(post.Embedding),
		now,
		now,
	).Scan(&revision); err != nil {
		return false, fmt.Errorf("upsert post %s: %w", post.ExternalId, err)
	}

	return revision == 0, nil
}

func (s *sqliteStore) UpdateEmbedding(ctx context.Context, externalId string, vector []float32) error {
	if len(vector) == 0 {
		return nil
	}

	res, err := s.conn.ExecContext(
		ctx,
		`UPDATE posts SET embedding = ?, updated_at = ? WHERE external_id = ?`,
		vecenc.Encode(vector),
		time.Now().UTC().UnixNano(),
		externalId,
	)
	if err != nil {
		return fmt.Errorf("update embedding %s: %w", externalId, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}

	return nil
}

func (s *sqliteStore) GetByIdOrSlug(ctx context.Context, identifier string) (store.Post, error) {
	query := `SELECT ` + columns + `
		FROM posts
		WHERE external_id = ? OR slug = ?
		ORDER BY (external_id = ?) DESC, external_id ASC
		LIMIT 1
	`

	rows, err := s.conn.QueryContext(ctx, query, identifier, identifier, identifier)
	if err != nil {
		return store.Post{}, err
	}
	defer rows.Close()

	posts, err := scanPosts(rows)
	if err != nil {
		return store.Post{}, err
	}

	if len(posts) == 0 {
		return store.Post{}, store.ErrNotFound
	}

	return posts[0], nil
}

func (s *sqliteStore) ListRecent(ctx context.Context, limit int, offset int) (store.Page, error) {
	limit, offset = store.ClampPage(limit, offset)

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return store.Page{}, err
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return store.Page{}, err
	}

	query := `SELECT ` + columns + `
		FROM posts
		ORDER BY posted_at DESC, external_id ASC
		LIMIT ? OFFSET ?
	`

	rows, err := tx.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return store.Page{}, err
	}
	defer rows.Close()

	posts, err := scanPosts(rows)
	if err != nil {
		return store.Page{}, err
	}

	return store.Page{
		Posts:  posts,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (s *sqliteStore) SearchByEmbedding(ctx context.Context, vector []float32, limit int, offset int) (store.SearchPage, error) {
	limit, offset = store.ClampPage(limit, offset)

	query := `SELECT ` + columns + `
		FROM posts
		WHERE embedding IS NOT NULL
	`

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return store.SearchPage{}, err
	}
	defer rows.Close()

	posts, err := scanPosts(rows)
	if err != nil {
		return store.SearchPage{}, err
	}

	candidates := make([]store.Hit, 0, len(posts))
	for _, p := range posts {
		candidates = append(candidates, store.Hit{
			Post:       p,
			Similarity: store.CosineSimilarity(vector, p.Embedding),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Similarity != candidates[j].Similarity {
			return candidates[i].Similarity > candidates[j].Similarity
		}
		return candidates[i].Post.ExternalId < candidates[j].Post.ExternalId
	})

	start, end := store.Window(len(candidates), limit, offset)

	return store.SearchPage{
		Hits:   append([]store.Hit{}, candidates[start:end]...),
		Total:  len(candidates),
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (s *sqliteStore) MissingEmbeddings(ctx context.Context, externalIds []string) ([]store.Post, error) {
	if len(externalIds) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(externalIds)), ",")
	args := make([]any, 0, len(externalIds))
	for _, id := range externalIds {
		args = append(args, id)
	}

	query := `SELECT ` + columns + `
		FROM posts
		WHERE embedding IS NULL AND external_id IN (` + placeholders + `)
		ORDER BY posted_at ASC, external_id ASC
	`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

func (s *sqliteStore) ListMissingEmbeddings(ctx context.Context, limit int) ([]store.Post, error) {
	if limit < 1 {
		return nil, nil
	}

	query := `SELECT ` + columns + `
		FROM posts
		WHERE embedding IS NULL
		ORDER BY posted_at ASC, external_id ASC
		LIMIT ?
	`

	rows, err := s.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

func (s *sqliteStore) CountEmbedded(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE embedding IS NOT NULL`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// BuildIndex is a no-op: search is an exact scan.
func (s *sqliteStore) BuildIndex(ctx context.Context, lists int) error {
	slog.DebugContext(ctx, "sqlite store has no approximate index", "lists", lists)
	return nil
}

func (s *sqliteStore) Close() error {
	return s.conn.Close()
}

func scanPosts(rows *sql.Rows) ([]store.Post, error) {
	var posts []store.Post

	for rows.Next() {
		var p store.Post
		var postedAt, createdAt, updatedAt int64
		var embedding []byte

		if err := rows.Scan(
			&p.ExternalId,
			&p.Slug,
			&p.Title,
			&p.Summary,
			&p.Url,
			&p.Author,
			&p.AuthorId,
			&p.Score,
			&p.VoteCount,
			&p.CommentCount,
			&p.WordCount,
			&postedAt,
			&embedding,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, err
		}

		vec, err := vecenc.Decode(embedding)
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", p.ExternalId, err)
		}

		p.Embedding = vec
		p.HasEmbedding = len(vec) > 0
		p.PostedAt = time.Unix(0, postedAt).UTC()
		p.CreatedAt = time.Unix(0, createdAt).UTC()
		p.UpdatedAt = time.Unix(0, updatedAt).UTC()

		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func blob(vec []float32) any {
	if len(vec) == 0 {
		return nil
	}
	return vecenc.Encode(vec)
}

func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	s := &sqliteStore{
		options: options,
	}

	// file path, e.g. ./data/posts.db
	conn, err := sql.Open("sqlite", s.options.Location)
	if err != nil {
		detail := "failed to open sqlite store"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	// one writer at a time
	conn.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			detail := "failed to configure sqlite store"
			slog.ErrorContext(context.Background(), detail, "pragma", pragma, "error", err)
			panic(detail)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		detail := "failed to initialize sqlite store schema"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	s.conn = conn

	return s
}
