package postgres

import "fmt"

func schema(dimensions int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS posts (
	id            SERIAL PRIMARY KEY,
	external_id   TEXT NOT NULL UNIQUE,
	slug          TEXT NOT NULL DEFAULT '',
	title         TEXT NOT NULL DEFAULT '',
	summary       TEXT NOT NULL DEFAULT '',
	page_url      TEXT NOT NULL DEFAULT '',
	author        TEXT NOT NULL DEFAULT '',
	author_id     TEXT NOT NULL DEFAULT '',
	score         INTEGER NOT NULL DEFAULT 0,
	vote_count    INTEGER NOT NULL DEFAULT 0,
	comment_count INTEGER NOT NULL DEFAULT 0,
	word_count    INTEGER NOT NULL DEFAULT 0,
	posted_at     TIMESTAMPTZ NOT NULL,
	embedding     vector(%d),
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_posts_posted_at ON posts (posted_at DESC, external_id);
CREATE INDEX IF NOT EXISTS idx_posts_slug ON posts (slug);
`, dimensions)
}
