package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	external_id   TEXT PRIMARY KEY,
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
	posted_at     INTEGER NOT NULL,
	embedding     BLOB,
	revision      INTEGER NOT NULL DEFAULT 0,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_posts_posted_at ON posts(posted_at DESC, external_id);
CREATE INDEX IF NOT EXISTS idx_posts_slug ON posts(slug);
`
