package store

// schema defines the chunks table and its FTS5 external-content shadow,
// kept in sync by triggers rather than maintained by the caller. See
// spec.md §3 (Chunk) and §4.5.
//
// The delete-sync statements use the lowercase 'delete' command literal
// FTS5 matches against the hidden control column — this is a literal
// string comparison inside sqlite's fts5 extension, not a SQL keyword,
// so case matters.
const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL,
	content TEXT NOT NULL,
	start_line INTEGER NOT NULL,
	end_line INTEGER NOT NULL,
	language TEXT NOT NULL DEFAULT '',
	chunk_type TEXT NOT NULL,
	token_count INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_path ON chunks(path);

CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
	content, path, language, content=chunks, content_rowid=id, tokenize='unicode61'
);

CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
	INSERT INTO chunks_fts(rowid, content, path, language)
	VALUES (new.id, new.content, new.path, new.language);
END;

CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
	INSERT INTO chunks_fts(chunks_fts, rowid, content, path, language)
	VALUES ('delete', old.id, old.content, old.path, old.language);
END;

CREATE TRIGGER IF NOT EXISTS chunks_au AFTER UPDATE ON chunks BEGIN
	INSERT INTO chunks_fts(chunks_fts, rowid, content, path, language)
	VALUES ('delete', old.id, old.content, old.path, old.language);
	INSERT INTO chunks_fts(rowid, content, path, language)
	VALUES (new.id, new.content, new.path, new.language);
END;
`

const pragmaWAL = `
PRAGMA journal_mode = WAL;
PRAGMA busy_timeout = 5000;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
`
