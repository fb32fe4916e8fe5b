package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/oOSomnus/codii/internal/chunk"
	codiierrors "github.com/oOSomnus/codii/internal/errors"
)

// ChunkStore is the sqlite-backed chunk store described in spec.md §4.5.
type ChunkStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

// Open creates or opens the chunk store at path ("" for an in-memory
// store, used by tests).
func Open(path string) (*ChunkStore, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, codiierrors.IOError("creating chunk store directory", err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, codiierrors.IOError("opening chunk store", err)
	}
	db.SetMaxOpenConns(1) // single writer; sqlite serializes anyway
	db.SetMaxIdleConns(1)

	for _, stmt := range strings.Split(pragmaWAL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, codiierrors.IOError("configuring chunk store", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, codiierrors.IntegrityError("initializing chunk store schema", err)
	}

	return &ChunkStore{db: db, path: path}, nil
}

// Close closes the underlying database handle.
func (s *ChunkStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// InsertChunks atomically inserts chunks for a single file and returns
// the ids sqlite assigned, in the same order as the input.
func (s *ChunkStore) InsertChunks(ctx context.Context, chunks []chunk.Chunk) ([]int64, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, codiierrors.InternalError("insert chunks", fmt.Errorf("chunk store is closed"))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, codiierrors.IOError("beginning transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (path, content, start_line, end_line, language, chunk_type, token_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, codiierrors.IOError("preparing insert", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	ids := make([]int64, len(chunks))
	for i, c := range chunks {
		res, err := stmt.ExecContext(ctx, c.Path, c.Content, c.StartLine, c.EndLine, c.Language, string(c.ChunkType), c.TokenCount, now)
		if err != nil {
			return nil, codiierrors.IOError("inserting chunk", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, codiierrors.IOError("reading assigned chunk id", err)
		}
		ids[i] = id
	}

	if err := tx.Commit(); err != nil {
		return nil, codiierrors.IOError("committing transaction", err)
	}
	return ids, nil
}

// DeleteChunksByPath removes every chunk recorded for path, returning
// the ids removed (so the caller can also remove their vectors).
func (s *ChunkStore) DeleteChunksByPath(ctx context.Context, path string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, codiierrors.InternalError("delete chunks", fmt.Errorf("chunk store is closed"))
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM chunks WHERE path = ?`, path)
	if err != nil {
		return nil, codiierrors.IOError("querying chunks by path", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, codiierrors.IOError("scanning chunk id", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, codiierrors.IOError("iterating chunk ids", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE path = ?`, path); err != nil {
		return nil, codiierrors.IOError("deleting chunks by path", err)
	}
	return ids, nil
}

// GetByIDs fetches chunk records by id, skipping ids that no longer
// exist (soft-deleted elsewhere or raced with a concurrent delete).
func (s *ChunkStore) GetByIDs(ctx context.Context, ids []int64) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, codiierrors.InternalError("get chunks", fmt.Errorf("chunk store is closed"))
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, path, content, start_line, end_line, language, chunk_type, token_count, created_at
		FROM chunks WHERE id IN (%s)
	`, strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, codiierrors.IOError("querying chunks by id", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var chunkType string
		if err := rows.Scan(&r.ID, &r.Path, &r.Content, &r.StartLine, &r.EndLine, &r.Language, &chunkType, &r.TokenCount, &r.CreatedAt); err != nil {
			return nil, codiierrors.IOError("scanning chunk record", err)
		}
		r.ChunkType = chunk.Type(chunkType)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SearchFTS runs an FTS5 MATCH query (already built by internal/query) and
// returns hits ordered best-first (BM25 ascending, i.e. best-scoring
// first), capped at limit. When extensionFilter is non-empty, only chunks
// whose path extension is one of its entries (e.g. ".go") are returned.
func (s *ChunkStore) SearchFTS(ctx context.Context, matchExpr string, limit int, extensionFilter []string) ([]SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, codiierrors.InternalError("search", fmt.Errorf("chunk store is closed"))
	}
	if strings.TrimSpace(matchExpr) == "" {
		return nil, nil
	}

	query := `
		SELECT rowid, bm25(chunks_fts) AS score, path
		FROM chunks_fts
		WHERE chunks_fts MATCH ?
		ORDER BY score
	`
	args := []any{matchExpr}
	if len(extensionFilter) > 0 {
		// Over-fetch unfiltered, then filter by extension in Go: FTS5's path
		// column isn't indexed for suffix matching and extensionFilter sets
		// are small, so this is simpler than building per-extension LIKE
		// clauses against an unindexed column.
		query += ` LIMIT ?`
		args = append(args, limit*multiLangOverfetchFactor(len(extensionFilter)))
	} else {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "fts5") || strings.Contains(err.Error(), "syntax error") {
			return nil, codiierrors.ValidationError("invalid search query syntax", err)
		}
		return nil, codiierrors.IOError("executing fts query", err)
	}
	defer rows.Close()

	allowed := make(map[string]bool, len(extensionFilter))
	for _, ext := range extensionFilter {
		allowed[ext] = true
	}

	var hits []SearchHit
	for rows.Next() {
		var id int64
		var score float64
		var path string
		if err := rows.Scan(&id, &score, &path); err != nil {
			return nil, codiierrors.IOError("scanning search hit", err)
		}
		if len(allowed) > 0 && !allowed[filepath.Ext(path)] {
			continue
		}
		// fts5's bm25() is "lower is better"; flip sign so higher is better,
		// matching the convention internal/search expects for rank ordering.
		hits = append(hits, SearchHit{ChunkID: id, Rank: len(hits) + 1, Score: -score})
		if len(hits) == limit {
			break
		}
	}
	return hits, rows.Err()
}

// multiLangOverfetchFactor widens the unfiltered LIMIT so that filtering
// by extension in Go still has a reasonable chance of returning a full
// page of results.
func multiLangOverfetchFactor(extensionCount int) int {
	factor := 4
	if extensionCount == 1 {
		factor = 8
	}
	return factor
}

// Count returns the total number of chunks in the store.
func (s *ChunkStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	if err != nil {
		return 0, codiierrors.IOError("counting chunks", err)
	}
	return n, nil
}

// SumTokens returns the sum of every stored chunk's TokenCount estimate,
// surfaced as total_tokens in status/stats output (SPEC_FULL.md §4.3).
func (s *ChunkStore) SumTokens(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(token_count), 0) FROM chunks`).Scan(&n)
	if err != nil {
		return 0, codiierrors.IOError("summing chunk tokens", err)
	}
	return n, nil
}
