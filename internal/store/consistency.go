package store

import (
	"context"
	"fmt"

	codiierrors "github.com/oOSomnus/codii/internal/errors"
)

// CheckIntegrity runs sqlite's own integrity check and verifies the
// chunks/chunks_fts row counts agree, surfacing an IndexIntegrity error
// (spec.md §7) rather than letting a corrupted FTS shadow silently
// return wrong search results.
func (s *ChunkStore) CheckIntegrity(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result string
	if err := s.db.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&result); err != nil {
		return codiierrors.IntegrityError("running integrity check", err)
	}
	if result != "ok" {
		return codiierrors.IntegrityError(fmt.Sprintf("chunk store integrity check failed: %s", result), nil)
	}

	var chunksCount, ftsCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&chunksCount); err != nil {
		return codiierrors.IntegrityError("counting chunks", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks_fts`).Scan(&ftsCount); err != nil {
		return codiierrors.IntegrityError("counting fts rows", err)
	}
	if chunksCount != ftsCount {
		return codiierrors.IntegrityError(
			fmt.Sprintf("chunk store and fts index disagree: %d chunks, %d fts rows", chunksCount, ftsCount), nil)
	}
	return nil
}

// Rebuild repopulates the FTS shadow table from the chunks table,
// recovering from a detected drift without requiring a full reindex.
func (s *ChunkStore) Rebuild(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `INSERT INTO chunks_fts(chunks_fts) VALUES ('rebuild')`); err != nil {
		return codiierrors.IntegrityError("rebuilding fts index", err)
	}
	return nil
}
