package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	gosdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oOSomnus/codii/internal/embed"
	codiierrors "github.com/oOSomnus/codii/internal/errors"
	"github.com/oOSomnus/codii/internal/orchestrator"
	"github.com/oOSomnus/codii/internal/paths"
	"github.com/oOSomnus/codii/internal/search"
	"github.com/oOSomnus/codii/internal/snapshot"
	"github.com/oOSomnus/codii/internal/store"
	"github.com/oOSomnus/codii/internal/vectorindex"
)

// serverVersion is reported in the MCP implementation handshake.
const serverVersion = "0.1.0"

// Server bridges an AI client's tool calls into codii's orchestrator
// and searcher, reusing exactly the pipeline the CLI drives.
type Server struct {
	sdk      *gosdk.Server
	baseDir  string
	orch     *orchestrator.Orchestrator
	snap     *snapshot.Store
	embedder embed.Embedder
	logger   *slog.Logger

	mu        sync.Mutex
	searchers map[string]*repoSearcher
}

// repoSearcher holds one repository's open chunk store, vector index,
// and the Searcher built over them.
type repoSearcher struct {
	chunks   *store.ChunkStore
	vectors  *vectorindex.Index
	searcher *search.Searcher
}

// NewServer builds the MCP server. baseDir is codii's storage root
// (internal/paths.BaseDir); orch and snap are the same orchestrator
// and status registry instances the CLI uses, so index_codebase calls
// through MCP are indistinguishable from CLI-driven ones.
func NewServer(baseDir string, orch *orchestrator.Orchestrator, snap *snapshot.Store, embedder embed.Embedder) *Server {
	s := &Server{
		baseDir:   baseDir,
		orch:      orch,
		snap:      snap,
		embedder:  embedder,
		logger:    slog.Default(),
		searchers: make(map[string]*repoSearcher),
	}

	s.sdk = gosdk.NewServer(&gosdk.Implementation{
		Name:    "codii",
		Version: serverVersion,
	}, nil)

	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	gosdk.AddTool(s.sdk, &gosdk.Tool{
		Name:        "index_codebase",
		Description: "Index or incrementally reindex a repository for hybrid lexical+vector code search. Safe to call repeatedly; only changed files are reprocessed unless force is set.",
	}, s.handleIndexCodebase)

	gosdk.AddTool(s.sdk, &gosdk.Tool{
		Name:        "search_code",
		Description: "Search an indexed repository using combined BM25 and vector similarity ranking. Call index_codebase first if the repository has never been indexed.",
	}, s.handleSearchCode)

	gosdk.AddTool(s.sdk, &gosdk.Tool{
		Name:        "get_indexing_status",
		Description: "Check a repository's indexing status and progress, or list every repository codii knows about.",
	}, s.handleGetIndexingStatus)

	gosdk.AddTool(s.sdk, &gosdk.Tool{
		Name:        "clear_index",
		Description: "Delete a repository's index and status entry, forcing a full reindex on the next index_codebase call.",
	}, s.handleClearIndex)
}

// Serve runs the server over stdio until ctx is cancelled or the
// client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	return s.sdk.Run(ctx, &gosdk.StdioTransport{})
}

// SDKServer exposes the underlying go-sdk server, e.g. for tests that
// drive it through an in-memory transport.
func (s *Server) SDKServer() *gosdk.Server {
	return s.sdk
}

// getSearcher returns the cached repoSearcher for absRepoPath,
// opening its chunk store and loading its vector index on first use.
func (s *Server) getSearcher(absRepoPath string) (*repoSearcher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rs, ok := s.searchers[absRepoPath]; ok {
		return rs, nil
	}

	layout := paths.ForRepo(s.baseDir, absRepoPath)
	if _, err := os.Stat(layout.ChunksDBPath); err != nil {
		return nil, codiierrors.NotIndexedError(absRepoPath)
	}

	chunks, err := store.Open(layout.ChunksDBPath)
	if err != nil {
		return nil, codiierrors.IOError(fmt.Sprintf("opening chunk store for %q", absRepoPath), err)
	}

	vectors := vectorindex.New(vectorindex.DefaultConfig(s.embedder.Dimensions()))
	if err := vectors.Load(layout.VectorPath); err != nil {
		chunks.Close()
		return nil, codiierrors.IOError(fmt.Sprintf("loading vector index for %q", absRepoPath), err)
	}

	rs := &repoSearcher{
		chunks:   chunks,
		vectors:  vectors,
		searcher: search.New(chunks, vectors, s.embedder, nil),
	}
	s.searchers[absRepoPath] = rs
	return rs, nil
}

// evictSearcher closes and forgets any cached handle for absRepoPath,
// so a subsequent getSearcher call reopens fresh files (used by
// clear_index and after a reindex changes the on-disk files under it).
func (s *Server) evictSearcher(absRepoPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rs, ok := s.searchers[absRepoPath]; ok {
		rs.chunks.Close()
		delete(s.searchers, absRepoPath)
	}
}
