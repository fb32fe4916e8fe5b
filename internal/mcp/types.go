// Package mcp implements codii's Model Context Protocol server: the
// index_codebase, search_code, get_indexing_status, and clear_index
// tools an AI coding assistant calls directly instead of shelling out
// to the CLI (spec.md §6, SPEC_FULL.md's MCP section).
package mcp

// IndexCodebaseInput is index_codebase's argument schema.
type IndexCodebaseInput struct {
	RepoPath         string   `json:"repo_path" jsonschema:"absolute path to the repository to index"`
	Force            bool     `json:"force,omitempty" jsonschema:"reindex every file, ignoring the merkle cache"`
	Splitter         string   `json:"splitter,omitempty" jsonschema:"chunker to use: ast (default) or text"`
	CustomExtensions []string `json:"extensions,omitempty" jsonschema:"additional file extensions to index, beyond the configured set"`
}

// IndexCodebaseOutput is index_codebase's result schema.
type IndexCodebaseOutput struct {
	Result string `json:"result" jsonschema:"accepted if a background run was started, no_changes if the repo was already current"`
}

// SearchCodeInput is search_code's argument schema.
type SearchCodeInput struct {
	RepoPath        string   `json:"repo_path" jsonschema:"absolute path to the indexed repository to search"`
	Query           string   `json:"query" jsonschema:"the natural-language or code search query"`
	Limit           int      `json:"limit,omitempty" jsonschema:"maximum number of results, default from config"`
	ExtensionFilter []string `json:"extension_filter,omitempty" jsonschema:"restrict results to these file extensions, e.g. ['.go']"`
	Rerank          bool     `json:"rerank,omitempty" jsonschema:"enable the cross-encoder reranking pass"`
}

// SearchResultOutput is one ranked hybrid search hit.
type SearchResultOutput struct {
	Path          string  `json:"path" jsonschema:"file path relative to the repository root"`
	Content       string  `json:"content" jsonschema:"matched chunk content"`
	Language      string  `json:"language,omitempty" jsonschema:"detected programming language"`
	StartLine     int     `json:"start_line" jsonschema:"1-based start line of the chunk"`
	EndLine       int     `json:"end_line" jsonschema:"1-based end line of the chunk"`
	BM25Score     float64 `json:"bm25_score" jsonschema:"lexical subsearch contribution"`
	VectorScore   float64 `json:"vector_score" jsonschema:"vector subsearch contribution"`
	CombinedScore float64 `json:"combined_score" jsonschema:"fused RRF score used for ranking"`
}

// SearchCodeOutput is search_code's result schema.
type SearchCodeOutput struct {
	Results []SearchResultOutput `json:"results" jsonschema:"ranked search results"`
}

// GetIndexingStatusInput is get_indexing_status's argument schema.
// An empty RepoPath lists every known repository's status.
type GetIndexingStatusInput struct {
	RepoPath string `json:"repo_path,omitempty" jsonschema:"absolute repository path; omit to list all known repositories"`
}

// CodebaseStatusOutput mirrors internal/snapshot.CodebaseStatus for the
// wire, so the MCP schema doesn't leak that package's JSON tags
// directly.
type CodebaseStatusOutput struct {
	Path         string `json:"path"`
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
	CurrentStage string `json:"current_stage,omitempty"`
	MerkleRoot   string `json:"merkle_root,omitempty"`
	IndexedFiles int    `json:"indexed_files"`
	TotalChunks  int    `json:"total_chunks"`
	TotalTokens  int    `json:"total_tokens"`
	LastUpdated  string `json:"last_updated,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// GetIndexingStatusOutput is get_indexing_status's result schema.
type GetIndexingStatusOutput struct {
	Repositories []CodebaseStatusOutput `json:"repositories" jsonschema:"status of the requested repository, or all known repositories"`
}

// ClearIndexInput is clear_index's argument schema.
type ClearIndexInput struct {
	RepoPath string `json:"repo_path" jsonschema:"absolute path to the repository whose index should be deleted"`
}

// ClearIndexOutput is clear_index's result schema.
type ClearIndexOutput struct {
	Cleared bool `json:"cleared" jsonschema:"true if an index existed and was removed"`
}
