// Package snapshot implements the cross-repository status registry of
// spec.md §4.8: a single JSON file mapping each indexed repository path to
// its CodebaseStatus, mutated under an advisory file lock with
// atomic temp-file-then-rename writes.
package snapshot

// Status is one of CodebaseStatus's allowed top-level states (spec.md §3).
type Status string

const (
	StatusNotFound Status = "not_found"
	StatusIndexing Status = "indexing"
	StatusIndexed  Status = "indexed"
	StatusFailed   Status = "failed"
)

// Stage is CodebaseStatus's current_stage field (spec.md §3).
type Stage string

const (
	StagePreparing Stage = "preparing"
	StageDeleting  Stage = "deleting"
	StageChunking  Stage = "chunking"
	StageEmbedding Stage = "embedding"
	StageIndexing  Stage = "indexing"
	StageComplete  Stage = "complete"
)

// CodebaseStatus is the per-repository record spec.md §3 defines
// verbatim. Field order is fixed by declaration so json.Marshal's output
// is deterministic (Go already sorts map keys; this fixes struct key
// order too, satisfying spec.md §4.8's "sorted keys" requirement for the
// file as a whole).
type CodebaseStatus struct {
	Path         string `json:"path"`
	Status       Status `json:"status"`
	Progress     int    `json:"progress"`
	CurrentStage Stage  `json:"current_stage"`
	MerkleRoot   string `json:"merkle_root"`
	IndexedFiles int    `json:"indexed_files"`
	TotalChunks  int    `json:"total_chunks"`
	TotalTokens  int    `json:"total_tokens"`
	LastUpdated  string `json:"last_updated"` // RFC3339
	ErrorMessage string `json:"error_message,omitempty"`
}

// NotFound returns the sentinel status returned by get_indexing_status
// for a path with no registry entry (spec.md §4.9's operations table).
func NotFound(path string) CodebaseStatus {
	return CodebaseStatus{Path: path, Status: StatusNotFound}
}
