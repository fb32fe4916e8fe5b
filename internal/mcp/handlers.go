package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	gosdk "github.com/modelcontextprotocol/go-sdk/mcp"

	codiierrors "github.com/oOSomnus/codii/internal/errors"
	"github.com/oOSomnus/codii/internal/orchestrator"
	"github.com/oOSomnus/codii/internal/paths"
	"github.com/oOSomnus/codii/internal/search"
	"github.com/oOSomnus/codii/internal/snapshot"
)

func (s *Server) handleIndexCodebase(ctx context.Context, _ *gosdk.CallToolRequest, in IndexCodebaseInput) (*gosdk.CallToolResult, IndexCodebaseOutput, error) {
	if in.RepoPath == "" {
		return nil, IndexCodebaseOutput{}, NewInvalidParamsError("repo_path is required")
	}
	absPath, err := filepath.Abs(in.RepoPath)
	if err != nil {
		return nil, IndexCodebaseOutput{}, NewInvalidParamsError(fmt.Sprintf("repo_path %q is not a valid path", in.RepoPath))
	}

	result, run, err := s.orch.Index(ctx, absPath, orchestrator.Options{
		Force:            in.Force,
		Splitter:         in.Splitter,
		CustomExtensions: in.CustomExtensions,
	})
	if err != nil {
		return nil, IndexCodebaseOutput{}, MapError(err)
	}

	if result == orchestrator.Accepted {
		go func() {
			_ = run.Wait()
			s.evictSearcher(absPath)
		}()
	}

	return nil, IndexCodebaseOutput{Result: string(result)}, nil
}

func (s *Server) handleSearchCode(ctx context.Context, _ *gosdk.CallToolRequest, in SearchCodeInput) (*gosdk.CallToolResult, SearchCodeOutput, error) {
	if in.RepoPath == "" {
		return nil, SearchCodeOutput{}, NewInvalidParamsError("repo_path is required")
	}
	if in.Query == "" {
		return nil, SearchCodeOutput{}, &Error{Code: ErrCodeInvalidQuery, Message: "query must not be empty"}
	}
	absPath, err := filepath.Abs(in.RepoPath)
	if err != nil {
		return nil, SearchCodeOutput{}, NewInvalidParamsError(fmt.Sprintf("repo_path %q is not a valid path", in.RepoPath))
	}

	rs, err := s.getSearcher(absPath)
	if err != nil {
		return nil, SearchCodeOutput{}, MapError(err)
	}

	results, err := rs.searcher.Search(ctx, in.Query, search.Options{
		Limit:           in.Limit,
		ExtensionFilter: in.ExtensionFilter,
		Rerank:          in.Rerank,
	})
	if err != nil {
		return nil, SearchCodeOutput{}, MapError(err)
	}

	out := SearchCodeOutput{Results: make([]SearchResultOutput, 0, len(results))}
	for _, r := range results {
		out.Results = append(out.Results, SearchResultOutput{
			Path:          r.Path,
			Content:       r.Content,
			Language:      r.Language,
			StartLine:     r.StartLine,
			EndLine:       r.EndLine,
			BM25Score:     r.BM25Score,
			VectorScore:   r.VectorScore,
			CombinedScore: r.CombinedScore,
		})
	}
	return nil, out, nil
}

func (s *Server) handleGetIndexingStatus(_ context.Context, _ *gosdk.CallToolRequest, in GetIndexingStatusInput) (*gosdk.CallToolResult, GetIndexingStatusOutput, error) {
	if in.RepoPath != "" {
		absPath, err := filepath.Abs(in.RepoPath)
		if err != nil {
			return nil, GetIndexingStatusOutput{}, NewInvalidParamsError(fmt.Sprintf("repo_path %q is not a valid path", in.RepoPath))
		}
		status, found, err := s.snap.Get(absPath)
		if err != nil {
			return nil, GetIndexingStatusOutput{}, MapError(err)
		}
		if !found {
			status = snapshot.NotFound(absPath)
		}
		return nil, GetIndexingStatusOutput{Repositories: []CodebaseStatusOutput{toStatusOutput(status)}}, nil
	}

	all, err := s.snap.List()
	if err != nil {
		return nil, GetIndexingStatusOutput{}, MapError(err)
	}
	out := GetIndexingStatusOutput{Repositories: make([]CodebaseStatusOutput, 0, len(all))}
	for _, status := range all {
		out.Repositories = append(out.Repositories, toStatusOutput(status))
	}
	return nil, out, nil
}

func (s *Server) handleClearIndex(_ context.Context, _ *gosdk.CallToolRequest, in ClearIndexInput) (*gosdk.CallToolResult, ClearIndexOutput, error) {
	if in.RepoPath == "" {
		return nil, ClearIndexOutput{}, NewInvalidParamsError("repo_path is required")
	}
	absPath, err := filepath.Abs(in.RepoPath)
	if err != nil {
		return nil, ClearIndexOutput{}, NewInvalidParamsError(fmt.Sprintf("repo_path %q is not a valid path", in.RepoPath))
	}

	s.evictSearcher(absPath)

	layout := paths.ForRepo(s.baseDir, absPath)
	clearedIndex, err := removeIndexDir(layout.IndexDir)
	if err != nil {
		return nil, ClearIndexOutput{}, MapError(codiierrors.IOError(fmt.Sprintf("clearing index for %q", absPath), err))
	}
	clearedMerkle, err := removeIndexDir(layout.MerklePath)
	if err != nil {
		return nil, ClearIndexOutput{}, MapError(codiierrors.IOError(fmt.Sprintf("clearing merkle cache for %q", absPath), err))
	}
	cleared := clearedIndex || clearedMerkle

	if err := s.snap.Remove(absPath); err != nil {
		return nil, ClearIndexOutput{}, MapError(err)
	}

	return nil, ClearIndexOutput{Cleared: cleared}, nil
}

func toStatusOutput(status snapshot.CodebaseStatus) CodebaseStatusOutput {
	return CodebaseStatusOutput{
		Path:         status.Path,
		Status:       string(status.Status),
		Progress:     status.Progress,
		CurrentStage: string(status.CurrentStage),
		MerkleRoot:   status.MerkleRoot,
		IndexedFiles: status.IndexedFiles,
		TotalChunks:  status.TotalChunks,
		TotalTokens:  status.TotalTokens,
		LastUpdated:  status.LastUpdated,
		ErrorMessage: status.ErrorMessage,
	}
}

// removeIndexDir deletes the file or directory at path, reporting
// whether anything was actually there to remove.
func removeIndexDir(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := os.RemoveAll(path); err != nil {
		return false, err
	}
	return true, nil
}
