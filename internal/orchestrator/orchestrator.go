package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/oOSomnus/codii/internal/chunk"
	"github.com/oOSomnus/codii/internal/config"
	codiierrors "github.com/oOSomnus/codii/internal/errors"
	"github.com/oOSomnus/codii/internal/merkle"
	"github.com/oOSomnus/codii/internal/paths"
	"github.com/oOSomnus/codii/internal/scanner"
	"github.com/oOSomnus/codii/internal/snapshot"
	"github.com/oOSomnus/codii/internal/store"
	"github.com/oOSomnus/codii/internal/vectorindex"
)

// progressMinInterval and progressMinDelta gate status writes, per
// spec.md §4.9: "every ≥500ms or ≥5% delta".
const (
	progressMinInterval = 500 * time.Millisecond
	progressMinDelta    = 5
)

// Index runs spec.md §4.9's 9-step pipeline for repoPath. It returns
// immediately with Accepted (a background worker has been started and
// is returned as *Run for optional awaiting) or NoChanges (nothing to
// do; the returned *Run is already complete).
func (o *Orchestrator) Index(ctx context.Context, repoPath string, opts Options) (Result, *Run, error) {
	runID := uuid.NewString()

	absRoot, err := filepath.Abs(repoPath)
	if err != nil {
		return "", nil, codiierrors.ValidationError("resolving repo path", err)
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		return "", nil, codiierrors.ValidationError(fmt.Sprintf("repo path %q is not a readable directory", absRoot), err)
	}

	cfg, err := config.Load(absRoot)
	if err != nil {
		return "", nil, err
	}

	layout := paths.ForRepo(o.baseDir, absRoot)
	if err := layout.EnsureDirs(); err != nil {
		return "", nil, codiierrors.IOError("preparing index directories", err)
	}

	slog.Info("index run starting", "run_id", runID, "repo", absRoot)

	if err := o.snap.Upsert(snapshot.CodebaseStatus{
		Path:         absRoot,
		Status:       snapshot.StatusIndexing,
		CurrentStage: snapshot.StagePreparing,
		Progress:     0,
	}); err != nil {
		return "", nil, err
	}

	extensions := append(append([]string{}, cfg.Extensions...), opts.CustomExtensions...)
	ignorePatterns := append(append([]string{}, cfg.IgnorePatterns...), opts.IgnorePatterns...)

	sc, err := scanner.New()
	if err != nil {
		return "", nil, err
	}
	files, err := sc.Scan(scanner.Options{Root: absRoot, Extensions: extensions, IgnorePatterns: ignorePatterns, Submodules: opts.Submodules})
	if err != nil {
		return "", nil, o.fail(absRoot, err)
	}

	if opts.Force {
		for _, p := range []string{layout.ChunksDBPath, layout.VectorPath, layout.VectorPath + ".meta", layout.MerklePath} {
			_ = os.Remove(p)
		}
	}

	newTree := merkle.New()
	for _, f := range files {
		content, err := os.ReadFile(f.AbsPath)
		if err != nil {
			return "", nil, o.fail(absRoot, err)
		}
		newTree.Files[f.Path] = merkle.HashContent(content)
	}

	oldTree, err := merkle.Load(layout.MerklePath)
	if err != nil {
		return "", nil, o.fail(absRoot, err)
	}

	added, modified, removed := merkle.Diff(oldTree, newTree)
	if len(added) == 0 && len(modified) == 0 && len(removed) == 0 && !opts.Force {
		if err := o.snap.Upsert(snapshot.CodebaseStatus{
			Path:         absRoot,
			Status:       snapshot.StatusIndexed,
			CurrentStage: snapshot.StageComplete,
			Progress:     100,
			MerkleRoot:   newTree.Root(),
		}); err != nil {
			return "", nil, err
		}
		o.metrics.IndexRunsTotal.WithLabelValues(string(NoChanges)).Inc()
		run := newRun()
		run.finish(nil)
		return NoChanges, run, nil
	}

	run := newRun()
	go o.runWorker(ctx, runID, absRoot, layout, cfg, opts, files, newTree, added, modified, removed, run)

	o.metrics.IndexRunsTotal.WithLabelValues(string(Accepted)).Inc()
	return Accepted, run, nil
}

// fail records a failed status and returns the error unchanged, for
// use at steps before the background worker is started.
func (o *Orchestrator) fail(repoPath string, cause error) error {
	_ = o.snap.Upsert(snapshot.CodebaseStatus{
		Path:         repoPath,
		Status:       snapshot.StatusFailed,
		ErrorMessage: cause.Error(),
	})
	o.metrics.IndexRunsTotal.WithLabelValues("failed").Inc()
	return cause
}

// progressWriter batches status writes per spec.md §4.9's ≥500ms/≥5%
// gate, so a tight per-file loop doesn't flock-lock the snapshot file
// on every iteration.
type progressWriter struct {
	snap     *snapshot.Store
	status   snapshot.CodebaseStatus
	lastTime time.Time
	lastPct  int
}

func (w *progressWriter) update(stage snapshot.Stage, progress int) {
	w.status.CurrentStage = stage
	w.status.Progress = progress
	now := time.Now()
	delta := progress - w.lastPct
	if delta < 0 {
		delta = -delta
	}
	if w.lastTime.IsZero() || now.Sub(w.lastTime) >= progressMinInterval || delta >= progressMinDelta {
		_ = w.snap.Upsert(w.status)
		w.lastTime = now
		w.lastPct = progress
	}
}

// runWorker executes stage 8 of spec.md §4.9's pipeline. It is
// cooperatively cancellable between files and between stages; on
// success it persists the vector index and merkle cache and marks the
// run indexed. On any error (including cancellation) it records
// status=failed and leaves partial state for the next run's diff to
// reconcile, never partially writing the merkle cache.
func (o *Orchestrator) runWorker(
	ctx context.Context,
	runID string,
	repoPath string,
	layout paths.Layout,
	cfg config.Config,
	opts Options,
	files []scanner.File,
	newTree *merkle.Tree,
	added, modified, removed []string,
	run *Run,
) {
	defer func() {
		if err := recoverWorkerPanic(runID, repoPath); err != nil {
			o.metrics.IndexRunsTotal.WithLabelValues("failed").Inc()
			_ = o.snap.Upsert(snapshot.CodebaseStatus{Path: repoPath, Status: snapshot.StatusFailed, ErrorMessage: err.Error()})
			run.finish(err)
		}
	}()

	pw := &progressWriter{snap: o.snap, status: snapshot.CodebaseStatus{Path: repoPath, Status: snapshot.StatusIndexing}}

	chunkStore, err := store.Open(layout.ChunksDBPath)
	if err != nil {
		o.finishFailed(run, runID, repoPath, err)
		return
	}
	defer chunkStore.Close()

	vecIndex := vectorindex.New(vectorindex.Config{
		Dimensions:      o.embedder.Dimensions(),
		M:               cfg.HNSWM,
		EfConstruction:  cfg.HNSWEfConstruction,
		EfSearch:        cfg.HNSWEfSearch,
		InitialCapacity: initialCapacity(len(files)),
	})
	if _, err := os.Stat(layout.VectorPath); err == nil {
		if err := vecIndex.Load(layout.VectorPath); err != nil {
			o.finishFailed(run, runID, repoPath, err)
			return
		}
	}

	// Stage deleting (progress 10%).
	pw.update(snapshot.StageDeleting, 10)
	for _, p := range uniqueStrings(modified, removed) {
		if err := checkCancel(ctx); err != nil {
			o.finishFailed(run, runID, repoPath, err)
			return
		}
		ids, err := chunkStore.DeleteChunksByPath(ctx, p)
		if err != nil {
			o.finishFailed(run, runID, repoPath, err)
			return
		}
		for _, id := range ids {
			if err := vecIndex.MarkDeleted(ctx, id); err != nil {
				o.finishFailed(run, runID, repoPath, err)
				return
			}
		}
	}

	// Stage chunking (10% -> 40%).
	filesByPath := make(map[string]scanner.File, len(files))
	for _, f := range files {
		filesByPath[f.Path] = f
	}
	toChunk := uniqueStrings(added, modified)
	astChunker := chunk.NewASTChunker(chunk.Options{
		MinChunkSize: cfg.MinChunkSize,
		MaxChunkSize: cfg.MaxChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	})
	defer astChunker.Close()

	var allChunks []chunk.Chunk
	for i, p := range toChunk {
		if err := checkCancel(ctx); err != nil {
			o.finishFailed(run, runID, repoPath, err)
			return
		}
		f, ok := filesByPath[p]
		if !ok {
			continue
		}
		source, err := os.ReadFile(f.AbsPath)
		if err != nil {
			o.finishFailed(run, runID, repoPath, err)
			return
		}
		language := chunk.DetectLanguage(p)
		if opts.Splitter == "text" {
			language = ""
		}
		cs, err := astChunker.Chunk(ctx, p, source, language)
		if err != nil {
			o.finishFailed(run, runID, repoPath, err)
			return
		}
		allChunks = append(allChunks, cs...)
		pw.update(snapshot.StageChunking, stageProgress(10, 40, i+1, len(toChunk)))
	}

	// Stage embedding (40% -> 80%).
	batchSize := cfg.EmbeddingBatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	vectors := make([][]float32, len(allChunks))
	for start := 0; start < len(allChunks); start += batchSize {
		if err := checkCancel(ctx); err != nil {
			o.finishFailed(run, runID, repoPath, err)
			return
		}
		end := start + batchSize
		if end > len(allChunks) {
			end = len(allChunks)
		}
		texts := make([]string, end-start)
		for i, c := range allChunks[start:end] {
			texts[i] = c.Content
		}
		batchVecs, err := o.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			o.finishFailed(run, runID, repoPath, err)
			return
		}
		copy(vectors[start:end], batchVecs)
		pw.update(snapshot.StageEmbedding, stageProgress(40, 80, end, max(len(allChunks), 1)))
	}

	// Stage indexing (80% -> 99%).
	for start := 0; start < len(allChunks); start += batchSize {
		if err := checkCancel(ctx); err != nil {
			o.finishFailed(run, runID, repoPath, err)
			return
		}
		end := start + batchSize
		if end > len(allChunks) {
			end = len(allChunks)
		}
		ids, err := chunkStore.InsertChunks(ctx, allChunks[start:end])
		if err != nil {
			o.finishFailed(run, runID, repoPath, err)
			return
		}
		if err := vecIndex.AddBatch(ctx, ids, vectors[start:end]); err != nil {
			o.finishFailed(run, runID, repoPath, err)
			return
		}
		pw.update(snapshot.StageIndexing, stageProgress(80, 99, end, max(len(allChunks), 1)))
		o.metrics.ChunksIndexedTotal.Add(float64(end - start))
	}

	// Persist and mark complete.
	if err := vecIndex.Save(layout.VectorPath); err != nil {
		o.finishFailed(run, runID, repoPath, err)
		return
	}
	if err := newTree.Save(layout.MerklePath); err != nil {
		o.finishFailed(run, runID, repoPath, err)
		return
	}
	totalChunks, err := chunkStore.Count(ctx)
	if err != nil {
		o.finishFailed(run, runID, repoPath, err)
		return
	}
	totalTokens, err := chunkStore.SumTokens(ctx)
	if err != nil {
		o.finishFailed(run, runID, repoPath, err)
		return
	}
	if err := o.snap.Upsert(snapshot.CodebaseStatus{
		Path:         repoPath,
		Status:       snapshot.StatusIndexed,
		CurrentStage: snapshot.StageComplete,
		Progress:     100,
		MerkleRoot:   newTree.Root(),
		IndexedFiles: len(newTree.Files),
		TotalChunks:  totalChunks,
		TotalTokens:  totalTokens,
	}); err != nil {
		o.finishFailed(run, runID, repoPath, err)
		return
	}

	slog.Info("index run complete", "run_id", runID, "repo", repoPath, "chunks", totalChunks)
	run.finish(nil)
}

func (o *Orchestrator) finishFailed(run *Run, runID, repoPath string, cause error) {
	message := cause.Error()
	if cause == context.Canceled {
		message = "cancelled"
	}
	_ = o.snap.Upsert(snapshot.CodebaseStatus{
		Path:         repoPath,
		Status:       snapshot.StatusFailed,
		ErrorMessage: message,
	})
	o.metrics.IndexRunsTotal.WithLabelValues("failed").Inc()
	reportFatal(runID, repoPath, cause)
	run.finish(cause)
}

func checkCancel(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// stageProgress maps "i of n" items within [lo, hi] percent.
func stageProgress(lo, hi, i, n int) int {
	if n <= 0 {
		return hi
	}
	p := lo + (hi-lo)*i/n
	if p > hi {
		p = hi
	}
	return p
}

// initialCapacity matches spec.md §4.6: max(initial_file_chunks*2, 1024).
func initialCapacity(fileCount int) int {
	capacity := fileCount * 2
	if capacity < 1024 {
		capacity = 1024
	}
	return capacity
}

func uniqueStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string{}, a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
