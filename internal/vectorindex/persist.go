package vectorindex

import (
	"bufio"
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/coder/hnsw"

	codiierrors "github.com/oOSomnus/codii/internal/errors"
)

// metadata is the gob-encoded sidecar recording the index's configuration,
// soft-deleted ids, and live vectors, per spec.md §4.6's "sibling metadata
// file recording d, max_elements, current size, soft-deleted ids". Vectors
// are carried here rather than re-derived from the imported graph, since
// coder/hnsw's Graph does not expose an iterator over its stored nodes.
type metadata struct {
	Config  Config
	Deleted []int64
	Vectors map[int64][]float32
}

// Save persists the graph to path and its metadata to path+".meta", using
// a temp-file-then-rename so a crash mid-write never leaves a corrupt
// index in place.
func (idx *Index) Save(path string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.closed {
		return codiierrors.InternalError("vector index is closed", nil)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return codiierrors.IOError("creating vector index directory", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return codiierrors.IOError("creating vector index file", err)
	}
	if err := idx.graph.Export(f); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return codiierrors.IOError("exporting vector index graph", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return codiierrors.IOError("closing vector index file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return codiierrors.IOError("renaming vector index file", err)
	}

	return idx.saveMetadata(path + ".meta")
}

func (idx *Index) saveMetadata(path string) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return codiierrors.IOError("creating vector index metadata file", err)
	}

	deleted := make([]int64, 0, len(idx.deleted))
	for id := range idx.deleted {
		deleted = append(deleted, id)
	}
	meta := metadata{Config: idx.cfg, Deleted: deleted, Vectors: idx.vectors}

	if err := gob.NewEncoder(f).Encode(meta); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return codiierrors.IOError("encoding vector index metadata", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return codiierrors.IOError("closing vector index metadata file", err)
	}
	return os.Rename(tmpPath, path)
}

// Load replaces idx's contents with the graph and metadata persisted at
// path.
func (idx *Index) Load(path string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.closed {
		return codiierrors.InternalError("vector index is closed", nil)
	}

	meta, err := loadMetadata(path + ".meta")
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return codiierrors.IOError("opening vector index file", err)
	}
	defer f.Close()

	graph := hnsw.NewGraph[int64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = meta.Config.M
	graph.EfSearch = meta.Config.EfSearch

	if err := graph.Import(bufio.NewReader(f)); err != nil {
		return codiierrors.IOError("importing vector index graph", err)
	}

	deleted := make(map[int64]struct{}, len(meta.Deleted))
	for _, id := range meta.Deleted {
		deleted[id] = struct{}{}
	}

	idx.graph = graph
	idx.cfg = meta.Config
	idx.deleted = deleted
	idx.vectors = meta.Vectors
	return nil
}

func loadMetadata(path string) (metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return metadata{}, codiierrors.IOError("opening vector index metadata file", err)
	}
	defer f.Close()

	var meta metadata
	if err := gob.NewDecoder(f).Decode(&meta); err != nil {
		return metadata{}, codiierrors.IOError("decoding vector index metadata", err)
	}
	return meta, nil
}
