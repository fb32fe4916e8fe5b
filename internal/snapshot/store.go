package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"

	codiierrors "github.com/oOSomnus/codii/internal/errors"
)

// registry is the on-disk shape of snapshot.json: a map keyed by
// repository path. encoding/json sorts map keys on Marshal, which is
// what gives the file its required deterministic key order.
type registry map[string]CodebaseStatus

// Store is the cross-repository status registry of spec.md §4.8. A
// single snapshot.json file under the shared data directory is mutated
// under an exclusive advisory lock on a sibling .lock file, read
// fresh on every operation (no caching) so concurrent CLI invocations
// observe each other's writes.
type Store struct {
	path     string
	lockPath string
}

// Open returns a Store backed by the JSON file at path. The file and its
// parent directory are created lazily on first write; a missing file
// reads as an empty registry, per spec.md §4.8.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, codiierrors.IOError("creating snapshot directory", err)
	}
	return &Store{path: path, lockPath: path + ".lock"}, nil
}

// Get returns the status recorded for path, and false if no entry exists.
func (s *Store) Get(path string) (CodebaseStatus, bool, error) {
	lock := flock.New(s.lockPath)
	if err := lock.Lock(); err != nil {
		return CodebaseStatus{}, false, codiierrors.IOError("locking snapshot registry", err)
	}
	defer lock.Unlock()

	reg, err := s.read()
	if err != nil {
		return CodebaseStatus{}, false, err
	}
	status, ok := reg[path]
	return status, ok, nil
}

// List returns every recorded status, sorted by path for determinism.
func (s *Store) List() ([]CodebaseStatus, error) {
	lock := flock.New(s.lockPath)
	if err := lock.Lock(); err != nil {
		return nil, codiierrors.IOError("locking snapshot registry", err)
	}
	defer lock.Unlock()

	reg, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]CodebaseStatus, 0, len(reg))
	for _, status := range reg {
		out = append(out, status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Upsert writes status into the registry under status.Path, stamping
// LastUpdated with the current time, and persists the result atomically.
func (s *Store) Upsert(status CodebaseStatus) error {
	lock := flock.New(s.lockPath)
	if err := lock.Lock(); err != nil {
		return codiierrors.IOError("locking snapshot registry", err)
	}
	defer lock.Unlock()

	reg, err := s.read()
	if err != nil {
		return err
	}
	status.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	reg[status.Path] = status
	return s.write(reg)
}

// Remove deletes the entry for path, if any, and persists the result.
func (s *Store) Remove(path string) error {
	lock := flock.New(s.lockPath)
	if err := lock.Lock(); err != nil {
		return codiierrors.IOError("locking snapshot registry", err)
	}
	defer lock.Unlock()

	reg, err := s.read()
	if err != nil {
		return err
	}
	delete(reg, path)
	return s.write(reg)
}

// read loads the registry from disk under the caller's held lock. A
// missing file is treated as an empty registry.
func (s *Store) read() (registry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return registry{}, nil
	}
	if err != nil {
		return nil, codiierrors.IOError("reading snapshot registry", err)
	}
	if len(data) == 0 {
		return registry{}, nil
	}
	var reg registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, codiierrors.ParseError("parsing snapshot registry", err)
	}
	if reg == nil {
		reg = registry{}
	}
	return reg, nil
}

// write persists reg to a sibling temp file and renames it over the
// target path, the same atomic-write pattern used by
// internal/vectorindex's Save.
func (s *Store) write(reg registry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return codiierrors.InternalError("encoding snapshot registry", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return codiierrors.IOError("writing snapshot registry", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return codiierrors.IOError("renaming snapshot registry into place", err)
	}
	return nil
}
