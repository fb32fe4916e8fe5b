// Package scanner walks a repository tree and yields candidate files
// for indexing, applying the ignore set and extension allow-list. See
// spec.md §4.1.
package scanner

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/oOSomnus/codii/internal/gitignore"
)

// binarySniffBytes is how many leading bytes are inspected for a NUL
// byte when deciding whether a file is binary.
const binarySniffBytes = 8 * 1024

// matcherCacheSize is the capacity of the Scanner's matcher cache. Scan
// builds a single root matcher and does not read or write the cache.
const matcherCacheSize = 1024

// DefaultIgnorePatterns are always applied, in addition to any
// user-supplied patterns and the repo-root .gitignore.
var DefaultIgnorePatterns = []string{
	".git/",
	"node_modules/",
	"vendor/",
	".codii/",
	"dist/",
	"build/",
	"*.min.js",
	"*.lock",
}

// Options configures one scan.
type Options struct {
	// Root is the absolute repository root.
	Root string
	// Extensions is the allow-list (e.g. ".go", ".py"). Empty means
	// "all non-binary text files".
	Extensions []string
	// IgnorePatterns are caller-supplied gitignore-syntax patterns,
	// applied last (highest precedence) over defaults and .gitignore.
	IgnorePatterns []string
	// Submodules opts into scanning into initialized git submodule
	// directories (SPEC_FULL.md §4.1). Off by default: a repo's
	// submodules are skipped like any other excluded path, discovered
	// via .gitmodules rather than guessed from directory shape.
	Submodules bool
}

// File is one discovered, non-ignored, non-binary candidate file.
type File struct {
	Path    string // repo-relative, forward-slash separated
	AbsPath string
}

// Scanner discovers indexable files under a repository root.
type Scanner struct {
	cache *lru.Cache[string, *gitignore.Matcher]
}

// New creates a Scanner with a bounded gitignore-matcher cache.
func New() (*Scanner, error) {
	cache, err := lru.New[string, *gitignore.Matcher](matcherCacheSize)
	if err != nil {
		return nil, err
	}
	return &Scanner{cache: cache}, nil
}

// Scan walks opts.Root and returns the sorted set of candidate files.
func (s *Scanner) Scan(opts Options) ([]File, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}

	matcher := gitignore.New()
	matcher.AddPatterns(DefaultIgnorePatterns)
	if err := matcher.LoadFile(filepath.Join(root, ".gitignore")); err != nil {
		return nil, err
	}
	matcher.AddPatterns(opts.IgnorePatterns)

	extSet := make(map[string]struct{}, len(opts.Extensions))
	for _, e := range opts.Extensions {
		extSet[e] = struct{}{}
	}

	submoduleSet := make(map[string]struct{})
	if !opts.Submodules {
		paths, err := listSubmodules(root)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			submoduleSet[p] = struct{}{}
		}
	}

	var files []File
	err = walkDir(root, root, matcher, extSet, submoduleSet, &files)
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func walkDir(root, dir string, matcher *gitignore.Matcher, extSet map[string]struct{}, submoduleSet map[string]struct{}, out *[]File) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsPermission(err) || os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		absPath := filepath.Join(dir, entry.Name())
		relPath, err := filepath.Rel(root, absPath)
		if err != nil {
			continue
		}
		relPath = filepath.ToSlash(relPath)

		if _, isSubmodule := submoduleSet[relPath]; isSubmodule {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.Mode()&os.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(absPath)
			if err != nil {
				continue
			}
			if !isWithin(root, target) {
				continue // symlink escapes the repository root
			}
			targetInfo, err := os.Stat(target)
			if err != nil {
				continue
			}
			if targetInfo.IsDir() {
				if matcher.Match(relPath, true) {
					continue
				}
				if err := walkDir(root, absPath, matcher, extSet, submoduleSet, out); err != nil {
					return err
				}
				continue
			}
			info = targetInfo
		}

		if entry.IsDir() {
			if matcher.Match(relPath, true) {
				continue
			}
			if err := walkDir(root, absPath, matcher, extSet, submoduleSet, out); err != nil {
				return err
			}
			continue
		}

		if matcher.Match(relPath, false) {
			continue
		}

		if len(extSet) > 0 {
			if _, ok := extSet[filepath.Ext(entry.Name())]; !ok {
				continue
			}
		}

		if isBinary(absPath) {
			continue
		}

		*out = append(*out, File{Path: relPath, AbsPath: absPath})
	}
	return nil
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !hasDotDotPrefix(rel)
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 2 && rel[0] == '.' && rel[1] == '.' &&
		(len(rel) == 2 || os.IsPathSeparator(rel[2]))
}

// isBinary detects binary content by the presence of a NUL byte in the
// first binarySniffBytes bytes of the file.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true // unreadable files are excluded as a safe default
	}
	defer f.Close()

	buf := make([]byte, binarySniffBytes)
	n, _ := f.Read(buf)
	return bytes.IndexByte(buf[:n], 0) != -1
}
