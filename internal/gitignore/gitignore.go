// Package gitignore implements gitignore-style pattern matching used by
// the file scanner to decide which paths to skip. See spec.md §4.1.
package gitignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// rule is one compiled ignore pattern.
type rule struct {
	raw      string
	g        glob.Glob
	negate   bool
	dirOnly  bool
	anchored bool
	// leadingGlobstar is set when the compiled pattern starts with "**/",
	// which must also match zero leading segments.
	leadingGlobstar bool
}

// Matcher holds an ordered set of compiled rules. Later rules take
// precedence over earlier ones, matching git's own semantics.
type Matcher struct {
	rules []rule
}

// New compiles an empty matcher.
func New() *Matcher {
	return &Matcher{}
}

// AddPattern compiles and appends one gitignore-syntax pattern. Blank
// lines and comment lines (leading '#') are ignored.
func (m *Matcher) AddPattern(pattern string) {
	line := strings.TrimRight(pattern, "\r\n")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return
	}

	negate := false
	if strings.HasPrefix(trimmed, "!") {
		negate = true
		trimmed = trimmed[1:]
	}
	// Unescape a literal leading '#' or '!' (\# , \!).
	if strings.HasPrefix(trimmed, "\\#") || strings.HasPrefix(trimmed, "\\!") {
		trimmed = trimmed[1:]
	}

	dirOnly := strings.HasSuffix(trimmed, "/")
	if dirOnly {
		trimmed = strings.TrimSuffix(trimmed, "/")
	}
	if trimmed == "" {
		return
	}

	anchored := strings.HasPrefix(trimmed, "/")
	body := strings.TrimPrefix(trimmed, "/")

	globPattern := body
	if !anchored && !strings.Contains(body, "/") {
		// An unanchored, slash-free pattern matches at any depth.
		globPattern = "**/" + body
	}

	compiled, err := glob.Compile(globPattern, '/')
	if err != nil {
		// Malformed pattern: treat as a no-op rather than failing the scan.
		return
	}

	m.rules = append(m.rules, rule{
		raw:      pattern,
		g:        compiled,
		negate:   negate,
		dirOnly:  dirOnly,
		anchored: anchored,

		leadingGlobstar: strings.HasPrefix(globPattern, "**/"),
	})
}

// AddPatterns compiles each of the given patterns in order.
func (m *Matcher) AddPatterns(patterns []string) {
	for _, p := range patterns {
		m.AddPattern(p)
	}
}

// LoadFile reads and compiles patterns from a .gitignore file. A
// missing file is not an error (returns an unmodified matcher).
func (m *Matcher) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m.AddPattern(scanner.Text())
	}
	return scanner.Err()
}

// Match reports whether relPath (forward-slash separated, relative to
// the scan root) is ignored. isDir indicates whether relPath names a
// directory, since some patterns are directory-only.
func (m *Matcher) Match(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	ignored := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		// The glob library requires the '/' after a leading "**" to be
		// present, so a root-level path is also tried with a leading '/'.
		if r.g.Match(relPath) || (r.leadingGlobstar && r.g.Match("/"+relPath)) {
			ignored = !r.negate
		}
	}
	return ignored
}

// Clone returns a matcher with the same rules, safe to extend
// independently.
func (m *Matcher) Clone() *Matcher {
	clone := &Matcher{rules: make([]rule, len(m.rules))}
	copy(clone.rules, m.rules)
	return clone
}

// Empty reports whether the matcher has no rules.
func (m *Matcher) Empty() bool {
	return len(m.rules) == 0
}
