package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/moby/patternmatcher"
)

// skipMatcher decides which directories the walker leaves out.
//
// Entries are split into three kinds:
//   - path entries (absolute, or starting with ~, ./ or ../) are resolved
//     against the working directory and canonicalized; they match a directory
//     whose real path is the entry or lies below it
//   - name entries (no separator) are globs matched against the base name at
//     any depth
//   - relative entries with a separator are matched against the path relative
//     to the search root with dockerignore-style semantics (** spans components)
type skipMatcher struct {
	paths []string
	names []string
	rel   *patternmatcher.PatternMatcher
}

func compileSkip(patterns []string, workDir string) (*skipMatcher, error) {
	m := &skipMatcher{}
	var rel []string

	for _, raw := range patterns {
		p := strings.TrimSpace(raw)
		if p == "" {
			continue
		}
		switch {
		case isPathPattern(p):
			resolved, err := resolveSkipPath(p, workDir)
			if err != nil {
				return nil, &ConfigError{Op: "resolve skip path", Path: p, Err: err}
			}
			m.paths = append(m.paths, resolved)
		case !strings.ContainsRune(p, '/') && !strings.ContainsRune(p, filepath.Separator):
			if _, err := filepath.Match(p, p); err != nil {
				return nil, &ConfigError{Op: "parse skip pattern", Path: p, Err: err}
			}
			m.names = append(m.names, p)
		default:
			rel = append(rel, filepath.FromSlash(p))
		}
	}

	if len(rel) > 0 {
		pm, err := patternmatcher.New(rel)
		if err != nil {
			return nil, &ConfigError{Op: "parse skip pattern", Path: strings.Join(rel, ","), Err: err}
		}
		m.rel = pm
	}
	return m, nil
}

func isPathPattern(p string) bool {
	if filepath.IsAbs(p) {
		return true
	}
	head, _, _ := strings.Cut(filepath.ToSlash(p), "/")
	return head == "~" || head == "." || head == ".."
}

// resolveSkipPath turns a path entry into a canonical absolute path. Entries
// that do not exist are kept in cleaned absolute form; they cannot match a
// real directory anyway.
func resolveSkipPath(p, workDir string) (string, error) {
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(workDir, expanded)
	}
	expanded = filepath.Clean(expanded)

	canonical, err := filepath.EvalSymlinks(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return expanded, nil
		}
		return "", err
	}
	return canonical, nil
}

// Match reports whether the directory at rel (relative to the search root)
// with real path realPath must be skipped.
func (m *skipMatcher) Match(rel, realPath string) bool {
	if m == nil {
		return false
	}
	for _, p := range m.paths {
		if within(realPath, p) {
			return true
		}
	}
	base := filepath.Base(rel)
	for _, name := range m.names {
		if ok, _ := filepath.Match(name, base); ok {
			return true
		}
	}
	if m.rel != nil {
		ok, err := m.rel.MatchesOrParentMatches(rel)
		if err == nil && ok {
			return true
		}
	}
	return false
}

func (m *skipMatcher) String() string {
	if m == nil {
		return "none"
	}
	return fmt.Sprintf("paths=%v names=%v relative=%v", m.paths, m.names, m.rel != nil)
}

// within reports whether path equals dir or lies below it.
func within(path, dir string) bool {
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}
