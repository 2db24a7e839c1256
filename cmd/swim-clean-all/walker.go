package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// TraversalError is a directory the walker could not read. The walk goes on
// with siblings and other subtrees.
type TraversalError struct {
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error { return e.Err }

// Walker finds swim project candidates below a search root.
type Walker struct {
	cfg  SearchConfig
	skip *skipMatcher
	log  logrus.FieldLogger

	// OnVisit, when set, is called for every directory before it is inspected.
	OnVisit func(dir string, depth int)
}

func NewWalker(cfg SearchConfig, log logrus.FieldLogger) (*Walker, error) {
	skip, err := compileSkip(cfg.Skip, cfg.WorkDir)
	if err != nil {
		return nil, err
	}
	return &Walker{cfg: cfg, skip: skip, log: log}, nil
}

// Walk yields candidates depth first. A non-nil error is either a
// *TraversalError for a single directory, after which the sequence continues,
// or the context error, which ends it.
//
// The root is always visited. A directory is visited when its depth is at most
// MaxDepth, it does not match the skip list, its real path lies inside the root
// and has not been visited yet. The build directory of a project is never
// descended into.
func (w *Walker) Walk(ctx context.Context) iter.Seq2[ProjectCandidate, error] {
	return func(yield func(ProjectCandidate, error) bool) {
		visited := newVisitedSet()
		visited.add(w.cfg.Root)
		w.visit(ctx, w.cfg.Root, w.cfg.Root, ".", 0, visited, yield)
		w.log.Debugf("Walk finished, %d directories visited", visited.len())
	}
}

// visit returns false once the walk must stop.
func (w *Walker) visit(ctx context.Context, dir, realDir, rel string, depth int, visited *visitedSet, yield func(ProjectCandidate, error) bool) bool {
	if err := ctx.Err(); err != nil {
		yield(ProjectCandidate{}, fmt.Errorf("walk interrupted at %s: %w", dir, err))
		return false
	}
	if w.OnVisit != nil {
		w.OnVisit(dir, depth)
	}

	isProject := hasMarker(dir)
	if isProject {
		w.log.Debugf("Found swim project %s", dir)
		if !yield(ProjectCandidate{Path: dir, Depth: depth}, nil) {
			return false
		}
	}

	if depth >= w.cfg.MaxDepth {
		w.log.Debugf("Max depth %d reached at %s", w.cfg.MaxDepth, dir)
		return true
	}

	children, err := os.ReadDir(dir)
	if err != nil {
		w.log.Warnf("Cannot read %s: %v", dir, err)
		return yield(ProjectCandidate{}, &TraversalError{Path: dir, Err: err})
	}

	for _, child := range children {
		name := child.Name()
		if isProject && name == buildDirName {
			continue
		}
		path := filepath.Join(dir, name)

		childReal, ok, err := resolveChildDir(child, path, filepath.Join(realDir, name))
		if err != nil {
			w.log.Warnf("Cannot resolve %s: %v", path, err)
			if !yield(ProjectCandidate{}, &TraversalError{Path: path, Err: err}) {
				return false
			}
			continue
		}
		if !ok {
			continue
		}
		if !within(childReal, w.cfg.Root) {
			w.log.Debugf("Not following %s out of the search root to %s", path, childReal)
			continue
		}

		childRel := filepath.Join(rel, name)
		if w.skip.Match(childRel, childReal) {
			w.log.Debugf("Skipping %s", path)
			continue
		}
		if !visited.add(childReal) {
			w.log.Debugf("Already visited %s (via %s)", childReal, path)
			continue
		}
		if !w.visit(ctx, path, childReal, childRel, depth+1, visited, yield) {
			return false
		}
	}
	return true
}

// resolveChildDir reports whether entry is a directory, following symlinks,
// and returns its real path. Dangling links are not directories.
func resolveChildDir(entry fs.DirEntry, path, joinedReal string) (string, bool, error) {
	if entry.IsDir() {
		return joinedReal, true, nil
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return "", false, nil
	}

	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	if !info.IsDir() {
		return "", false, nil
	}
	return target, true, nil
}
