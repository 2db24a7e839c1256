package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
)

// removeBuildDir deletes a project's build directory and returns how many
// files went with it. counter, when set, follows the deletion file by file.
//
// A build directory that is already gone returns an error matching
// fs.ErrNotExist so the caller can tell the race apart from a removal.
// Entries that disappear while the tree is being removed are not errors.
// Otherwise the first failure is returned, unless the tree is gone anyway.
func removeBuildDir(dir string, counter *int64) (int64, error) {
	if _, err := os.Lstat(dir); err != nil {
		return 0, err
	}

	var removed int64
	var firstErr error
	record := func(err error) {
		if firstErr == nil && !errors.Is(err, fs.ErrNotExist) {
			firstErr = err
		}
	}

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			record(err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if err := os.Remove(path); err != nil {
			record(err)
			return nil
		}
		removed++
		if counter != nil {
			atomic.AddInt64(counter, 1)
		}
		return nil
	})
	if walkErr != nil {
		record(walkErr)
	}

	// Directories are left; RemoveAll takes them bottom up.
	if err := os.RemoveAll(dir); err != nil {
		record(err)
	}

	if _, err := os.Lstat(dir); errors.Is(err, fs.ErrNotExist) {
		return removed, nil
	}
	if firstErr == nil {
		firstErr = errors.New("build directory still present")
	}
	return removed, fmt.Errorf("%d files removed before failing: %w", removed, firstErr)
}
