package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"syscall"

	"golang.org/x/sync/errgroup"
)

const (
	cpuMultiplier = 2
	minWorkers    = 4
	maxWorkers    = 32
)

// buildDirSize returns the disk usage of a build directory. Top-level
// subdirectories are walked concurrently; nothing is modified.
func buildDirSize(ctx context.Context, root string) (int64, error) {
	children, err := os.ReadDir(root)
	if err != nil {
		return 0, err
	}

	numWorkers := runtime.NumCPU() * cpuMultiplier
	if numWorkers < minWorkers {
		numWorkers = minWorkers
	}
	if numWorkers > maxWorkers {
		numWorkers = maxWorkers
	}

	var total atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)

	for _, child := range children {
		fullPath := filepath.Join(root, child.Name())

		// Type() does not follow symlinks, so links are counted as themselves.
		if child.Type().IsDir() {
			g.Go(func() error {
				size, err := calculateDirSize(ctx, fullPath)
				total.Add(size)
				return err
			})
			continue
		}

		info, err := child.Info()
		if err != nil {
			continue
		}
		total.Add(getActualFileSize(info))
	}

	err = g.Wait()
	return total.Load(), err
}

// calculateDirSize walks root and sums file sizes. Unreadable entries are
// ignored; only cancellation stops the walk.
func calculateDirSize(ctx context.Context, root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += getActualFileSize(info)
		return nil
	})
	return total, err
}

// getActualFileSize prefers allocated blocks so sparse files are not
// over-counted, capped at the logical size.
func getActualFileSize(info fs.FileInfo) int64 {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.Size()
	}

	actualSize := int64(stat.Blocks) * 512
	if actualSize < info.Size() {
		return actualSize
	}
	return info.Size()
}
