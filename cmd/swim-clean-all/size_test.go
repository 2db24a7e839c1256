package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDirSize(t *testing.T) {
	root := filepath.Join(tempRoot(t), "build")
	payload := strings.Repeat("x", 64*1024)
	writeFile(t, filepath.Join(root, "top.bin"), payload)
	writeFile(t, filepath.Join(root, "a", "one.bin"), payload)
	writeFile(t, filepath.Join(root, "b", "c", "two.bin"), payload)

	size, err := buildDirSize(context.Background(), root)
	require.NoError(t, err)
	// Allocated blocks, capped at the logical size.
	assert.Positive(t, size)
	assert.LessOrEqual(t, size, int64(3*len(payload)))
}

func TestBuildDirSizeCountsLinksNotTargets(t *testing.T) {
	base := tempRoot(t)
	big := filepath.Join(base, "big")
	writeFile(t, filepath.Join(big, "blob"), strings.Repeat("x", 256*1024))
	root := filepath.Join(base, "build")
	mkdirAll(t, root)
	require.NoError(t, os.Symlink(big, filepath.Join(root, "link")))

	size, err := buildDirSize(context.Background(), root)
	require.NoError(t, err)
	assert.Less(t, size, int64(256*1024))
}

func TestBuildDirSizeMissing(t *testing.T) {
	_, err := buildDirSize(context.Background(), filepath.Join(tempRoot(t), "nope"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildDirSizeCancelled(t *testing.T) {
	root := filepath.Join(tempRoot(t), "build")
	writeFile(t, filepath.Join(root, "a", "f"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := buildDirSize(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}
