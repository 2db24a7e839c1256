package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCounts(t *testing.T) {
	var r Report
	r.add(CleanOutcome{Project: "/b", Kind: Removed, Bytes: 100, SizeKnown: true, Files: 2})
	r.add(CleanOutcome{Project: "/a", Kind: Removed, Bytes: 50, SizeKnown: true, Files: 1})
	r.add(CleanOutcome{Project: "/c", Kind: NotPresent})
	r.add(CleanOutcome{Project: "/e", Kind: Failed, Reason: "busy"})
	r.add(CleanOutcome{Project: "/d", Kind: Failed, Reason: "denied"})
	r.add(CleanOutcome{Project: "/f", Kind: Kept, Bytes: 10, SizeKnown: true, Reason: "dry run"})
	r.addTraversalError(&TraversalError{Path: "/x", Err: assert.AnError})

	assert.Equal(t, 6, r.Processed())
	assert.Equal(t, 2, r.Removed)
	assert.Equal(t, 1, r.NotPresent)
	assert.Equal(t, 2, r.Failed)
	assert.Equal(t, 1, r.Kept)
	assert.Equal(t, int64(150), r.BytesReclaimed)
	assert.Equal(t, int64(10), r.BytesKept)
	assert.Equal(t, int64(3), r.FilesRemoved)

	failures := r.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, "/d", failures[0].Project)
	assert.Equal(t, "/e", failures[1].Project)

	o, ok := r.Outcome("/c")
	assert.True(t, ok)
	assert.Equal(t, NotPresent, o.Kind)
	_, ok = r.Outcome("/zzz")
	assert.False(t, ok)
}

func TestReportRender(t *testing.T) {
	r := Report{Root: "/src"}
	r.add(CleanOutcome{Project: "/src/proj-a", Kind: Removed, Bytes: 2048, SizeKnown: true})
	r.add(CleanOutcome{Project: "/src/proj-b", Kind: NotPresent})
	r.add(CleanOutcome{Project: "/src/proj-x", Kind: Failed, Reason: "permission denied"})
	r.addTraversalError(&TraversalError{Path: "/src/locked", Err: assert.AnError})

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, "3 swim projects found in /src")
	assert.Contains(t, out, "Cleaned /src/proj-a (2KiB)")
	assert.NotContains(t, out, "proj-b", "projects without build output are only counted")
	assert.Contains(t, out, "/src/proj-x: permission denied")
	assert.Contains(t, out, "/src/locked: ")
	assert.Contains(t, out, "removed: 1, no build output: 1, skipped: 0, failed: 1")
	assert.Contains(t, out, "2KiB successfully cleaned")
	assert.NotContains(t, out, "\x1b[", "no colors when not writing to a terminal")
}

func TestReportRenderDryRun(t *testing.T) {
	r := Report{Root: "/src", DryRun: true}
	r.add(CleanOutcome{Project: "/src/p", Kind: Kept, Bytes: 1024, SizeKnown: true, Reason: "dry run"})

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf))
	assert.Contains(t, buf.String(), "Skipped /src/p (1KiB, dry run)")
	assert.Contains(t, buf.String(), "1KiB would be cleaned (dry run)")
}

func TestReportRenderNothingFound(t *testing.T) {
	r := Report{Root: "/src"}
	r.add(CleanOutcome{Project: "/src/p", Kind: NotPresent})

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf))
	assert.Equal(t, "No cleanable swim projects found in /src\n", buf.String())
}

func TestFreed(t *testing.T) {
	before := diskSnapshot{Free: 100, ok: true}
	after := diskSnapshot{Free: 150, ok: true}
	assert.Equal(t, uint64(50), freed(before, after))
	assert.Zero(t, freed(after, before))
	assert.Zero(t, freed(diskSnapshot{}, after))
}
