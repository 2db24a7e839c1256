package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}

// makeProject creates a swim project at dir with buildFiles files in build/.
// A negative buildFiles leaves out the build directory.
func makeProject(t *testing.T, dir string, buildFiles int) {
	t.Helper()
	writeFile(t, filepath.Join(dir, markerFileName), "[package]\nname = \"x\"\n")
	if buildFiles < 0 {
		return
	}
	mkdirAll(t, filepath.Join(dir, buildDirName))
	for i := 0; i < buildFiles; i++ {
		writeFile(t, filepath.Join(dir, buildDirName, "out", string(rune('a'+i))+".v"), "module top; endmodule\n")
	}
}

// tempRoot returns a canonical temp dir so paths compare equal to walker output.
func tempRoot(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return root
}

func testConfig(root string, maxDepth int, skip ...string) SearchConfig {
	return SearchConfig{Root: root, Skip: skip, MaxDepth: maxDepth, WorkDir: root}
}

// collect drains a walk into sorted candidate paths and traversal errors.
func collect(t *testing.T, cfg SearchConfig) ([]string, []*TraversalError) {
	t.Helper()
	w, err := NewWalker(cfg, testLogger())
	require.NoError(t, err)

	var paths []string
	var errs []*TraversalError
	for c, err := range w.Walk(context.Background()) {
		if err != nil {
			terr, ok := err.(*TraversalError)
			require.True(t, ok, "unexpected error %v", err)
			errs = append(errs, terr)
			continue
		}
		paths = append(paths, c.Path)
	}
	sort.Strings(paths)
	return paths, errs
}

func skipIfRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
}

type recordingSink struct {
	visited  []string
	outcomes []CleanOutcome
	walkErrs []*TraversalError
	answer   bool
	asked    []string
}

func (s *recordingSink) Visiting(dir string) { s.visited = append(s.visited, dir) }
func (s *recordingSink) Outcome(o CleanOutcome) { s.outcomes = append(s.outcomes, o) }
func (s *recordingSink) TraversalError(err *TraversalError) { s.walkErrs = append(s.walkErrs, err) }
func (s *recordingSink) Confirm(p Project, _ int64) bool {
	s.asked = append(s.asked, p.Path)
	return s.answer
}
