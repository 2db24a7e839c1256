package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// markerFileName identifies a swim project root.
	markerFileName = "swim.toml"

	// buildDirName is where swim puts its build output. swim forces this name.
	buildDirName = "build"
)

// ProjectCandidate is a directory the walker saw a marker file in.
// It is not verified until the cleaner looks at it.
type ProjectCandidate struct {
	Path  string
	Depth int
}

// Project is a verified swim project.
type Project struct {
	Path            string
	BuildOutputPath string
}

// hasMarker reports whether dir holds a swim.toml regular file.
func hasMarker(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, markerFileName))
	return err == nil && info.Mode().IsRegular()
}

// verifyProject re-checks the marker of a candidate. A marker that vanished
// or was replaced by something other than a file returns fs.ErrNotExist.
func verifyProject(c ProjectCandidate) (Project, error) {
	marker := filepath.Join(c.Path, markerFileName)
	info, err := os.Stat(marker)
	if err != nil {
		return Project{}, err
	}
	if !info.Mode().IsRegular() {
		return Project{}, fmt.Errorf("%s is not a regular file: %w", marker, fs.ErrNotExist)
	}

	f, err := os.Open(marker)
	if err != nil {
		return Project{}, fmt.Errorf("marker not readable: %w", err)
	}
	_ = f.Close()

	return Project{
		Path:            c.Path,
		BuildOutputPath: filepath.Join(c.Path, buildDirName),
	}, nil
}
