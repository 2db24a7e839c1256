package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
)

// OutcomeKind is what happened to one project's build directory.
type OutcomeKind int

const (
	NotPresent OutcomeKind = iota // no build directory, or the project vanished
	Removed
	Kept // dry run, declined or interrupted
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case NotPresent:
		return "not present"
	case Removed:
		return "removed"
	case Kept:
		return "kept"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// CleanOutcome is the per-project result.
type CleanOutcome struct {
	Project   string
	Kind      OutcomeKind
	Bytes     int64 // build directory size, valid when SizeKnown
	SizeKnown bool
	Files     int64 // files deleted
	Reason    string
}

// Cleaner removes the build directory of verified projects.
type Cleaner struct {
	// DryRun measures but never removes; such projects come out Kept.
	DryRun bool

	// Confirm, when set, is asked before each removal.
	Confirm func(p Project, size int64) bool

	// Counter, when set, is incremented for every file deleted.
	Counter *int64

	log    logrus.FieldLogger
	remove func(path string, counter *int64) (int64, error)
}

func NewCleaner(log logrus.FieldLogger) *Cleaner {
	return &Cleaner{log: log, remove: removeBuildDir}
}

// Clean never returns an error: failures are reported in the outcome and the
// caller moves on to the next project.
func (c *Cleaner) Clean(ctx context.Context, candidate ProjectCandidate) CleanOutcome {
	out := CleanOutcome{Project: candidate.Path}

	project, err := verifyProject(candidate)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.log.Debugf("Project %s vanished before cleaning", candidate.Path)
			out.Kind = NotPresent
			return out
		}
		return c.failed(out, err)
	}

	info, err := os.Lstat(project.BuildOutputPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		out.Kind = NotPresent
		return out
	case err != nil:
		return c.failed(out, err)
	}

	isLink := info.Mode()&fs.ModeSymlink != 0
	if !isLink && !info.IsDir() {
		c.log.Debugf("%s is not a directory, leaving it alone", project.BuildOutputPath)
		out.Kind = NotPresent
		return out
	}

	if isLink {
		out.SizeKnown = true
	} else if size, err := buildDirSize(ctx, project.BuildOutputPath); err != nil {
		c.log.Debugf("Cannot size %s: %v", project.BuildOutputPath, err)
	} else {
		out.Bytes, out.SizeKnown = size, true
	}

	if c.DryRun {
		out.Kind = Kept
		out.Reason = "dry run"
		return out
	}
	if c.Confirm != nil && !c.Confirm(project, out.Bytes) {
		out.Kind = Kept
		out.Reason = "declined"
		return out
	}
	if ctx.Err() != nil {
		out.Kind = Kept
		out.Reason = "interrupted"
		return out
	}

	if isLink {
		err = os.Remove(project.BuildOutputPath)
	} else {
		out.Files, err = c.remove(project.BuildOutputPath, c.Counter)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.log.Debugf("%s vanished before removal", project.BuildOutputPath)
			out.Kind = NotPresent
			return out
		}
		return c.failed(out, err)
	}

	c.log.Debugf("Removed %s (%d files)", project.BuildOutputPath, out.Files)
	out.Kind = Removed
	return out
}

func (c *Cleaner) failed(out CleanOutcome, err error) CleanOutcome {
	c.log.Warnf("Cannot clean %s: %v", out.Project, err)
	out.Kind = Failed
	out.Reason = err.Error()
	return out
}
