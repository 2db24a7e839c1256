package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/docker/go-units"
)

// Report aggregates the outcomes of one run.
type Report struct {
	Root   string
	DryRun bool

	Outcomes        []CleanOutcome
	Removed         int
	NotPresent      int
	Kept            int
	Failed          int
	BytesReclaimed  int64
	BytesKept       int64
	FilesRemoved    int64
	TraversalErrors []*TraversalError

	DiskBefore diskSnapshot
	DiskAfter  diskSnapshot
	Elapsed    time.Duration
}

func (r *Report) add(o CleanOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Kind {
	case Removed:
		r.Removed++
		r.BytesReclaimed += o.Bytes
		r.FilesRemoved += o.Files
	case NotPresent:
		r.NotPresent++
	case Kept:
		r.Kept++
		r.BytesKept += o.Bytes
	case Failed:
		r.Failed++
	}
}

func (r *Report) addTraversalError(err *TraversalError) {
	r.TraversalErrors = append(r.TraversalErrors, err)
}

// Processed is the number of projects the cleaner looked at.
func (r *Report) Processed() int {
	return len(r.Outcomes)
}

// Failures returns the failed outcomes sorted by project path.
func (r *Report) Failures() []CleanOutcome {
	var failures []CleanOutcome
	for _, o := range r.Outcomes {
		if o.Kind == Failed {
			failures = append(failures, o)
		}
	}
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Project < failures[j].Project
	})
	return failures
}

// Outcome returns the outcome recorded for a project path.
func (r *Report) Outcome(project string) (CleanOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Project == project {
			return o, true
		}
	}
	return CleanOutcome{}, false
}

type reportStyles struct {
	header  lipgloss.Style
	removed lipgloss.Style
	kept    lipgloss.Style
	failed  lipgloss.Style
	dim     lipgloss.Style
}

func newReportStyles(re *lipgloss.Renderer) reportStyles {
	return reportStyles{
		header:  re.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		removed: re.NewStyle().Foreground(lipgloss.Color("10")),
		kept:    re.NewStyle().Faint(true),
		failed:  re.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		dim:     re.NewStyle().Faint(true),
	}
}

func humanBytes(n int64) string {
	return units.BytesSize(float64(n))
}

func sizeLabel(o CleanOutcome) string {
	if !o.SizeKnown {
		return "size unknown"
	}
	return humanBytes(o.Bytes)
}

// Render writes the human readable summary.
func (r *Report) Render(w io.Writer) error {
	st := newReportStyles(lipgloss.NewRenderer(w))
	var b strings.Builder

	cleanable := r.Removed + r.Kept + r.Failed
	if cleanable == 0 && len(r.TraversalErrors) == 0 {
		fmt.Fprintf(&b, "No cleanable swim projects found in %s\n", r.Root)
		_, err := io.WriteString(w, b.String())
		return err
	}

	plural := "s"
	if r.Processed() == 1 {
		plural = ""
	}
	fmt.Fprintln(&b, st.header.Render(fmt.Sprintf("%d swim project%s found in %s", r.Processed(), plural, r.Root)))

	outcomes := append([]CleanOutcome(nil), r.Outcomes...)
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Project < outcomes[j].Project })
	for _, o := range outcomes {
		switch o.Kind {
		case Removed:
			fmt.Fprintf(&b, "  %s\n", st.removed.Render(fmt.Sprintf("Cleaned %s (%s)", o.Project, sizeLabel(o))))
		case Kept:
			fmt.Fprintf(&b, "  %s\n", st.kept.Render(fmt.Sprintf("Skipped %s (%s, %s)", o.Project, sizeLabel(o), o.Reason)))
		}
	}

	if failures := r.Failures(); len(failures) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, st.failed.Render(fmt.Sprintf("%d project(s) could not be cleaned:", len(failures))))
		for _, o := range failures {
			fmt.Fprintf(&b, "  %s: %s\n", o.Project, o.Reason)
		}
	}

	if len(r.TraversalErrors) > 0 {
		errs := append([]*TraversalError(nil), r.TraversalErrors...)
		sort.Slice(errs, func(i, j int) bool { return errs[i].Path < errs[j].Path })
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, st.failed.Render(fmt.Sprintf("%d director(ies) could not be read:", len(errs))))
		for _, e := range errs {
			fmt.Fprintf(&b, "  %s: %v\n", e.Path, e.Err)
		}
	}

	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "removed: %d, no build output: %d, skipped: %d, failed: %d\n",
		r.Removed, r.NotPresent, r.Kept, r.Failed)
	switch {
	case r.DryRun:
		fmt.Fprintf(&b, "%s would be cleaned (dry run)\n", humanBytes(r.BytesKept))
	case r.BytesReclaimed > 0:
		fmt.Fprintln(&b, st.header.Render(fmt.Sprintf("%s successfully cleaned", humanBytes(r.BytesReclaimed))))
	default:
		fmt.Fprintln(&b, "No projects cleaned")
	}
	if n := freed(r.DiskBefore, r.DiskAfter); n > 0 {
		fmt.Fprintln(&b, st.dim.Render(fmt.Sprintf("free space on %s: %s -> %s",
			r.DiskAfter.Fstype, humanBytes(int64(r.DiskBefore.Free)), humanBytes(int64(r.DiskAfter.Free)))))
	}
	if r.Elapsed > 0 {
		fmt.Fprintln(&b, st.dim.Render(fmt.Sprintf("done in %s", r.Elapsed.Round(time.Millisecond))))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
