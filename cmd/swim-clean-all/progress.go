package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// progressSink receives events while a run is in flight.
type progressSink interface {
	Visiting(dir string)
	Outcome(o CleanOutcome)
	TraversalError(err *TraversalError)
	Confirm(p Project, size int64) bool
}

// plainProgress writes line-oriented output, for pipes and --verbose.
type plainProgress struct {
	out     io.Writer
	in      *bufio.Reader
	log     logrus.FieldLogger
	verbose bool
}

func newPlainProgress(out io.Writer, in io.Reader, log logrus.FieldLogger, verbose bool) *plainProgress {
	return &plainProgress{out: out, in: bufio.NewReader(in), log: log, verbose: verbose}
}

func (p *plainProgress) Visiting(dir string) {
	p.log.Debugf("Visiting %s", dir)
}

func (p *plainProgress) Outcome(o CleanOutcome) {
	if !p.verbose {
		return
	}
	switch o.Kind {
	case Removed:
		fmt.Fprintf(p.out, "Cleaned %s (%s).\n", o.Project, sizeLabel(o))
	case Kept:
		fmt.Fprintf(p.out, "Skipped %s (%s).\n", o.Project, o.Reason)
	case NotPresent:
		fmt.Fprintf(p.out, "Nothing to clean in %s.\n", o.Project)
	case Failed:
		fmt.Fprintf(p.out, "Failed to clean %s: %s\n", o.Project, o.Reason)
	}
}

func (p *plainProgress) TraversalError(err *TraversalError) {
	if p.verbose {
		fmt.Fprintf(p.out, "Cannot read %s: %v\n", err.Path, err.Err)
	}
}

// Confirm asks on the output and reads one answer line. Anything but y/yes
// declines, including end of input.
func (p *plainProgress) Confirm(project Project, size int64) bool {
	fmt.Fprintf(p.out, "  Clean %s? (%s) [y/n] ", project.Path, humanBytes(size))
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	return isYes(line)
}

func isYes(answer string) bool {
	switch strings.TrimSpace(answer) {
	case "y", "Y", "yes", "Yes", "YES":
		return true
	}
	return false
}
