package main

import (
	"context"
	"errors"
	"io"
	"os"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

type runOptions struct {
	DryRun      bool
	Interactive bool
}

// run walks cfg.Root and cleans every candidate in turn. Per-project and
// per-directory failures end up in the report; only a bad configuration or
// cancellation returns an error. The report is valid even then.
func run(ctx context.Context, cfg SearchConfig, opts runOptions, sink progressSink, log logrus.FieldLogger) (Report, error) {
	return runWithCounter(ctx, cfg, opts, sink, log, nil)
}

func runWithCounter(ctx context.Context, cfg SearchConfig, opts runOptions, sink progressSink, log logrus.FieldLogger, files *int64) (Report, error) {
	report := Report{Root: cfg.Root, DryRun: opts.DryRun}

	walker, err := NewWalker(cfg, log)
	if err != nil {
		return report, err
	}
	walker.OnVisit = func(dir string, _ int) { sink.Visiting(dir) }

	cleaner := NewCleaner(log)
	cleaner.DryRun = opts.DryRun
	cleaner.Counter = files
	if opts.Interactive {
		cleaner.Confirm = sink.Confirm
	}

	if snap, err := takeDiskSnapshot(cfg.Root); err != nil {
		log.Debugf("No disk usage before run: %v", err)
	} else {
		report.DiskBefore = snap
	}

	start := time.Now()

	for candidate, err := range walker.Walk(ctx) {
		if err != nil {
			var terr *TraversalError
			if errors.As(err, &terr) {
				report.addTraversalError(terr)
				sink.TraversalError(terr)
				continue
			}
			report.Elapsed = time.Since(start)
			return report, err
		}
		outcome := cleaner.Clean(ctx, candidate)
		report.add(outcome)
		sink.Outcome(outcome)
	}

	if snap, err := takeDiskSnapshot(cfg.Root); err != nil {
		log.Debugf("No disk usage after run: %v", err)
	} else {
		report.DiskAfter = snap
	}
	report.Elapsed = time.Since(start)
	return report, nil
}

// useTUI reports whether out is a terminal the progress display can own.
func useTUI(out io.Writer, plain, verbose bool) bool {
	if plain || verbose {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// runWithTUI drives run from a goroutine while a bubbletea program renders
// progress on out. Quitting the program cancels the run between projects.
func runWithTUI(ctx context.Context, cfg SearchConfig, opts runOptions, in io.Reader, out io.Writer, log logrus.FieldLogger) (Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var current atomic.Pointer[string]
	var files int64
	model := newProgressModel(cfg.Root, &current, &files, cancel)
	program := tea.NewProgram(model, tea.WithInput(in), tea.WithOutput(out), tea.WithContext(ctx))

	sink := &teaProgress{program: program, current: &current, done: make(chan struct{})}

	type result struct {
		report Report
		err    error
	}
	results := make(chan result, 1)
	go func() {
		report, err := runWithCounter(ctx, cfg, opts, sink, log, &files)
		results <- result{report, err}
		program.Send(runDoneMsg{})
	}()

	_, progErr := program.Run()
	close(sink.done)
	res := <-results
	if res.err == nil && progErr != nil && !errors.Is(progErr, tea.ErrProgramKilled) {
		return res.report, progErr
	}
	return res.report, res.err
}
