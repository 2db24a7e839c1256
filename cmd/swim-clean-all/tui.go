package main

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

type (
	tickMsg    time.Time
	outcomeMsg CleanOutcome
	walkErrMsg struct{ err *TraversalError }
	runDoneMsg struct{}
)

// confirmMsg asks the user about one project; the answer goes to reply.
type confirmMsg struct {
	project Project
	size    int64
	reply   chan bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	pathStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cleanedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// progressModel shows a spinner with the directory being scanned, prints a
// line per cleaned project and asks for confirmation in interactive mode.
type progressModel struct {
	root    string
	current *atomic.Pointer[string]
	files   *int64
	cancel  context.CancelFunc

	frame    int
	prompt   *confirmMsg
	removed  int
	failed   int
	bytes    int64
	quitting bool
}

func newProgressModel(root string, current *atomic.Pointer[string], files *int64, cancel context.CancelFunc) progressModel {
	return progressModel{root: root, current: current, files: files, cancel: cancel}
}

func tick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m progressModel) Init() tea.Cmd {
	return tick()
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.quitting {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, tick()

	case confirmMsg:
		m.prompt = &msg
		return m, nil

	case outcomeMsg:
		o := CleanOutcome(msg)
		switch o.Kind {
		case Removed:
			m.removed++
			m.bytes += o.Bytes
			return m, tea.Println(cleanedStyle.Render(fmt.Sprintf("Cleaned %s (%s).", o.Project, sizeLabel(o))))
		case Kept:
			return m, tea.Println(faintStyle.Render(fmt.Sprintf("Skipped %s (%s, %s).", o.Project, sizeLabel(o), o.Reason)))
		case Failed:
			m.failed++
			return m, tea.Println(failedStyle.Render(fmt.Sprintf("Failed to clean %s: %s", o.Project, o.Reason)))
		}
		return m, nil

	case walkErrMsg:
		return m, tea.Println(failedStyle.Render(fmt.Sprintf("Cannot read %s: %v", msg.err.Path, msg.err.Err)))

	case runDoneMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m progressModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.answer(false)
		if m.cancel != nil {
			m.cancel()
		}
		m.quitting = true
		return m, tea.Quit
	case "y", "Y":
		m.answer(true)
	case "n", "N", "enter":
		m.answer(false)
	}
	return m, nil
}

// answer replies to a pending prompt, if any. reply is buffered so the
// update loop never blocks on the cleaning goroutine.
func (m *progressModel) answer(yes bool) {
	if m.prompt == nil {
		return
	}
	m.prompt.reply <- yes
	m.prompt = nil
}

func (m progressModel) View() string {
	if m.quitting {
		return ""
	}
	if m.prompt != nil {
		return promptStyle.Render(fmt.Sprintf("  Clean %s? (%s) [y/n] ", m.prompt.project.Path, humanBytes(m.prompt.size)))
	}

	dir := m.root
	if m.current != nil {
		if p := m.current.Load(); p != nil {
			dir = *p
		}
	}
	var b strings.Builder
	b.WriteString(spinnerFrames[m.frame])
	b.WriteString(" ")
	b.WriteString(titleStyle.Render("Scanning for cleanable swim projects "))
	b.WriteString(pathStyle.Render("[" + shortenPath(m.root, dir) + "]"))
	if m.removed > 0 || m.failed > 0 {
		b.WriteString(faintStyle.Render(fmt.Sprintf("  %d cleaned, %d failed, %s", m.removed, m.failed, humanBytes(m.bytes))))
	}
	if m.files != nil {
		if n := atomic.LoadInt64(m.files); n > 0 {
			b.WriteString(faintStyle.Render(fmt.Sprintf(", %d files", n)))
		}
	}
	return b.String()
}

// shortenPath shows dir with at most two components below root.
func shortenPath(root, dir string) string {
	rest := strings.TrimPrefix(dir, root)
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return root
	}
	parts := strings.Split(rest, "/")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.TrimSuffix(root, "/") + "/" + strings.Join(parts, "/")
}

// teaProgress forwards run events to a bubbletea program.
type teaProgress struct {
	program *tea.Program
	current *atomic.Pointer[string]
	done    chan struct{}
}

func (p *teaProgress) Visiting(dir string) {
	p.current.Store(&dir)
}

func (p *teaProgress) Outcome(o CleanOutcome) {
	p.program.Send(outcomeMsg(o))
}

func (p *teaProgress) TraversalError(err *TraversalError) {
	p.program.Send(walkErrMsg{err: err})
}

func (p *teaProgress) Confirm(project Project, size int64) bool {
	reply := make(chan bool, 1)
	p.program.Send(confirmMsg{project: project, size: size, reply: reply})
	select {
	case yes := <-reply:
		return yes
	case <-p.done:
		return false
	}
}
