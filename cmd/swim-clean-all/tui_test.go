package main

import (
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestProgressModelConfirm(t *testing.T) {
	m := newProgressModel("/src", nil, nil, nil)
	reply := make(chan bool, 1)

	next, _ := m.Update(confirmMsg{project: Project{Path: "/src/p"}, size: 2048, reply: reply})
	m = next.(progressModel)
	assert.Contains(t, m.View(), "Clean /src/p? (2KiB) [y/n]")

	next, _ = m.Update(key("y"))
	m = next.(progressModel)
	require.Len(t, reply, 1)
	assert.True(t, <-reply)
	assert.Nil(t, m.prompt)
	assert.Contains(t, m.View(), "Scanning for cleanable swim projects")
}

func TestProgressModelDeclineWithEnter(t *testing.T) {
	m := newProgressModel("/src", nil, nil, nil)
	reply := make(chan bool, 1)

	next, _ := m.Update(confirmMsg{project: Project{Path: "/src/p"}, reply: reply})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, <-reply)
	assert.Nil(t, next.(progressModel).prompt)
}

func TestProgressModelQuitCancelsRun(t *testing.T) {
	cancelled := false
	m := newProgressModel("/src", nil, nil, func() { cancelled = true })
	reply := make(chan bool, 1)

	next, _ := m.Update(confirmMsg{project: Project{Path: "/src/p"}, reply: reply})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, cancelled)
	assert.False(t, <-reply, "pending prompt is declined")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, next.View())
}

func TestProgressModelCountsOutcomes(t *testing.T) {
	var current atomic.Pointer[string]
	dir := "/src/a/b/c"
	current.Store(&dir)
	files := int64(7)
	m := newProgressModel("/src", &current, &files, nil)

	next, cmd := m.Update(outcomeMsg(CleanOutcome{Project: "/src/p", Kind: Removed, Bytes: 1024, SizeKnown: true}))
	assert.NotNil(t, cmd)
	next, _ = next.Update(outcomeMsg(CleanOutcome{Project: "/src/q", Kind: Failed, Reason: "busy"}))
	m = next.(progressModel)

	assert.Equal(t, 1, m.removed)
	assert.Equal(t, 1, m.failed)
	view := m.View()
	assert.Contains(t, view, "[/src/a/b]")
	assert.Contains(t, view, "1 cleaned, 1 failed, 1KiB")
	assert.Contains(t, view, "7 files")
}

func TestProgressModelQuitsWhenRunDone(t *testing.T) {
	m := newProgressModel("/src", nil, nil, nil)
	next, cmd := m.Update(runDoneMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, next.View())
}

func TestShortenPath(t *testing.T) {
	assert.Equal(t, "/src", shortenPath("/src", "/src"))
	assert.Equal(t, "/src/a", shortenPath("/src", "/src/a"))
	assert.Equal(t, "/src/a/b", shortenPath("/src", "/src/a/b/c/d"))
}
