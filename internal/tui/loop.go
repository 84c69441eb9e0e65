package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameMsg delivers one engine frame scheduled for gen.
type frameMsg struct {
	gen uint64
}

// tickLoop turns engine frame requests into tea.Tick commands. Requests made
// while handling a message are collected and returned by cmd.
type tickLoop struct {
	interval time.Duration
	pending  []uint64
	stopped  bool
}

func newTickLoop(interval time.Duration) *tickLoop {
	if interval <= 0 {
		interval = time.Second / 30
	}
	return &tickLoop{interval: interval}
}

func (l *tickLoop) Schedule(gen uint64) {
	if l.stopped {
		return
	}
	l.pending = append(l.pending, gen)
}

func (l *tickLoop) Stop() {
	l.stopped = true
	l.pending = nil
}

// cmd drains the collected requests.
func (l *tickLoop) cmd() tea.Cmd {
	if len(l.pending) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(l.pending))
	for _, gen := range l.pending {
		cmds = append(cmds, tea.Tick(l.interval, func(time.Time) tea.Msg {
			return frameMsg{gen: gen}
		}))
	}
	l.pending = l.pending[:0]
	return tea.Batch(cmds...)
}
