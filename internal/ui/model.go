package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/websemantics/codepen-puppeteer/internal/crawler"
)

// DoneMsg tells the view that the run has finished.
type DoneMsg struct {
	Summary crawler.Summary
	Err     error
}

type tickMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{} })
}

const statsHeight = 20

// Model is the run view. It is fed crawler.Event values through
// tea.Program.Send and quits after DoneMsg.
type Model struct {
	stats    RunStats
	panel    *StatsPanel
	queue    *QueueList
	console  *ErrorConsole
	cancel   context.CancelFunc
	stopping bool
	done     bool
	width    int
	height   int
}

// New creates the view. cancel stops the run when the user quits.
func New(cancel context.CancelFunc) *Model {
	m := &Model{
		stats:   RunStats{StartTime: time.Now()},
		panel:   NewStatsPanel(),
		queue:   NewQueueList(),
		console: NewErrorConsole(),
		cancel:  cancel,
	}
	m.setSize(100, 40)
	return m
}

// Stats returns the current counters.
func (m *Model) Stats() RunStats {
	return m.stats
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tickMsg:
		if !m.done {
			cmds = append(cmds, tick())
		}

	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.stopping {
				return m, tea.Quit
			}
			m.stopping = true
			m.console.AddEntry(LevelWarning, "Stopping after the current step, press again to quit now")
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		cmds = append(cmds, m.console.Update(msg), m.queue.Update(msg))

	case crawler.Event:
		m.handleEvent(msg)

	case DoneMsg:
		m.done = true
		m.stats.Current = ""
		if msg.Err != nil {
			m.console.AddEntry(LevelError, fmt.Sprintf("Run stopped: %v", msg.Err))
		} else {
			m.console.AddEntry(LevelInfo, fmt.Sprintf("Run finished: %d downloaded, %d skipped, %d failed",
				msg.Summary.Downloaded, msg.Summary.Skipped, len(msg.Summary.Failures)))
		}
		m.panel.UpdateStats(m.stats)
		return m, tea.Quit
	}

	m.panel.UpdateStats(m.stats)
	return m, tea.Batch(cmds...)
}

func (m *Model) handleEvent(e crawler.Event) {
	title := strings.TrimSpace(e.Pen.Title)

	switch e.Kind {
	case crawler.PageStarted:
		m.stats.Label = e.Label
		m.stats.PageTotal = e.Total
		m.stats.PageDone = 0
		m.queue.Reset(e.Label)
		for _, pen := range e.Pens {
			m.queue.Add(pen)
		}
		m.console.AddEntry(LevelInfo, fmt.Sprintf("Processing %s, %d pens", e.Label, e.Total))

	case crawler.PenStarted:
		m.stats.Current = title
		m.queue.SetStatus(e.Pen, StatusWorking)

	case crawler.PenDownloaded:
		m.finishPen(title)
		m.stats.Downloaded++
		m.queue.SetStatus(e.Pen, StatusDownloaded)
		m.console.AddEntry(LevelInfo, fmt.Sprintf("Downloaded %s to %s in %v", title, e.File, e.Took.Round(time.Millisecond)))

	case crawler.PenSkipped:
		m.finishPen(title)
		m.stats.Skipped++
		m.queue.SetStatus(e.Pen, StatusSkipped)
		m.console.AddEntry(LevelInfo, fmt.Sprintf("Skipped %s, %s already exists", title, e.File))

	case crawler.PenFailed:
		m.finishPen(title)
		m.stats.Failed++
		m.queue.SetStatus(e.Pen, StatusFailed)
		m.console.AddEntry(LevelError, fmt.Sprintf("Failed %s: %v", title, e.Err))

	case crawler.PenDuplicate:
		m.stats.Duplicates++
		m.console.AddEntry(LevelWarning, fmt.Sprintf("Already seen %s (%s), listed once", title, e.Pen.URL))

	case crawler.SearchFailed:
		m.console.AddEntry(LevelError, fmt.Sprintf("Search page %d failed: %v", e.Page, e.Err))

	case crawler.IndexWritten:
		m.console.AddEntry(LevelInfo, fmt.Sprintf("Index updated with %d pens", e.Total))
	}
}

func (m *Model) finishPen(title string) {
	m.stats.PageDone++
	m.stats.Current = ""
	m.stats.RecentPens = addRecent(m.stats.RecentPens, title)
}

func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height

	left := width / 2
	m.panel.SetSize(left-2, statsHeight)
	m.queue.SetSize(width-left-2, statsHeight)
	m.console.SetSize(width-2, max(height-statsHeight-4, 6))
}

func (m *Model) View() string {
	top := lipgloss.JoinHorizontal(lipgloss.Top, m.panel.View(), m.queue.View())
	return lipgloss.JoinVertical(lipgloss.Left, top, m.console.View())
}
