package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/websemantics/codepen-puppeteer/internal/types"
)

// Pen statuses shown in the queue list.
const (
	StatusPending    = "pending"
	StatusWorking    = "working"
	StatusDownloaded = "downloaded"
	StatusSkipped    = "skipped"
	StatusFailed     = "failed"
)

// QueueItem is a pen of the current batch.
type QueueItem struct {
	pen    types.PenReference
	status string
}

func (i QueueItem) FilterValue() string { return i.pen.Title }
func (i QueueItem) Title() string       { return i.pen.Title }
func (i QueueItem) Description() string { return fmt.Sprintf("%s | %s", i.status, i.pen.URL) }

// QueueList shows the pens of the batch being processed.
type QueueList struct {
	list    list.Model
	label   string
	pending int
}

func NewQueueList() *QueueList {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("170"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(lipgloss.Color("244"))

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = l.Styles.Title.Foreground(lipgloss.Color("240"))

	q := &QueueList{list: l}
	q.updateTitle()
	return q
}

func (q *QueueList) SetSize(width, height int) {
	q.list.SetSize(width, height)
}

func (q *QueueList) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	q.list, cmd = q.list.Update(msg)
	return cmd
}

func (q *QueueList) View() string {
	return q.list.View()
}

// Reset starts a new batch.
func (q *QueueList) Reset(label string) {
	q.list.SetItems([]list.Item{})
	q.label = label
	q.pending = 0
	q.updateTitle()
}

// Add appends a pending pen.
func (q *QueueList) Add(pen types.PenReference) {
	q.list.InsertItem(len(q.list.Items()), QueueItem{pen: pen, status: StatusPending})
	q.pending++
	q.updateTitle()
}

// SetStatus updates the pen with url, adding it if the batch did not list it.
func (q *QueueList) SetStatus(pen types.PenReference, status string) {
	for i, item := range q.list.Items() {
		qi, ok := item.(QueueItem)
		if !ok || qi.pen.URL != pen.URL {
			continue
		}
		if qi.status == StatusPending && status != StatusPending {
			q.pending--
		}
		qi.status = status
		q.list.SetItem(i, qi)
		q.list.Select(i)
		q.updateTitle()
		return
	}
	q.list.InsertItem(len(q.list.Items()), QueueItem{pen: pen, status: status})
	q.updateTitle()
}

// Status returns the status of the pen with url, or "" if it is not listed.
func (q *QueueList) Status(url string) string {
	for _, item := range q.list.Items() {
		if qi, ok := item.(QueueItem); ok && qi.pen.URL == url {
			return qi.status
		}
	}
	return ""
}

func (q *QueueList) updateTitle() {
	label := q.label
	if label == "" {
		label = "waiting"
	}
	q.list.Title = fmt.Sprintf("Pens, %s (%d pending)", label, q.pending)
}
