package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LogLevel is the severity of a console entry.
type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelWarning
	LevelError
)

// LogEntry is a single console line.
type LogEntry struct {
	timestamp time.Time
	level     LogLevel
	message   string
}

// ErrorConsole is a scrollable list of run events, filterable by level.
type ErrorConsole struct {
	viewport  viewport.Model
	entries   []LogEntry
	width     int
	height    int
	style     lipgloss.Style
	showLevel LogLevel
}

var (
	errorLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	infoLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")).
			Italic(true)
)

func NewErrorConsole() *ErrorConsole {
	return &ErrorConsole{
		viewport:  viewport.New(0, 0),
		style:     borderStyle.BorderForeground(lipgloss.Color("196")),
		showLevel: LevelInfo,
	}
}

func (e *ErrorConsole) SetSize(width, height int) {
	e.width = width
	e.height = height
	e.viewport.Width = max(width-4, 0)
	e.viewport.Height = max(height-4, 0)
	e.updateContent()
}

// AddEntry appends a line at level.
func (e *ErrorConsole) AddEntry(level LogLevel, msg string) {
	e.entries = append(e.entries, LogEntry{
		timestamp: time.Now(),
		level:     level,
		message:   msg,
	})
	e.updateContent()
}

// Update scrolls the console and switches the level filter (1, 2, 3).
func (e *ErrorConsole) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "1":
			e.showLevel = LevelInfo
			e.updateContent()
		case "2":
			e.showLevel = LevelWarning
			e.updateContent()
		case "3":
			e.showLevel = LevelError
			e.updateContent()
		}
	}

	var cmd tea.Cmd
	e.viewport, cmd = e.viewport.Update(msg)
	return cmd
}

func (e *ErrorConsole) View() string {
	filterInfo := fmt.Sprintf("Filter: %s (1:Info 2:Warn 3:Error)", levelString(e.showLevel))
	stats := fmt.Sprintf("Total: %d | Errors: %d | Warnings: %d",
		len(e.entries),
		e.countByLevel(LevelError),
		e.countByLevel(LevelWarning),
	)

	return e.style.Width(e.width).Render(
		e.viewport.View() + "\n" +
			infoStyle.Render(filterInfo) + "\n" +
			infoStyle.Render(stats),
	)
}

// visible returns the messages passing the current filter.
func (e *ErrorConsole) visible() []string {
	var lines []string
	for _, entry := range e.entries {
		if entry.level >= e.showLevel {
			lines = append(lines, entry.message)
		}
	}
	return lines
}

func (e *ErrorConsole) updateContent() {
	follow := e.viewport.AtBottom()

	var sb strings.Builder
	for _, entry := range e.entries {
		if entry.level < e.showLevel {
			continue
		}
		var logStyle lipgloss.Style
		switch entry.level {
		case LevelError:
			logStyle = errorLogStyle
		case LevelWarning:
			logStyle = warningLogStyle
		default:
			logStyle = infoLogStyle
		}
		fmt.Fprintf(&sb, "%s [%s] %s\n",
			timestampStyle.Render(entry.timestamp.Format("15:04:05")),
			logStyle.Render(levelString(entry.level)),
			entry.message,
		)
	}

	e.viewport.SetContent(sb.String())
	if follow {
		e.viewport.GotoBottom()
	}
}

func (e *ErrorConsole) countByLevel(level LogLevel) int {
	count := 0
	for _, entry := range e.entries {
		if entry.level == level {
			count++
		}
	}
	return count
}

func levelString(level LogLevel) string {
	switch level {
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARN"
	default:
		return "INFO"
	}
}
