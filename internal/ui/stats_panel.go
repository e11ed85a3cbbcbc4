package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// RunStats holds the counters shown by StatsPanel.
type RunStats struct {
	Label      string
	PageTotal  int
	PageDone   int
	Downloaded int
	Skipped    int
	Failed     int
	Duplicates int
	Current    string
	StartTime  time.Time
	RecentPens []string
}

// Processed is the number of pens finished in any way.
func (s RunStats) Processed() int {
	return s.Downloaded + s.Skipped + s.Failed
}

const recentPens = 5

// StatsPanel displays run statistics.
type StatsPanel struct {
	stats      RunStats
	bar        progress.Model
	width      int
	height     int
	style      lipgloss.Style
	labelStyle lipgloss.Style
	valueStyle lipgloss.Style
}

func NewStatsPanel() *StatsPanel {
	return &StatsPanel{
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(24)),
		style: borderStyle.
			BorderForeground(lipgloss.Color("99")),
		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Bold(true).
			Width(14),
		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
	}
}

func (s *StatsPanel) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// UpdateStats replaces the displayed statistics.
func (s *StatsPanel) UpdateStats(stats RunStats) {
	s.stats = stats
}

func (s *StatsPanel) View() string {
	fraction := 0.0
	if s.stats.PageTotal > 0 {
		fraction = float64(s.stats.PageDone) / float64(s.stats.PageTotal)
	}

	current := s.stats.Current
	if current == "" {
		current = "-"
	}

	rows := []struct {
		label string
		value string
	}{
		{"Batch", s.stats.Label},
		{"Progress", fmt.Sprintf("%s %d/%d", s.bar.ViewAs(fraction), s.stats.PageDone, s.stats.PageTotal)},
		{"Current", current},
		{"Downloaded", fmt.Sprintf("%d", s.stats.Downloaded)},
		{"Skipped", fmt.Sprintf("%d", s.stats.Skipped)},
		{"Failed", fmt.Sprintf("%d", s.stats.Failed)},
		{"Duplicates", fmt.Sprintf("%d", s.stats.Duplicates)},
		{"Success Rate", s.successRate()},
		{"Pens/Minute", fmt.Sprintf("%.1f", s.pensPerMinute())},
		{"Elapsed", s.formatElapsedTime()},
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("Run") + "\n\n")
	for _, row := range rows {
		content.WriteString(s.labelStyle.Render(row.label+":") + " " + s.valueStyle.Render(row.value) + "\n")
	}

	if len(s.stats.RecentPens) > 0 {
		content.WriteString("\nRecent pens:\n")
		for _, title := range s.stats.RecentPens {
			content.WriteString(infoStyle.Render("• "+title) + "\n")
		}
	}

	return s.style.Width(s.width).Height(s.height).Render(content.String())
}

func (s *StatsPanel) successRate() string {
	processed := s.stats.Processed()
	if processed == 0 {
		return "-"
	}
	ok := s.stats.Downloaded + s.stats.Skipped
	return fmt.Sprintf("%.1f%% (%d/%d)", float64(ok)/float64(processed)*100, ok, processed)
}

func (s *StatsPanel) pensPerMinute() float64 {
	if s.stats.StartTime.IsZero() {
		return 0
	}
	elapsed := time.Since(s.stats.StartTime).Minutes()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.stats.Downloaded) / elapsed
}

func (s *StatsPanel) formatElapsedTime() string {
	if s.stats.StartTime.IsZero() {
		return "00:00:00"
	}
	elapsed := time.Since(s.stats.StartTime)
	return fmt.Sprintf("%02d:%02d:%02d",
		int(elapsed.Hours()),
		int(elapsed.Minutes())%60,
		int(elapsed.Seconds())%60,
	)
}

// addRecent keeps the last few finished pen titles.
func addRecent(recent []string, title string) []string {
	recent = append(recent, title)
	if len(recent) > recentPens {
		recent = recent[len(recent)-recentPens:]
	}
	return recent
}
