package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/bubbles/progress"
)

// ProgressTracker shows a spinner with a progress bar for the pens of the
// results page currently being processed.
type ProgressTracker struct {
	bar       progress.Model
	spinner   *spinner.Spinner
	label     string
	total     int
	processed int
	mu        sync.Mutex
}

// New creates a tracker that draws on out. The spinner only renders when out
// is a terminal.
func New(out io.Writer) *ProgressTracker {
	return &ProgressTracker{
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		spinner: spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(out)),
	}
}

// StartPage resets the tracker for a batch of total pens.
func (p *ProgressTracker) StartPage(label string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.label = label
	p.total = total
	p.processed = 0
	p.update("")
	p.spinner.Start()
}

// StartPen shows title as the pen being processed.
func (p *ProgressTracker) StartPen(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.update(title)
}

// FinishPen counts one pen of the current page as done.
func (p *ProgressTracker) FinishPen() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed++
	p.update("")
}

// Stop halts the spinner.
func (p *ProgressTracker) Stop() {
	p.spinner.Stop()
}

func (p *ProgressTracker) fraction() float64 {
	if p.total == 0 {
		return 0
	}
	return float64(p.processed) / float64(p.total)
}

func (p *ProgressTracker) update(current string) {
	suffix := fmt.Sprintf(" %s %s %d/%d", p.label, p.bar.ViewAs(p.fraction()), p.processed, p.total)
	if current != "" {
		suffix += " " + current
	}
	p.spinner.Lock()
	p.spinner.Suffix = suffix
	p.spinner.Unlock()
}
