// Package extractor reads a pen's compiled code and external resources by
// driving its detail page through a fixed sequence of UI steps.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/websemantics/codepen-puppeteer/internal/browser"
	"github.com/websemantics/codepen-puppeteer/internal/slug"
	"github.com/websemantics/codepen-puppeteer/internal/types"
)

// StepError reports the UI step a pen extraction stopped at.
type StepError struct {
	Step   string
	Reason string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %s: %v", e.Step, e.Reason, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Options configures an Extractor.
type Options struct {
	Selectors Selectors
	// Diagnostics enables before/after screenshots in DiagnosticsDir.
	Diagnostics    bool
	DiagnosticsDir string
	Logger         *log.Logger
}

// Extractor turns pen references into extracted content using one page.
type Extractor struct {
	page      browser.Page
	selectors Selectors
	steps     []step
	opts      Options
	logger    *log.Logger
}

// New creates an Extractor. Zero-value selectors fall back to DefaultSelectors.
func New(page browser.Page, opts Options) *Extractor {
	if opts.Selectors.ResultFrame == "" {
		opts.Selectors = DefaultSelectors
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Extractor{
		page:      page,
		selectors: opts.Selectors,
		steps:     opts.Selectors.steps(),
		opts:      opts,
		logger:    logger,
	}
}

type resourceLists struct {
	Scripts []string `json:"scripts"`
	Styles  []string `json:"styles"`
}

// Extract loads the pen, switches every editor to its compiled view and
// reads the editors and resource fields. No step is retried. name is the
// pen's output file stem and names the diagnostics screenshots; when empty
// it is derived from the title.
func (e *Extractor) Extract(ctx context.Context, ref types.PenReference, name string) (types.ExtractedContent, error) {
	if name == "" {
		name = slug.Normalize(ref.Title)
		if name == "" {
			name = slug.WithHash(name, ref.URL)
		}
	}

	var content types.ExtractedContent

	if err := e.page.Navigate(ctx, ref.URL); err != nil {
		return content, &StepError{Step: "load", Reason: "navigation failed", Err: err}
	}
	e.screenshot(ctx, name, "before")

	for _, s := range e.steps {
		e.logger.Debug("Running step", "step", s.name, "url", ref.URL)

		var err error
		switch s.kind {
		case waitFunc:
			err = e.page.WaitFunc(ctx, s.target)
		case click:
			err = e.page.Click(ctx, s.target)
		}
		if err != nil {
			return content, &StepError{Step: s.name, Reason: s.reason, Err: err}
		}
	}

	var editors []string
	if err := e.page.Evaluate(ctx, editorsExpression(e.selectors.Editors), &editors); err != nil {
		return content, &StepError{Step: "extract", Reason: "reading editors failed", Err: err}
	}
	slots := [3]string{}
	copy(slots[:], editors)
	content.HTML, content.CSS, content.JS = slots[0], slots[1], slots[2]

	var resources resourceLists
	expr := resourcesExpression(e.selectors.ScriptResources, e.selectors.StyleResources)
	if err := e.page.Evaluate(ctx, expr, &resources); err != nil {
		return content, &StepError{Step: "extract", Reason: "reading external resources failed", Err: err}
	}
	content.ExternalScripts = resources.Scripts
	content.ExternalStyles = resources.Styles

	e.screenshot(ctx, name, "after")
	return content, nil
}

// screenshot captures a diagnostics image. Failures are logged, not returned.
func (e *Extractor) screenshot(ctx context.Context, name, stage string) {
	if !e.opts.Diagnostics {
		return
	}
	path := filepath.Join(e.opts.DiagnosticsDir, fmt.Sprintf("%s-%s.png", name, stage))
	if err := e.page.Screenshot(ctx, path); err != nil {
		e.logger.Warn("Screenshot failed", "path", path, "err", err)
		return
	}
	e.logger.Debug("Saved screenshot", "path", path)
}
