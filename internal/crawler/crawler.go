// Package crawler runs the acquisition pipeline: search results (or direct
// links) are extracted pen by pen, rendered to disk, and the index page is
// rewritten after every batch.
package crawler

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/websemantics/codepen-puppeteer/internal/browser"
	"github.com/websemantics/codepen-puppeteer/internal/config"
	"github.com/websemantics/codepen-puppeteer/internal/extractor"
	"github.com/websemantics/codepen-puppeteer/internal/progress"
	"github.com/websemantics/codepen-puppeteer/internal/queue"
	"github.com/websemantics/codepen-puppeteer/internal/render"
	"github.com/websemantics/codepen-puppeteer/internal/search"
	"github.com/websemantics/codepen-puppeteer/internal/slug"
	"github.com/websemantics/codepen-puppeteer/internal/types"
	"github.com/websemantics/codepen-puppeteer/internal/writer"
)

// IndexFile is the name of the generated index page.
const IndexFile = "index.html"

// Failure records a pen or search page that could not be processed.
type Failure struct {
	Pen types.PenReference
	// Page is the search results page for search failures, 0 for pens.
	Page int
	Err  error
}

// Summary describes the outcome of a run.
type Summary struct {
	Downloaded int
	Skipped    int
	Indexed    int
	// Seen counts distinct pen URLs encountered, Duplicates the repeats that
	// were dropped.
	Seen       int
	Duplicates int
	Failures   []Failure
}

// EventKind identifies a pipeline event.
type EventKind int

const (
	PageStarted EventKind = iota
	PenStarted
	PenDownloaded
	PenSkipped
	PenFailed
	PenDuplicate
	SearchFailed
	IndexWritten
)

// Event reports pipeline progress. Fields not relevant to Kind are zero.
type Event struct {
	Kind  EventKind
	Label string
	Page  int
	Pen   types.PenReference
	File  string
	// Total is the batch size for PageStarted and the index size for
	// IndexWritten.
	Total int
	// Pens lists the batch for PageStarted.
	Pens []types.PenReference
	Took  time.Duration
	Err   error
}

// Options carries the crawler's collaborators besides the page.
type Options struct {
	Logger   *log.Logger
	Progress *progress.ProgressTracker
	// Notify, when set, receives every Event on the crawling goroutine.
	Notify func(Event)
}

// Crawler manages one acquisition run over a single browser page.
type Crawler struct {
	config    config.Config
	page      browser.Page
	extractor *extractor.Extractor
	search    *search.Paginator
	renderer  *render.Renderer
	writer    *writer.FileWriter
	queue     *queue.Queue
	progress  *progress.ProgressTracker
	logger    *log.Logger
	notify    func(Event)

	entries []types.IndexEntry
	claimed map[string]string
	summary Summary
}

// New creates a Crawler for cfg, driving page. The output directory is
// created and both templates are loaded up front.
func New(cfg config.Config, page browser.Page, opts Options) (*Crawler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	tracker := opts.Progress
	if tracker == nil {
		tracker = progress.New(io.Discard)
	}

	renderer, err := render.Load(cfg.PenTemplate, cfg.IndexTemplate, cfg.IndexFrame)
	if err != nil {
		return nil, err
	}
	w, err := writer.New(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	paced := &pacedPage{Page: page, limiter: newLimiter(cfg.NavigationsPerMinute)}
	paginator, err := search.New(paced, search.Options{BaseURL: cfg.SearchURL, Logger: logger})
	if err != nil {
		return nil, err
	}

	return &Crawler{
		config: cfg,
		page:   paced,
		extractor: extractor.New(paced, extractor.Options{
			Diagnostics:    cfg.DiagnosticsEnabled(),
			DiagnosticsDir: cfg.DiagnosticsDir,
			Logger:         logger,
		}),
		search:   paginator,
		renderer: renderer,
		writer:   w,
		queue:    queue.New(),
		progress: tracker,
		logger:   logger,
		notify:   opts.Notify,
		// The index page owns its file name.
		claimed: map[string]string{strings.TrimSuffix(IndexFile, ".html"): ""},
	}, nil
}

// Start runs the pipeline to completion. Pen extraction failures and failed
// search pages are collected in the summary; filesystem errors and ctx
// cancellation end the run early with an error.
func (c *Crawler) Start(ctx context.Context) (Summary, error) {
	defer c.progress.Stop()

	if c.config.ViewportWidth > 0 && c.config.ViewportHeight > 0 {
		if err := c.page.SetViewport(ctx, c.config.ViewportWidth, c.config.ViewportHeight); err != nil {
			return c.summary, fmt.Errorf("failed to set viewport: %w", err)
		}
	}

	if len(c.config.Links) > 0 {
		c.logger.Info("Processing direct links", "count", len(c.config.Links))
		if err := c.processBatch(ctx, "links", c.config.Links); err != nil {
			return c.summary, err
		}
		return c.summary, c.writeIndex()
	}

	c.logger.Info("Starting search",
		"query", c.config.Query,
		"start_page", c.config.StartPage,
		"end_page", c.config.EndPage)

	for p := c.config.StartPage; p <= c.config.EndPage; p++ {
		if err := ctx.Err(); err != nil {
			return c.summary, err
		}

		refs, err := c.search.Search(ctx, c.config.Query, p)
		if err != nil {
			if ctx.Err() != nil {
				return c.summary, ctx.Err()
			}
			c.logger.Error("Search page failed", "page", p, "err", err)
			c.summary.Failures = append(c.summary.Failures, Failure{Page: p, Err: err})
			c.emit(Event{Kind: SearchFailed, Page: p, Err: err})
			continue
		}
		c.logger.Info("Search page loaded", "page", p, "pens", len(refs))

		if err := c.processBatch(ctx, fmt.Sprintf("page %d/%d", p, c.config.EndPage), refs); err != nil {
			return c.summary, err
		}
		if err := c.writeIndex(); err != nil {
			return c.summary, err
		}
	}

	return c.summary, nil
}

func (c *Crawler) processBatch(ctx context.Context, label string, refs []types.PenReference) error {
	for _, ref := range refs {
		if !c.queue.Add(ref) {
			// Listed once in the index even if the site shows it again.
			c.logger.Info("Pen already seen this run, not listing it again", "pen", strings.TrimSpace(ref.Title), "url", ref.URL)
			c.summary.Duplicates++
			c.emit(Event{Kind: PenDuplicate, Label: label, Pen: ref})
		}
	}
	c.summary.Seen = c.queue.SeenCount()

	c.progress.StartPage(label, c.queue.Len())
	c.emit(Event{Kind: PageStarted, Label: label, Total: c.queue.Len(), Pens: c.queue.Pending()})
	for {
		ref, ok := c.queue.Next()
		if !ok {
			return nil
		}
		c.progress.StartPen(ref.Title)
		c.emit(Event{Kind: PenStarted, Label: label, Pen: ref})
		if err := c.processPen(ctx, ref); err != nil {
			return err
		}
		c.progress.FinishPen()
	}
}

func (c *Crawler) emit(e Event) {
	if c.notify != nil {
		c.notify(e)
	}
}

// processPen downloads one pen unless its file already exists. Only errors
// that must end the run are returned.
func (c *Crawler) processPen(ctx context.Context, ref types.PenReference) error {
	stem := c.stemFor(ref)
	name := stem + ".html"
	entry := types.IndexEntry{Title: strings.TrimSpace(ref.Title), Slug: stem}

	exists, err := c.writer.Exists(name)
	if err != nil {
		return err
	}
	if exists {
		c.logger.Info("Already downloaded, skipping", "pen", entry.Title, "file", name)
		c.entries = append(c.entries, entry)
		c.summary.Skipped++
		c.emit(Event{Kind: PenSkipped, Pen: ref, File: name})
		return nil
	}

	started := time.Now()
	penCtx, cancel := c.penContext(ctx)
	content, err := c.extractor.Extract(penCtx, ref, stem)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Error("Failed to extract pen", "pen", entry.Title, "url", ref.URL, "err", err)
		c.summary.Failures = append(c.summary.Failures, Failure{Pen: ref, Err: err})
		c.emit(Event{Kind: PenFailed, Pen: ref, Err: err, Took: time.Since(started)})
		return nil
	}

	if err := c.writer.Write(name, c.renderer.Pen(ref, content)); err != nil {
		return err
	}
	c.logger.Info("Downloaded pen",
		"pen", entry.Title,
		"file", name,
		"scripts", len(content.ExternalScripts),
		"styles", len(content.ExternalStyles),
		"took", time.Since(started).Round(time.Millisecond))
	c.entries = append(c.entries, entry)
	c.summary.Downloaded++
	c.emit(Event{Kind: PenDownloaded, Pen: ref, File: name, Took: time.Since(started)})
	return nil
}

// stemFor picks the output file stem for ref. A stem already used by a
// different pen in this run gets a hash of the pen URL appended.
func (c *Crawler) stemFor(ref types.PenReference) string {
	stem := slug.Normalize(ref.Title)
	if stem == "" {
		stem = slug.WithHash(stem, ref.URL)
	}
	if owner, ok := c.claimed[stem]; ok && owner != ref.URL {
		stem = slug.WithHash(stem, ref.URL)
	}
	c.claimed[stem] = ref.URL
	return stem
}

func (c *Crawler) penContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if limit := c.config.PenTimeLimit(); limit > 0 {
		return context.WithTimeout(ctx, limit)
	}
	return context.WithCancel(ctx)
}

func (c *Crawler) writeIndex() error {
	if err := c.writer.Write(IndexFile, c.renderer.Index(c.entries)); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	c.summary.Indexed = len(c.entries)
	c.logger.Info("Index updated", "pens", len(c.entries), "file", c.writer.Path(IndexFile))
	c.emit(Event{Kind: IndexWritten, File: c.writer.Path(IndexFile), Total: len(c.entries)})
	return nil
}
