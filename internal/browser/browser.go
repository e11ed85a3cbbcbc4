// Package browser drives a headless Chrome page through chromedp.
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Page is the subset of browser capabilities the crawler relies on. Every
// call blocks until the browser has finished the action or ctx is done.
type Page interface {
	// Navigate loads url and waits until network activity has settled.
	Navigate(ctx context.Context, url string) error
	// WaitFunc polls a JavaScript expression until it evaluates truthy.
	WaitFunc(ctx context.Context, expression string) error
	// Click waits for selector to become visible and clicks it.
	Click(ctx context.Context, selector string) error
	// Evaluate runs expression in the page and decodes its JSON result into out.
	Evaluate(ctx context.Context, expression string, out any) error
	// HTML returns the outer HTML of the current document.
	HTML(ctx context.Context) (string, error)
	SetViewport(ctx context.Context, width, height int) error
	// Screenshot writes a full page PNG to path.
	Screenshot(ctx context.Context, path string) error
}

// Options configures the launched browser.
type Options struct {
	Headless  bool
	UserAgent string
	// ExecPath overrides the Chrome binary lookup.
	ExecPath string
	Logger   *log.Logger
}

// Browser owns the Chrome process and the single tab used for crawling.
type Browser struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	page          *ChromePage
}

// Launch starts Chrome and opens its first tab.
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Headless)
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		}),
	)

	// The first Run starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Browser{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		page:          &ChromePage{ctx: browserCtx},
	}, nil
}

// Page returns the browser's tab.
func (b *Browser) Page() *ChromePage {
	return b.page
}

// Close shuts down the tab and the browser process.
func (b *Browser) Close() {
	b.browserCancel()
	b.allocCancel()
}

// ChromePage implements Page on a chromedp tab.
type ChromePage struct {
	ctx context.Context
}

// run executes actions on the tab, bounded by the caller's ctx.
func (p *ChromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	watcher := newIdleWatcher()

	lctx, stopListening := context.WithCancel(p.ctx)
	defer stopListening()
	chromedp.ListenTarget(lctx, watcher.observe)

	err := p.run(ctx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			watcher.setFrame(tree.Frame.ID)
			return nil
		}),
		chromedp.Navigate(url),
		chromedp.ActionFunc(func(ctx context.Context) error {
			select {
			case <-watcher.idle:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// idleWatcher signals once the main frame reaches networkIdle after a new
// document started loading in it. Lifecycle events of child frames, such as
// a pen's result iframe, are ignored.
type idleWatcher struct {
	mu      sync.Mutex
	frame   cdp.FrameID
	started bool
	idle    chan struct{}
}

func newIdleWatcher() *idleWatcher {
	return &idleWatcher{idle: make(chan struct{}, 1)}
}

func (w *idleWatcher) setFrame(id cdp.FrameID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frame = id
}

func (w *idleWatcher) observe(ev any) {
	e, ok := ev.(*page.EventLifecycleEvent)
	if !ok {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.frame == "" || e.FrameID != w.frame {
		return
	}
	switch e.Name {
	case "init":
		w.started = true
	case "networkIdle":
		if w.started {
			select {
			case w.idle <- struct{}{}:
			default:
			}
		}
	}
}

func (p *ChromePage) WaitFunc(ctx context.Context, expression string) error {
	var ok bool
	return p.run(ctx, chromedp.Poll(expression, &ok,
		chromedp.WithPollingTimeout(0),
		chromedp.WithPollingInterval(100*time.Millisecond),
	))
}

func (p *ChromePage) Click(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (p *ChromePage) Evaluate(ctx context.Context, expression string, out any) error {
	return p.run(ctx, chromedp.Evaluate(expression, out))
}

func (p *ChromePage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (p *ChromePage) SetViewport(ctx context.Context, width, height int) error {
	return p.run(ctx, chromedp.EmulateViewport(int64(width), int64(height)))
}

func (p *ChromePage) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := p.run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	return os.WriteFile(path, buf, 0644)
}
