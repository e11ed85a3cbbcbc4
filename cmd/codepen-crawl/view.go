package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/websemantics/codepen-puppeteer/internal/browser"
	"github.com/websemantics/codepen-puppeteer/internal/config"
	"github.com/websemantics/codepen-puppeteer/internal/crawler"
	"github.com/websemantics/codepen-puppeteer/internal/ui"
)

type runResult struct {
	summary crawler.Summary
	err     error
}

// runWithView runs the crawler on its own goroutine and shows its events in
// the full screen run view until the run ends.
func runWithView(ctx context.Context, cfg config.Config, page browser.Page, logger *log.Logger) (crawler.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(ui.New(cancel), tea.WithAltScreen())

	c, err := crawler.New(cfg, page, crawler.Options{
		Logger: logger,
		Notify: func(e crawler.Event) { program.Send(e) },
	})
	if err != nil {
		return crawler.Summary{}, err
	}

	results := make(chan runResult, 1)
	go func() {
		summary, err := c.Start(ctx)
		results <- runResult{summary: summary, err: err}
		program.Send(ui.DoneMsg{Summary: summary, Err: err})
	}()

	_, viewErr := program.Run()
	// Quitting the view early stops the run; wait for it before the browser
	// is closed.
	cancel()
	r := <-results
	if viewErr != nil && r.err == nil {
		return r.summary, fmt.Errorf("run view failed: %w", viewErr)
	}
	return r.summary, r.err
}

// redirectLogs sends the logger to path, or discards it when path is empty,
// so log lines do not tear the run view. restore puts stderr back.
func redirectLogs(logger *log.Logger, path string) (restore func(), err error) {
	var out io.Writer = io.Discard
	var file *os.File
	if path != "" {
		file, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = file
	}
	logger.SetOutput(out)

	return func() {
		logger.SetOutput(os.Stderr)
		if file != nil {
			_ = file.Close()
		}
	}, nil
}
