package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/websemantics/codepen-puppeteer/internal/crawler"
)

// printSummary renders the run totals and, if any, the failures.
func printSummary(w io.Writer, s crawler.Summary) {
	totals := table.NewWriter()
	totals.SetOutputMirror(w)
	totals.SetStyle(table.StyleLight)
	totals.AppendHeader(table.Row{"Pens Seen", "Downloaded", "Skipped", "Failed", "Duplicates", "Indexed"})
	totals.AppendRow(table.Row{s.Seen, s.Downloaded, s.Skipped, len(s.Failures), s.Duplicates, s.Indexed})
	totals.Render()

	if len(s.Failures) == 0 {
		return
	}

	failures := table.NewWriter()
	failures.SetOutputMirror(w)
	failures.SetStyle(table.StyleLight)
	failures.AppendHeader(table.Row{"Pen", "URL", "Error"})
	for _, f := range s.Failures {
		if f.Page > 0 {
			failures.AppendRow(table.Row{"search page", f.Page, f.Err})
			continue
		}
		failures.AppendRow(table.Row{f.Pen.Title, f.Pen.URL, f.Err})
	}
	failures.Render()
}
