package extractor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/websemantics/codepen-puppeteer/internal/browser/browsertest"
	"github.com/websemantics/codepen-puppeteer/internal/types"
)

const penURL = "https://codepen.io/jane/pen/abc"

func newPage(pen browsertest.Pen) *browsertest.Page {
	page := browsertest.New()
	page.Pens[penURL] = pen
	return page
}

func TestExtract(t *testing.T) {
	page := newPage(browsertest.Pen{
		Editors: []string{"<h1>Hi</h1>", "h1 { color: red; }", "console.log(1)"},
		Scripts: []string{"https://cdn.example/a.js", "https://cdn.example/b.js"},
		Styles:  []string{"https://cdn.example/reset.css"},
	})
	e := New(page, Options{})

	got, err := e.Extract(context.Background(), types.PenReference{Title: "Demo", URL: penURL}, "demo")
	require.NoError(t, err)

	want := types.ExtractedContent{
		HTML:            "<h1>Hi</h1>",
		CSS:             "h1 { color: red; }",
		JS:              "console.log(1)",
		ExternalScripts: []string{"https://cdn.example/a.js", "https://cdn.example/b.js"},
		ExternalStyles:  []string{"https://cdn.example/reset.css"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractStepOrder(t *testing.T) {
	page := newPage(browsertest.Pen{})
	e := New(page, Options{})

	_, err := e.Extract(context.Background(), types.PenReference{Title: "Demo", URL: penURL}, "demo")
	require.NoError(t, err)

	want := []string{
		"navigate " + penURL,
		"wait",
		"click #box-html .editor-dropdown-button",
		"click #box-html .view-compiled-button",
		"click #box-css .editor-dropdown-button",
		"click #box-css .view-compiled-button",
		"click #box-js .editor-dropdown-button",
		"click #box-js .view-compiled-button",
		"evaluate",
		"evaluate",
	}
	if diff := cmp.Diff(want, page.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractMissingEditors(t *testing.T) {
	page := newPage(browsertest.Pen{Editors: []string{"<p>only markup</p>"}})
	e := New(page, Options{})

	got, err := e.Extract(context.Background(), types.PenReference{Title: "Demo", URL: penURL}, "demo")
	require.NoError(t, err)

	assert.Equal(t, "<p>only markup</p>", got.HTML)
	assert.Empty(t, got.CSS)
	assert.Empty(t, got.JS)
	assert.Empty(t, got.ExternalScripts)
	assert.Empty(t, got.ExternalStyles)
}

func TestExtractFailures(t *testing.T) {
	navErr := errors.New("net::ERR_NAME_NOT_RESOLVED")
	clickErr := errors.New("node not found")

	tests := []struct {
		name     string
		setup    func(*browsertest.Page)
		wantStep string
		wantErr  error
	}{
		{
			name:     "navigation fails",
			setup:    func(p *browsertest.Page) { p.NavigateErrors[penURL] = navErr },
			wantStep: "load",
			wantErr:  navErr,
		},
		{
			name:     "preview never ready",
			setup:    func(p *browsertest.Page) { p.Pens[penURL] = browsertest.Pen{NotReady: true} },
			wantStep: "iframe-ready",
			wantErr:  context.DeadlineExceeded,
		},
		{
			name:     "css compiled action missing",
			setup:    func(p *browsertest.Page) { p.ClickErrors["#box-css .view-compiled-button"] = clickErr },
			wantStep: "css-compiled",
			wantErr:  clickErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := newPage(browsertest.Pen{})
			tt.setup(page)
			e := New(page, Options{})

			_, err := e.Extract(context.Background(), types.PenReference{Title: "Demo", URL: penURL}, "demo")
			require.Error(t, err)

			var stepErr *StepError
			require.ErrorAs(t, err, &stepErr)
			assert.Equal(t, tt.wantStep, stepErr.Step)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExtractDiagnostics(t *testing.T) {
	dir := t.TempDir()
	page := newPage(browsertest.Pen{Editors: []string{"<p></p>"}})
	e := New(page, Options{Diagnostics: true, DiagnosticsDir: dir})

	_, err := e.Extract(context.Background(), types.PenReference{Title: "Flexbox Masonry!!", URL: penURL}, "flexbox-masonry-1a2b3c4")
	require.NoError(t, err)

	before := filepath.Join(dir, "flexbox-masonry-1a2b3c4-before.png")
	after := filepath.Join(dir, "flexbox-masonry-1a2b3c4-after.png")
	assert.FileExists(t, before)
	assert.FileExists(t, after)

	calls := page.Calls()
	assert.Equal(t, "screenshot "+before, calls[1])
	assert.Equal(t, "screenshot "+after, calls[len(calls)-1])
}

func TestExtractDiagnosticsNameFromTitle(t *testing.T) {
	dir := t.TempDir()
	page := newPage(browsertest.Pen{Editors: []string{"<p></p>"}})
	e := New(page, Options{Diagnostics: true, DiagnosticsDir: dir})

	_, err := e.Extract(context.Background(), types.PenReference{Title: "Flexbox Masonry!!", URL: penURL}, "")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "flexbox-masonry-before.png"))
	assert.FileExists(t, filepath.Join(dir, "flexbox-masonry-after.png"))
}

func TestSteps(t *testing.T) {
	steps := DefaultSelectors.steps()

	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, s.name)
		assert.NotEmpty(t, s.target, s.name)
		assert.NotEmpty(t, s.reason, s.name)
	}
	assert.Equal(t, []string{
		"iframe-ready",
		"html-menu", "html-compiled",
		"css-menu", "css-compiled",
		"js-menu", "js-compiled",
	}, names)
}
