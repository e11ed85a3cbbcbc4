// Package browsertest provides a scripted, in-memory browser.Page for tests.
package browsertest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
)

// Pen describes what a pen's detail page reports once compiled.
type Pen struct {
	Editors []string
	Scripts []string
	Styles  []string
	// NotReady makes the readiness wait fail, as if the preview never loaded.
	NotReady bool
}

// Page is a fake browser.Page. Documents serve HTML() for search pages and
// Pens serve the extractor's Evaluate calls for pen pages.
//
// Evaluate answers by the shape of out: a slice receives the current pen's
// editor contents, a struct or map receives {"scripts": [...], "styles": [...]}.
type Page struct {
	Documents      map[string]string
	Pens           map[string]Pen
	NavigateErrors map[string]error
	ClickErrors    map[string]error

	mu      sync.Mutex
	current string
	calls   []string
	visited []string
}

// New returns an empty Page.
func New() *Page {
	return &Page{
		Documents:      make(map[string]string),
		Pens:           make(map[string]Pen),
		NavigateErrors: make(map[string]error),
		ClickErrors:    make(map[string]error),
	}
}

// Calls returns every recorded action in order, e.g. "click #box-html .x".
func (p *Page) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// Visited returns the URLs passed to Navigate in order.
func (p *Page) Visited() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.visited...)
}

func (p *Page) record(format string, args ...any) {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record("navigate %s", url)
	p.visited = append(p.visited, url)
	if err := p.NavigateErrors[url]; err != nil {
		return err
	}
	p.current = url
	return nil
}

func (p *Page) WaitFunc(ctx context.Context, expression string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record("wait")
	if pen, ok := p.Pens[p.current]; ok && pen.NotReady {
		return fmt.Errorf("waiting on %s: %w", p.current, context.DeadlineExceeded)
	}
	return nil
}

func (p *Page) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record("click %s", selector)
	return p.ClickErrors[selector]
}

func (p *Page) Evaluate(ctx context.Context, expression string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record("evaluate")
	pen := p.Pens[p.current]

	var result any
	switch reflect.ValueOf(out).Elem().Kind() {
	case reflect.Slice:
		result = nonNil(pen.Editors)
	case reflect.Struct, reflect.Map:
		result = map[string][]string{
			"scripts": nonNil(pen.Scripts),
			"styles":  nonNil(pen.Styles),
		}
	default:
		return fmt.Errorf("browsertest: unsupported evaluate target %T", out)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record("html")
	return p.Documents[p.current], nil
}

func (p *Page) SetViewport(ctx context.Context, width, height int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record("viewport %dx%d", width, height)
	return nil
}

func (p *Page) Screenshot(ctx context.Context, path string) error {
	p.mu.Lock()
	p.record("screenshot %s", path)
	p.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("\x89PNG"), 0644)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
