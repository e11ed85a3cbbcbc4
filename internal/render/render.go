// Package render fills the pen and index page templates.
//
// Templates use plain {{token}} placeholders rather than text/template
// actions, so existing template files keep working unchanged. Tokens missing
// from a template are simply not substituted.
package render

import (
	"embed"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/websemantics/codepen-puppeteer/internal/types"
)

// DefaultFrame is the name of the frame index links open pens in.
const DefaultFrame = "pen"

//go:embed templates/*.html
var defaults embed.FS

// Renderer holds the pen and index template texts.
type Renderer struct {
	pen   string
	index string
	frame string
}

// New creates a Renderer from template texts. An empty frame falls back to DefaultFrame.
func New(penTemplate, indexTemplate, frame string) *Renderer {
	if frame == "" {
		frame = DefaultFrame
	}
	return &Renderer{pen: penTemplate, index: indexTemplate, frame: frame}
}

// Load reads both templates from disk. An empty path selects the built-in template.
func Load(penPath, indexPath, frame string) (*Renderer, error) {
	pen, err := readTemplate(penPath, "templates/pen.html")
	if err != nil {
		return nil, err
	}
	index, err := readTemplate(indexPath, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return New(pen, index, frame), nil
}

func readTemplate(path, fallback string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = defaults.ReadFile(fallback)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read template %q: %w", path, err)
	}
	return string(data), nil
}

// Pen renders the single-pen page.
func (r *Renderer) Pen(ref types.PenReference, content types.ExtractedContent) string {
	return RenderPen(r.pen, ref, content)
}

// Index renders the index page listing entries in order.
func (r *Renderer) Index(entries []types.IndexEntry) string {
	return RenderIndex(r.index, entries, r.frame)
}

// RenderPen substitutes the pen tokens in tmpl.
func RenderPen(tmpl string, ref types.PenReference, content types.ExtractedContent) string {
	replacer := strings.NewReplacer(
		"{{title}}", ref.Title,
		"{{url}}", ref.URL,
		"{{html}}", content.HTML,
		"{{style}}", content.CSS,
		"{{javascript}}", content.JS,
		"{{resources.javascript}}", scriptTags(content.ExternalScripts),
		"{{resources.style}}", styleTags(content.ExternalStyles),
	)
	return replacer.Replace(tmpl)
}

// RenderIndex substitutes {{list}} in tmpl with one anchor per entry.
func RenderIndex(tmpl string, entries []types.IndexEntry, frame string) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "<a href=\"%s.html\" target=\"%s\">%s</a>\n",
			e.Slug, html.EscapeString(frame), html.EscapeString(e.Title))
	}
	return strings.ReplaceAll(tmpl, "{{list}}", b.String())
}

func scriptTags(urls []string) string {
	tags := make([]string, 0, len(urls))
	for _, u := range urls {
		tags = append(tags, fmt.Sprintf("<script src=\"%s\"></script>", u))
	}
	return strings.Join(tags, "\n")
}

func styleTags(urls []string) string {
	tags := make([]string, 0, len(urls))
	for _, u := range urls {
		tags = append(tags, fmt.Sprintf("<link rel=\"stylesheet\" href=\"%s\">", u))
	}
	return strings.Join(tags, "\n")
}
