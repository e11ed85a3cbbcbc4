// Package search pages through the site's pen search results.
package search

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/websemantics/codepen-puppeteer/internal/browser"
	"github.com/websemantics/codepen-puppeteer/internal/types"
)

// DefaultBaseURL is the pen search endpoint.
const DefaultBaseURL = "https://codepen.io/search/pens"

// DefaultTitleLinks selects the title link of every result in the results list.
const DefaultTitleLinks = ".search-results .item-title a"

// Options configures a Paginator.
type Options struct {
	BaseURL    string
	TitleLinks string
	Logger     *log.Logger
}

// Paginator fetches one page of search results at a time.
type Paginator struct {
	page       browser.Page
	base       *url.URL
	titleLinks string
	logger     *log.Logger
}

// New creates a Paginator. Empty options fall back to the defaults.
func New(page browser.Page, opts Options) (*Paginator, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.TitleLinks == "" {
		opts.TitleLinks = DefaultTitleLinks
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid search URL: %w", err)
	}

	return &Paginator{
		page:       page,
		base:       base,
		titleLinks: opts.TitleLinks,
		logger:     opts.Logger,
	}, nil
}

// URL builds the search URL for a 1-indexed results page.
func (p *Paginator) URL(query string, pageNumber int) string {
	u := *p.base
	params := url.Values{}
	params.Set("limit", "all")
	params.Set("q", query)
	params.Set("page", strconv.Itoa(pageNumber))
	u.RawQuery = params.Encode()
	return u.String()
}

// Search returns the pens listed on one results page in document order.
func (p *Paginator) Search(ctx context.Context, query string, pageNumber int) ([]types.PenReference, error) {
	searchURL := p.URL(query, pageNumber)
	p.logger.Debug("Fetching search page", "page", pageNumber, "url", searchURL)

	if err := p.page.Navigate(ctx, searchURL); err != nil {
		return nil, fmt.Errorf("search page %d: %w", pageNumber, err)
	}

	html, err := p.page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("search page %d: failed to read document: %w", pageNumber, err)
	}

	return p.parse(html)
}

func (p *Paginator) parse(html string) ([]types.PenReference, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	var refs []types.PenReference
	doc.Find(p.titleLinks).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		link, err := p.base.Parse(strings.TrimSpace(href))
		if err != nil {
			p.logger.Warn("Skipping malformed result link", "href", href, "err", err)
			return
		}
		refs = append(refs, types.PenReference{Title: a.Text(), URL: link.String()})
	})
	return refs, nil
}
