package crawler

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/websemantics/codepen-puppeteer/internal/browser"
)

// pacedPage delays navigations so that no more than the configured number
// of pages load per minute.
type pacedPage struct {
	browser.Page
	limiter *rate.Limiter
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

func (p *pacedPage) Navigate(ctx context.Context, url string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	return p.Page.Navigate(ctx, url)
}
