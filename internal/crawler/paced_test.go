package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/websemantics/codepen-puppeteer/internal/browser/browsertest"
)

func TestNewLimiterUnpaced(t *testing.T) {
	assert.Equal(t, rate.Inf, newLimiter(0).Limit())
	assert.Equal(t, rate.Inf, newLimiter(-3).Limit())
	assert.InDelta(t, 1.0, float64(newLimiter(60).Limit()), 1e-9)
}

func TestPacedPageWaitsBeforeNavigate(t *testing.T) {
	fake := browsertest.New()
	p := &pacedPage{Page: fake, limiter: newLimiter(1)}

	require.NoError(t, p.Navigate(context.Background(), "https://codepen.test/a"))

	// The next token is a minute away, past this deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.Error(t, p.Navigate(ctx, "https://codepen.test/b"))

	assert.Equal(t, []string{"https://codepen.test/a"}, fake.Visited())
}
