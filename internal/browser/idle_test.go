package browser

import (
	"testing"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/stretchr/testify/assert"
)

func lifecycle(frame cdp.FrameID, name string) *page.EventLifecycleEvent {
	return &page.EventLifecycleEvent{FrameID: frame, Name: name}
}

func isIdle(w *idleWatcher) bool {
	select {
	case <-w.idle:
		return true
	default:
		return false
	}
}

func TestIdleWatcher(t *testing.T) {
	const main, child cdp.FrameID = "MAIN", "RESULT"

	tests := []struct {
		name   string
		events []any
		want   bool
	}{
		{
			name:   "main frame idle after init",
			events: []any{lifecycle(main, "init"), lifecycle(main, "load"), lifecycle(main, "networkIdle")},
			want:   true,
		},
		{
			name:   "idle from the previous document",
			events: []any{lifecycle(main, "networkIdle")},
		},
		{
			name:   "child frame idle",
			events: []any{lifecycle(main, "init"), lifecycle(child, "init"), lifecycle(child, "networkIdle")},
		},
		{
			name:   "child init does not start the main frame",
			events: []any{lifecycle(child, "init"), lifecycle(main, "networkIdle")},
		},
		{
			name:   "other events",
			events: []any{&page.EventLoadEventFired{}, lifecycle(main, "init"), &page.EventFrameNavigated{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newIdleWatcher()
			w.setFrame(main)
			for _, ev := range tt.events {
				w.observe(ev)
			}
			assert.Equal(t, tt.want, isIdle(w))
		})
	}
}

func TestIdleWatcherWithoutFrame(t *testing.T) {
	w := newIdleWatcher()
	w.observe(lifecycle("MAIN", "init"))
	w.observe(lifecycle("MAIN", "networkIdle"))
	assert.False(t, isIdle(w))
}
