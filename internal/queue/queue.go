package queue

import (
	"sync"

	"github.com/websemantics/codepen-puppeteer/internal/types"
)

// Queue holds the pens waiting to be processed in a run. Each pen URL is
// accepted at most once per run.
type Queue struct {
	pens []types.PenReference
	seen map[string]bool
	mu   sync.Mutex
}

// New creates a new Queue instance
func New() *Queue {
	return &Queue{
		pens: make([]types.PenReference, 0),
		seen: make(map[string]bool),
	}
}

// Add appends ref unless its URL was already added during this run.
func (q *Queue) Add(ref types.PenReference) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.seen[ref.URL] {
		return false
	}
	q.seen[ref.URL] = true
	q.pens = append(q.pens, ref)
	return true
}

// Next returns the next pen to process
func (q *Queue) Next() (types.PenReference, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pens) == 0 {
		return types.PenReference{}, false
	}

	ref := q.pens[0]
	q.pens = q.pens[1:]
	return ref, true
}

// Pending returns a copy of the pens still waiting, in order.
func (q *Queue) Pending() []types.PenReference {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]types.PenReference(nil), q.pens...)
}

// Len returns the number of pens still waiting
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pens)
}

// SeenCount returns the number of distinct pens added so far
func (q *Queue) SeenCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.seen)
}
