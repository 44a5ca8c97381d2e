package fetcher

import (
	"context"
	"sync"
)

// Memo shares successful fetches between the strategies of one extraction.
// Failures are not remembered, so the next strategy tries again.
type Memo struct {
	next  Fetcher
	mu    sync.Mutex
	pages map[string]*Page
	calls int
}

// NewMemo wraps next.
func NewMemo(next Fetcher) *Memo {
	return &Memo{next: next, pages: make(map[string]*Page)}
}

// Fetch returns the cached page for url or fetches it.
func (m *Memo) Fetch(ctx context.Context, url string) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.pages[url]; ok {
		return p, nil
	}
	m.calls++
	p, err := m.next.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	m.pages[url] = p
	return p, nil
}

// Calls is the number of fetches that reached the wrapped fetcher.
func (m *Memo) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
