// Package fetcher downloads pages for the extraction strategies.
package fetcher

import (
	"context"
)

// Fetcher retrieves a single page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Func adapts a function to Fetcher.
type Func func(ctx context.Context, url string) (*Page, error)

func (f Func) Fetch(ctx context.Context, url string) (*Page, error) { return f(ctx, url) }
