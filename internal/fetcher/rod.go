package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"recipe-extraction-api/internal/browser"
	"recipe-extraction-api/internal/metrics"
)

// RodRenderer renders pages with a browser borrowed from a rod pool.
type RodRenderer struct {
	Pool    *browser.Pool
	Timeout time.Duration
}

// NewRodRenderer creates a RodRenderer over pool.
func NewRodRenderer(pool *browser.Pool, timeout time.Duration) *RodRenderer {
	return &RodRenderer{Pool: pool, Timeout: timeout}
}

// Fetch renders url and returns the page HTML once the load event fired.
func (r *RodRenderer) Fetch(ctx context.Context, url string) (page *Page, err error) {
	started := time.Now()
	defer func() { metrics.ObserveFetch("rod", started, err) }()

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	b, err := r.Pool.Get(ctx)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer r.Pool.Return(b)

	tab, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer func() {
		if cerr := tab.Close(); cerr != nil {
			slog.Debug("Failed to close rod tab", "url", url, "error", cerr)
		}
	}()

	tab = tab.Context(ctx)
	if err := tab.Navigate(url); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if err := tab.WaitLoad(); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	html, err := tab.HTML()
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if html == "" {
		return nil, &FetchError{URL: url, Err: ErrEmptyBody}
	}

	finalURL := url
	if info, err := tab.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	return &Page{
		URL:         url,
		FinalURL:    finalURL,
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
		Rendered:    true,
	}, nil
}
